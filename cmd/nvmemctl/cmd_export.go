package main

import (
	"bytes"
	"context"
	"errors"

	"github.com/natefinch/atomic"
	flag "github.com/spf13/pflag"
)

var errMissingOutPath = errors.New("missing output path argument")

// ExportCmd snapshots the live decoded image - every id from 0 to
// Capacity()-1 - to a flat file, written atomically so a reader never
// observes a partial snapshot.
func ExportCmd(global *globalFlags) *Command {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "export <out-file>",
		Short: "Snapshot the decoded id space to a flat file",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) < 1 {
				return errMissingOutPath
			}

			store, e, err := openEmulator(global.image, global.layout, global.sectorSize)
			if err != nil {
				return err
			}
			defer store.Close()

			buf := make([]byte, e.Capacity())
			e.Get(0, buf)

			if err := atomic.WriteFile(args[0], bytes.NewReader(buf)); err != nil {
				return err
			}
			o.Printf("OK: exported %d bytes to %s\n", len(buf), args[0])
			return nil
		},
	}
}
