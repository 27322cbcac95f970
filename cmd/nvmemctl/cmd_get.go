package main

import (
	"context"
	"encoding/hex"
	"errors"
	"strconv"

	flag "github.com/spf13/pflag"
)

var (
	errMissingID = errors.New("missing id argument")
	errBadCount  = errors.New("-n must be a positive count")
)

func GetCmd(global *globalFlags) *Command {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	n := fs.IntP("n", "n", 1, "number of bytes to read")

	return &Command{
		Flags: fs,
		Usage: "get [flags] <id>",
		Short: "Read n bytes starting at a logical id",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) < 1 {
				return errMissingID
			}
			id, err := strconv.ParseUint(args[0], 10, 16)
			if err != nil {
				return err
			}
			if *n <= 0 {
				return errBadCount
			}

			store, e, err := openEmulator(global.image, global.layout, global.sectorSize)
			if err != nil {
				return err
			}
			defer store.Close()

			buf := make([]byte, *n)
			e.Get(uint16(id), buf)
			o.Println(hex.EncodeToString(buf))
			return nil
		},
	}
}
