package main

import (
	"context"
	"encoding/hex"
	"errors"
	"strconv"

	flag "github.com/spf13/pflag"
)

var errMissingData = errors.New("missing data argument")

func PutCmd(global *globalFlags) *Command {
	fs := flag.NewFlagSet("put", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "put <id> <hex-data>",
		Short: "Write hex-encoded bytes starting at a logical id",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) < 1 {
				return errMissingID
			}
			if len(args) < 2 {
				return errMissingData
			}
			id, err := strconv.ParseUint(args[0], 10, 16)
			if err != nil {
				return err
			}
			data, err := hex.DecodeString(args[1])
			if err != nil {
				return err
			}

			store, e, err := openEmulator(global.image, global.layout, global.sectorSize)
			if err != nil {
				return err
			}
			defer store.Close()

			e.Put(uint16(id), data)
			o.Printf("OK: wrote %d byte(s) at id=%d\n", len(data), id)
			return nil
		},
	}
}
