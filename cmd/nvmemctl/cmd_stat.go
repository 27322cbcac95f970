package main

import (
	"context"

	flag "github.com/spf13/pflag"
)

func StatCmd(global *globalFlags) *Command {
	fs := flag.NewFlagSet("stat", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "stat",
		Short: "Show capacity, active sector, and pending-erase state",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			store, e, err := openEmulator(global.image, global.layout, global.sectorSize)
			if err != nil {
				return err
			}
			defer store.Close()

			o.Printf("capacity:      %d bytes\n", e.Capacity())
			o.Printf("active sector: %s\n", e.Active())
			o.Printf("pending erase: %v\n", e.HasPendingErase())
			return nil
		},
	}
}

func ClearCmd(global *globalFlags) *Command {
	fs := flag.NewFlagSet("clear", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "clear",
		Short: "Erase both sectors and reinitialize as empty",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			store, e, err := openEmulator(global.image, global.layout, global.sectorSize)
			if err != nil {
				return err
			}
			defer store.Close()

			e.Clear()
			o.Println("OK: cleared")
			return nil
		},
	}
}

func PerformPendingEraseCmd(global *globalFlags) *Command {
	fs := flag.NewFlagSet("perform-pending-erase", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "perform-pending-erase",
		Short: "Erase the alternate sector now, ahead of the next compaction",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			store, e, err := openEmulator(global.image, global.layout, global.sectorSize)
			if err != nil {
				return err
			}
			defer store.Close()

			if !e.HasPendingErase() {
				o.Println("nothing pending")
				return nil
			}
			e.PerformPendingErase()
			o.Println("OK: erased alternate sector")
			return nil
		},
	}
}
