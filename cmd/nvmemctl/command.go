package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command defines a nvmemctl subcommand with unified help generation.
type Command struct {
	Flags *flag.FlagSet
	Usage string
	Short string
	Exec  func(ctx context.Context, o *IO, args []string) error
}

func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")
	return name
}

func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-28s %s", c.Usage, c.Short)
}

func (c *Command) PrintHelp(o *IO) {
	o.Println("Usage: nvmemctl", c.Usage)
	o.Println()
	o.Println(c.Short)

	if c.Flags != nil && c.Flags.HasFlags() {
		o.Println()
		o.Println("Flags:")

		var buf strings.Builder
		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()
		o.Printf("%s", buf.String())
	}
}

func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(&strings.Builder{})

	if err := c.Flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.PrintHelp(o)
			return 0
		}
		o.ErrPrintln("error:", err)
		c.PrintHelp(o)
		return 1
	}

	if err := c.Exec(ctx, o, c.Flags.Args()); err != nil {
		o.ErrPrintln("error:", err)
		return 1
	}
	return 0
}
