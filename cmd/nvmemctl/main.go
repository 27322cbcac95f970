// nvmemctl is a CLI for exercising a power-fail-safe EEPROM emulator image
// backed by a host file.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
)

type globalFlags struct {
	image      string
	layout     string
	sectorSize int
}

func main() {
	os.Exit(run(os.Stdout, os.Stderr, os.Args))
}

func run(out, errOut io.Writer, args []string) int {
	global := &globalFlags{}

	fs := flag.NewFlagSet("nvmemctl", flag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(&strings.Builder{})
	flagHelp := fs.BoolP("help", "h", false, "Show help")
	fs.StringVarP(&global.image, "image", "i", "nvmem.img", "Path to the flash image `file`")
	fs.StringVarP(&global.layout, "layout", "l", "", "Path to a JWCC sector layout `file`")
	fs.IntVarP(&global.sectorSize, "sector-size", "s", defaultSectorSize, "Sector size in bytes, used when --layout is absent")

	if err := fs.Parse(args[1:]); err != nil {
		fprintln(errOut, "error:", err)
		printGlobalOptions(errOut)
		return 1
	}

	commands := allCommands(global)
	commandMap := make(map[string]*Command, len(commands))
	for _, cmd := range commands {
		commandMap[cmd.Name()] = cmd
	}

	commandAndArgs := fs.Args()

	if *flagHelp || len(commandAndArgs) == 0 {
		printUsage(out, commands)
		if len(commandAndArgs) == 0 {
			return 1
		}
		return 0
	}

	cmdName := commandAndArgs[0]
	cmd, ok := commandMap[cmdName]
	if !ok {
		fprintln(errOut, "error: unknown command:", cmdName)
		printUsage(errOut, commands)
		return 1
	}

	cmdIO := NewIO(out, errOut)
	return cmd.Run(context.Background(), cmdIO, commandAndArgs[1:])
}

func allCommands(global *globalFlags) []*Command {
	return []*Command{
		GetCmd(global),
		PutCmd(global),
		ClearCmd(global),
		StatCmd(global),
		PerformPendingEraseCmd(global),
		ExportCmd(global),
		ShellCmd(global),
	}
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

const globalOptionsHelp = `  -h, --help                  Show help
  -i, --image <file>          Path to the flash image file [default: nvmem.img]
  -l, --layout <file>         Path to a JWCC sector layout file
  -s, --sector-size <bytes>   Sector size when --layout is absent [default: 4096]`

func printGlobalOptions(w io.Writer) {
	fprintln(w, "Usage: nvmemctl [flags] <command> [args]")
	fprintln(w)
	fprintln(w, "Global flags:")
	fprintln(w, globalOptionsHelp)
}

func printUsage(w io.Writer, commands []*Command) {
	fprintln(w, "nvmemctl - power-fail-safe EEPROM emulator CLI")
	fprintln(w)
	fprintln(w, "Usage: nvmemctl [flags] <command> [args]")
	fprintln(w)
	fprintln(w, "Flags:")
	fprintln(w, globalOptionsHelp)
	fprintln(w)
	fprintln(w, "Commands:")
	for _, cmd := range commands {
		fprintln(w, cmd.HelpLine())
	}
}
