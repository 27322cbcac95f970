package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/siliconforge/nvmem/pkg/flash"
	"github.com/siliconforge/nvmem/pkg/nvmem"
)

// REPL is the interactive command loop.
type REPL struct {
	store *flash.File
	em    *nvmem.Emulator
	liner *liner.State
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".nvmemctl_history")
}

func ShellCmd(global *globalFlags) *Command {
	fs := flag.NewFlagSet("shell", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "shell",
		Short: "Start an interactive session against the image",
		Exec: func(_ context.Context, _ *IO, _ []string) error {
			store, e, err := openEmulator(global.image, global.layout, global.sectorSize)
			if err != nil {
				return err
			}
			defer store.Close()

			repl := &REPL{store: store, em: e}
			return repl.Run()
		},
	}
}

// Run starts the REPL loop.
func (r *REPL) Run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Printf("nvmemctl - EEPROM emulator shell (capacity=%d, active=%s)\n", r.em.Capacity(), r.em.Active())
	fmt.Println("Type 'help' for available commands.")
	fmt.Println()

	for {
		line, err := r.liner.Prompt("nvmem> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println("\nBye!")
				break
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			fmt.Println("Bye!")
			r.saveHistory()
			return nil
		case "help", "?":
			r.printHelp()
		case "get":
			r.cmdGet(args)
		case "put":
			r.cmdPut(args)
		case "clear":
			r.em.Clear()
			fmt.Println("OK: cleared")
		case "stat":
			r.cmdStat()
		case "pending-erase":
			fmt.Println(r.em.HasPendingErase())
		case "perform-pending-erase":
			r.em.PerformPendingErase()
			fmt.Println("OK")
		default:
			fmt.Printf("Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}

	r.saveHistory()
	return nil
}

func (r *REPL) saveHistory() {
	if path := historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			r.liner.WriteHistory(f)
			f.Close()
		}
	}
}

func (r *REPL) completer(line string) []string {
	commands := []string{
		"get", "put", "clear", "stat",
		"pending-erase", "perform-pending-erase",
		"help", "exit", "quit", "q",
	}

	var completions []string
	lower := strings.ToLower(line)
	for _, cmd := range commands {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}
	return completions
}

func (r *REPL) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  get <id> [n]               Read n bytes (default 1) from id")
	fmt.Println("  put <id> <hex>             Write hex-encoded bytes starting at id")
	fmt.Println("  clear                      Erase both sectors")
	fmt.Println("  stat                       Show capacity/active/pending-erase")
	fmt.Println("  pending-erase              Show whether an erase is pending")
	fmt.Println("  perform-pending-erase      Erase the alternate sector now")
	fmt.Println("  help                       Show this help")
	fmt.Println("  exit / quit / q            Exit")
}

func (r *REPL) cmdGet(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: get <id> [n]")
		return
	}
	id, err := strconv.ParseUint(args[0], 10, 16)
	if err != nil {
		fmt.Printf("Error parsing id: %v\n", err)
		return
	}
	n := 1
	if len(args) >= 2 {
		n, err = strconv.Atoi(args[1])
		if err != nil {
			fmt.Printf("Error parsing n: %v\n", err)
			return
		}
	}
	if n <= 0 {
		fmt.Println("n must be a positive count")
		return
	}
	buf := make([]byte, n)
	r.em.Get(uint16(id), buf)
	fmt.Println(hex.EncodeToString(buf))
}

func (r *REPL) cmdPut(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: put <id> <hex>")
		return
	}
	id, err := strconv.ParseUint(args[0], 10, 16)
	if err != nil {
		fmt.Printf("Error parsing id: %v\n", err)
		return
	}
	data, err := hex.DecodeString(args[1])
	if err != nil {
		fmt.Printf("Error parsing data: %v\n", err)
		return
	}
	r.em.Put(uint16(id), data)
	fmt.Printf("OK: wrote %d byte(s) at id=%d\n", len(data), id)
}

func (r *REPL) cmdStat() {
	fmt.Printf("capacity:      %d bytes\n", r.em.Capacity())
	fmt.Printf("active sector: %s\n", r.em.Active())
	fmt.Printf("pending erase: %v\n", r.em.HasPendingErase())
}
