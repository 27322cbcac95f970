package main

import (
	"fmt"
	"io"
)

// IO handles command output.
type IO struct {
	out    io.Writer
	errOut io.Writer
}

func NewIO(out, errOut io.Writer) *IO {
	return &IO{out: out, errOut: errOut}
}

func (o *IO) Println(a ...any) {
	_, _ = fmt.Fprintln(o.out, a...)
}

func (o *IO) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.out, format, a...)
}

func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}
