package output

import (
	"fmt"
	"io"
	"os"
)

type Class int

const (
	Required Class = iota
	Error
	Normal
	Verbose
)

// Printer filters output by class. Errors go to the diagnosis writer, everything else to the terminal writer.
type Printer struct {
	classes    map[Class]bool
	terminal   io.Writer
	diagnosis  io.Writer
	useEscapes bool
}

func NewPrinter(include []Class, allowEscapes bool) Printer {
	return NewPrinterTo(include, allowEscapes, os.Stdout, os.Stderr)
}

// NewPrinterTo is NewPrinter with explicit writers instead of the standard streams.
func NewPrinterTo(include []Class, allowEscapes bool, terminal io.Writer, diagnosis io.Writer) (p Printer) {
	p = Printer{
		classes:    map[Class]bool{},
		terminal:   terminal,
		diagnosis:  diagnosis,
		useEscapes: allowEscapes,
	}
	for _, class := range include {
		p.classes[class] = true
	}
	return
}

func (p Printer) Out(class Class, format string, values ...interface{}) {
	if !p.classes[class] {
		return
	}
	target := p.terminal
	if class == Error {
		target = p.diagnosis
	}
	fmt.Fprintf(target, format, values...)
}

// Escapes reports whether styled (ANSI) output is allowed.
func (p Printer) Escapes() bool {
	return p.useEscapes
}
