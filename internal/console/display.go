// Package console is the terminal side of a session: streaming output,
// error lines, keystroke prompts and the external editor.
package console

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"heygpt/pkg/stream"
)

// Display writes responses to stdout and errors to stderr.
type Display struct {
	out      io.Writer
	err      io.Writer
	errColor *color.Color
}

// NewDisplay creates a Display over the given writers. Nil writers default to
// the process stdout and stderr.
func NewDisplay(out, err io.Writer) *Display {
	if out == nil {
		out = os.Stdout
	}
	if err == nil {
		err = os.Stderr
	}
	return &Display{out: out, err: err, errColor: color.New(color.FgRed)}
}

// PrintStream prints channel 0 of src as it arrives and returns every
// channel's full text.
func (d *Display) PrintStream(ctx context.Context, src stream.Source) ([]string, error) {
	return stream.Aggregate(ctx, src, d.out)
}

// Print writes text and a newline to stdout.
func (d *Display) Print(text string) {
	fmt.Fprintln(d.out, text)
	flush(d.out)
}

// Eprint writes text and a newline to stderr in red.
func (d *Display) Eprint(text string) {
	d.errColor.Fprintln(d.err, text)
	flush(d.err)
}

// flush pushes buffered output through when the writer buffers.
func flush(w io.Writer) {
	if f, ok := w.(interface{ Flush() error }); ok {
		_ = f.Flush()
	}
}
