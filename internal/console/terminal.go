package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"heygpt/pkg/schema"
)

const defaultEditor = "nvim"

// Terminal handles interactive input on the controlling tty. Keys are read
// from ttyPath rather than stdin because stdin may carry piped data.
type Terminal struct {
	out       io.Writer
	hint      *color.Color
	ttyPath   string
	getenv    func(string) string
	editorCmd func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewTerminal creates a Terminal that prints prompts to out.
func NewTerminal(out io.Writer) *Terminal {
	if out == nil {
		out = os.Stdout
	}
	return &Terminal{
		out:       out,
		hint:      color.New(color.FgCyan),
		ttyPath:   "/dev/tty",
		getenv:    os.Getenv,
		editorCmd: exec.CommandContext,
	}
}

// ElicitCycleResponse prints prompt and blocks until the user presses a
// recognized key. The terminal is in raw mode only while waiting.
func (t *Terminal) ElicitCycleResponse(ctx context.Context, prompt string) (schema.CycleResponse, error) {
	t.hint.Fprintln(t.out, prompt)

	tty, err := os.OpenFile(t.ttyPath, os.O_RDWR, 0)
	if err != nil {
		return 0, fmt.Errorf("open terminal: %w", err)
	}
	defer tty.Close()

	// Fd would switch the file to blocking mode, and Close could then no
	// longer interrupt a pending read.
	fd, err := sysFd(tty)
	if err != nil {
		return 0, fmt.Errorf("terminal descriptor: %w", err)
	}
	restore := func() {}
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return 0, fmt.Errorf("enter raw mode: %w", err)
		}
		restore = func() { _ = term.Restore(fd, state) }
	}
	defer func() { restore() }()

	type result struct {
		resp schema.CycleResponse
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := readCycleResponse(tty)
		done <- result{resp, err}
	}()

	select {
	case r := <-done:
		return r.resp, r.err
	case <-ctx.Done():
		restore()
		restore = func() {}
		// The tty is still non-blocking, so closing it ends the pending read.
		_ = tty.Close()
		<-done
		return 0, ctx.Err()
	}
}

// sysFd returns the descriptor of f without changing its blocking mode.
func sysFd(f *os.File) (int, error) {
	conn, err := f.SyscallConn()
	if err != nil {
		return 0, err
	}
	var fd int
	if err := conn.Control(func(p uintptr) { fd = int(p) }); err != nil {
		return 0, err
	}
	return fd, nil
}

// EditText opens initial in the user's editor and returns the saved text. It
// returns initial unchanged when the file was not modified.
func (t *Terminal) EditText(ctx context.Context, initial string) (string, error) {
	tmp, err := os.CreateTemp("", "heygpt-prompt-*.txt")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.WriteString(initial); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	editor := t.editor()
	cmd := t.editorCmd(ctx, editor[0], append(editor[1:], path)...)
	if tty, err := os.OpenFile(t.ttyPath, os.O_RDWR, 0); err == nil {
		defer tty.Close()
		cmd.Stdin, cmd.Stdout, cmd.Stderr = tty, tty, tty
	} else {
		cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%s did not exit successfully (status %d)", editor[0], exitErr.ExitCode())
		}
		return "", fmt.Errorf("run editor %s: %w", editor[0], err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read edited text: %w", err)
	}
	edited := strings.TrimRight(string(data), "\n")
	if edited == strings.TrimRight(initial, "\n") {
		return initial, nil
	}
	return edited, nil
}

// editor resolves $VISUAL, then $EDITOR, then nvim, split into argv.
func (t *Terminal) editor() []string {
	for _, key := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(t.getenv(key)); len(fields) > 0 {
			return fields
		}
	}
	return []string{defaultEditor}
}
