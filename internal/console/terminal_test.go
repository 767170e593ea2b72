package console

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heygpt/pkg/schema"
)

func newTestTerminal(t *testing.T, env map[string]string) (*Terminal, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	term := NewTerminal(&out)
	term.hint.DisableColor()
	term.ttyPath = filepath.Join(t.TempDir(), "no-tty")
	term.getenv = func(key string) string { return env[key] }
	return term, &out
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "editor.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestTerminal_ElicitCycleResponse(t *testing.T) {
	term, out := newTestTerminal(t, nil)
	require.NoError(t, os.WriteFile(term.ttyPath, []byte("q\x1b[C"), 0o644))

	resp, err := term.ElicitCycleResponse(context.Background(), "[Press enter to continue; e to Edit]")
	require.NoError(t, err)
	assert.Equal(t, schema.CycleNextRight, resp)
	assert.Equal(t, "[Press enter to continue; e to Edit]\n", out.String())
}

func TestTerminal_ElicitCycleResponse_NoTTY(t *testing.T) {
	term, _ := newTestTerminal(t, nil)

	_, err := term.ElicitCycleResponse(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestTerminal_ElicitCycleResponse_Cancelled(t *testing.T) {
	term, _ := newTestTerminal(t, nil)
	// A fifo with no writer blocks the key reader like an idle terminal.
	require.NoError(t, syscall.Mkfifo(term.ttyPath, 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := term.ElicitCycleResponse(ctx, "prompt")
		errc <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("key reader still blocked after cancellation")
	}
}

func TestTerminal_EditText(t *testing.T) {
	t.Run("unchanged text is returned as given", func(t *testing.T) {
		term, _ := newTestTerminal(t, map[string]string{"EDITOR": "true"})

		got, err := term.EditText(context.Background(), "list three colours")
		require.NoError(t, err)
		assert.Equal(t, "list three colours", got)
	})

	t.Run("returns edited content", func(t *testing.T) {
		script := writeScript(t, `printf 'list five colours\n' > "$1"`)
		term, _ := newTestTerminal(t, map[string]string{"EDITOR": script})

		got, err := term.EditText(context.Background(), "list three colours")
		require.NoError(t, err)
		assert.Equal(t, "list five colours", got)
	})

	t.Run("VISUAL wins over EDITOR", func(t *testing.T) {
		script := writeScript(t, `printf 'visual' > "$1"`)
		term, _ := newTestTerminal(t, map[string]string{"VISUAL": script, "EDITOR": "false"})

		got, err := term.EditText(context.Background(), "x")
		require.NoError(t, err)
		assert.Equal(t, "visual", got)
	})

	t.Run("non-zero exit fails", func(t *testing.T) {
		term, _ := newTestTerminal(t, map[string]string{"EDITOR": "false"})

		_, err := term.EditText(context.Background(), "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "did not exit successfully")
	})
}

func TestTerminal_DefaultEditor(t *testing.T) {
	term, _ := newTestTerminal(t, nil)
	assert.Equal(t, []string{"nvim"}, term.editor())

	term.getenv = func(string) string { return "code --wait" }
	assert.Equal(t, []string{"code", "--wait"}, term.editor())
}
