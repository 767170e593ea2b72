package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

type flusher interface {
	Flush() error
}

// Aggregate drains src, writing channel 0 fragments to w as they arrive, and
// returns the accumulated text of every channel.
//
// Accumulators are positional: a fragment at index i extends accumulator i if it
// exists and otherwise becomes the next accumulator. The result has no gaps and
// result[0] is always the primary answer. A single trailing newline is written
// once src is exhausted.
func Aggregate(ctx context.Context, src Source, w io.Writer) ([]string, error) {
	var acc []*strings.Builder

	for {
		set, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		for i, fragment := range set {
			if i == 0 {
				if err := writeFlush(w, fragment); err != nil {
					return nil, err
				}
			}
			if i < len(acc) {
				acc[i].WriteString(fragment)
				continue
			}
			b := &strings.Builder{}
			b.WriteString(fragment)
			acc = append(acc, b)
		}
	}

	if err := writeFlush(w, "\n"); err != nil {
		return nil, err
	}

	results := make([]string, len(acc))
	for i, b := range acc {
		results[i] = b.String()
	}
	return results, nil
}

func writeFlush(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if f, ok := w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("flush output: %w", err)
		}
	}
	return nil
}
