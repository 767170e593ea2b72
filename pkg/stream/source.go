// Package stream carries partial model output from a producer to a single consumer.
//
// A Source yields fragment sets: element i of a set is the next fragment of output
// channel i. Sources are pull-based and are consumed to exhaustion by Aggregate.
package stream

import (
	"context"
	"io"
)

// Source is a lazy sequence of fragment sets.
// Next returns io.EOF once the sequence is exhausted; any other error is terminal.
type Source interface {
	Next(ctx context.Context) ([]string, error)
}

// SliceSource replays a fixed list of fragment sets.
type SliceSource struct {
	sets [][]string
	pos  int
}

// FromSlices creates a Source that yields sets in order.
func FromSlices(sets [][]string) *SliceSource {
	return &SliceSource{sets: sets}
}

// Next returns the next fragment set or io.EOF.
func (s *SliceSource) Next(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.sets) {
		return nil, io.EOF
	}
	set := s.sets[s.pos]
	s.pos++
	return set, nil
}
