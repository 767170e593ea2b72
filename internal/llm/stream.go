package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const (
	ssePrefix = "data:"
	sseDone   = "[DONE]"
)

type chunk struct {
	Choices []struct {
		Index int `json:"index"`
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// ChatStream reads server-sent chat completion chunks. Each call to Next
// yields one fragment set, indexed by choice.
type ChatStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	log     *zap.SugaredLogger
	done    bool
}

func newChatStream(body io.ReadCloser, log *zap.SugaredLogger) *ChatStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &ChatStream{body: body, scanner: scanner, log: log}
}

// Next returns the next fragment set, or io.EOF once the server sends [DONE]
// or closes the body. Malformed events and events without content are skipped.
func (s *ChatStream) Next(ctx context.Context) ([]string, error) {
	for {
		if s.done {
			return nil, io.EOF
		}
		if err := ctx.Err(); err != nil {
			return nil, contextError(err)
		}
		if !s.scanner.Scan() {
			s.done = true
			if err := s.scanner.Err(); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, contextError(ctxErr)
				}
				return nil, transportError(fmt.Errorf("read stream: %w", err))
			}
			return nil, io.EOF
		}

		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, ssePrefix) {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, ssePrefix))
		if data == sseDone {
			s.done = true
			return nil, io.EOF
		}

		set, err := decodeChunk(data)
		if err != nil {
			s.log.Debugw("Skipping malformed stream event", "data", data, "error", err)
			continue
		}
		if set == nil {
			continue
		}
		return set, nil
	}
}

// Close releases the response body.
func (s *ChatStream) Close() error {
	s.done = true
	return s.body.Close()
}

// decodeChunk turns one event into a fragment set ordered by choice index.
// Choices without content are omitted; it returns nil when none remain.
func decodeChunk(data string) ([]string, error) {
	var c chunk
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, err
	}
	sort.SliceStable(c.Choices, func(i, j int) bool {
		return c.Choices[i].Index < c.Choices[j].Index
	})
	var set []string
	for _, choice := range c.Choices {
		if choice.Delta.Content == "" {
			continue
		}
		set = append(set, choice.Delta.Content)
	}
	return set, nil
}

// contextError keeps cancellation as is and reports an expired deadline as a
// timeout.
func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError(err)
	}
	return err
}
