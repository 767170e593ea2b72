package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"heygpt/pkg/schema"
)

// ErrInterrupted is returned when the user presses Ctrl-C at a prompt.
var ErrInterrupted = errors.New("interrupted")

const (
	keyCtrlC = 0x03
	keyEsc   = 0x1b
)

// readCycleResponse reads raw-mode keystrokes from r until one maps to a
// cycle response. Unrecognized keys are ignored.
func readCycleResponse(r io.Reader) (schema.CycleResponse, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("read key: %w", err)
		}

		switch b {
		case '\r', '\n':
			return schema.CycleAccept, nil
		case 'e':
			return schema.CycleEdit, nil
		case 'l':
			return schema.CycleNextRight, nil
		case 'h':
			return schema.CycleNextLeft, nil
		case keyCtrlC:
			return 0, ErrInterrupted
		case keyEsc:
			resp, ok, err := readArrow(br)
			if err != nil {
				return 0, err
			}
			if ok {
				return resp, nil
			}
		}
	}
}

// readArrow decodes the rest of an ESC [ C / ESC [ D sequence.
func readArrow(br *bufio.Reader) (schema.CycleResponse, bool, error) {
	b, err := br.ReadByte()
	if err != nil {
		return 0, false, fmt.Errorf("read key: %w", err)
	}
	if b != '[' && b != 'O' {
		return 0, false, br.UnreadByte()
	}

	b, err = br.ReadByte()
	if err != nil {
		return 0, false, fmt.Errorf("read key: %w", err)
	}
	switch b {
	case 'C':
		return schema.CycleNextRight, true, nil
	case 'D':
		return schema.CycleNextLeft, true, nil
	}
	return 0, false, nil
}
