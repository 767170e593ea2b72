package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"heygpt/pkg/schema"
	"heygpt/pkg/stream"
)

// MockRequester records requests and replays canned fragment sets.
type MockRequester struct {
	ChatSets  [][][]string // one entry per ChatStream call
	EditReply []string
	ChatErr   error
	EditErr   error

	ChatCalls    [][]Message
	EditCalls    []editCall
	ChatAlgos    []Algo
	ChatStreamNo int
}

type editCall struct {
	Instruction string
	Input       string
	Algo        Algo
}

func (r *MockRequester) ChatStream(_ context.Context, messages []Message, algo Algo) (stream.Source, error) {
	r.ChatCalls = append(r.ChatCalls, messages)
	r.ChatAlgos = append(r.ChatAlgos, algo)
	if r.ChatErr != nil {
		return nil, r.ChatErr
	}
	if r.ChatStreamNo >= len(r.ChatSets) {
		return nil, errors.New("unexpected chat request")
	}
	sets := r.ChatSets[r.ChatStreamNo]
	r.ChatStreamNo++
	return &closingSource{SliceSource: stream.FromSlices(sets)}, nil
}

func (r *MockRequester) Edit(_ context.Context, instruction, input string, algo Algo) ([]string, error) {
	r.EditCalls = append(r.EditCalls, editCall{Instruction: instruction, Input: input, Algo: algo})
	if r.EditErr != nil {
		return nil, r.EditErr
	}
	return r.EditReply, nil
}

// closingSource counts Close calls so tests can check streams are released.
type closingSource struct {
	*stream.SliceSource
	closed int
}

func (c *closingSource) Close() error {
	c.closed++
	return nil
}

// MockDisplayer aggregates into a buffer and records plain prints.
type MockDisplayer struct {
	Out     bytes.Buffer
	Printed []string
	Errors  []string
	Sources []stream.Source
}

func (d *MockDisplayer) PrintStream(ctx context.Context, src stream.Source) ([]string, error) {
	d.Sources = append(d.Sources, src)
	return stream.Aggregate(ctx, src, &d.Out)
}

func (d *MockDisplayer) Print(text string) {
	d.Printed = append(d.Printed, text)
}

func (d *MockDisplayer) Eprint(text string) {
	d.Errors = append(d.Errors, text)
}

// MockInteractor replays scripted key presses and editor results.
type MockInteractor struct {
	Responses []schema.CycleResponse
	Edits     []string
	EditErr   error

	Prompts     []string
	EditInputs  []string
	responseIdx int
	editIdx     int
}

func (u *MockInteractor) ElicitCycleResponse(_ context.Context, prompt string) (schema.CycleResponse, error) {
	u.Prompts = append(u.Prompts, prompt)
	if u.responseIdx >= len(u.Responses) {
		return 0, fmt.Errorf("no scripted response for prompt %d", u.responseIdx)
	}
	resp := u.Responses[u.responseIdx]
	u.responseIdx++
	return resp, nil
}

func (u *MockInteractor) EditText(_ context.Context, initial string) (string, error) {
	u.EditInputs = append(u.EditInputs, initial)
	if u.EditErr != nil {
		return "", u.EditErr
	}
	if u.editIdx >= len(u.Edits) {
		return initial, nil
	}
	edited := u.Edits[u.editIdx]
	u.editIdx++
	return edited, nil
}

// MockMemory records saves and queries.
type MockMemory struct {
	Hits     []schema.MemoryRecord
	QueryErr error
	SaveErr  error

	QueryCalls int
	QueryText  string
	Scopes     []schema.QueryScope
	Saved      []schema.MemoryInput
	SavedUnder string
	SaveCalls  int
	Deleted    []string
}

func (m *MockMemory) Save(_ context.Context, inputs []schema.MemoryInput, category string) ([]string, error) {
	m.SaveCalls++
	if m.SaveErr != nil {
		return nil, m.SaveErr
	}
	m.Saved = append(m.Saved, inputs...)
	m.SavedUnder = category
	ids := make([]string, len(inputs))
	for i := range inputs {
		ids[i] = fmt.Sprintf("mem-%d", i)
	}
	return ids, nil
}

func (m *MockMemory) Query(_ context.Context, text string, scopes []schema.QueryScope) ([]schema.MemoryRecord, error) {
	m.QueryCalls++
	m.QueryText = text
	m.Scopes = scopes
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	return m.Hits, nil
}

func (m *MockMemory) Delete(_ context.Context, id string) error {
	m.Deleted = append(m.Deleted, id)
	return nil
}

// MockHistory keeps the transcript in memory.
type MockHistory struct {
	Segments []schema.DialogueSegment
	GetErr   error
	SaveErr  error

	GetCalls  []int
	SaveCalls int
	Saved     []schema.HistoryEntry
}

func (h *MockHistory) SaveHistory(entries []schema.HistoryEntry) error {
	h.SaveCalls++
	if h.SaveErr != nil {
		return h.SaveErr
	}
	h.Saved = append(h.Saved, entries...)
	return nil
}

func (h *MockHistory) GetHistory(n int) ([]schema.DialogueSegment, error) {
	h.GetCalls = append(h.GetCalls, n)
	if h.GetErr != nil {
		return nil, h.GetErr
	}
	if n < len(h.Segments) {
		return h.Segments[len(h.Segments)-n:], nil
	}
	return h.Segments, nil
}

type mocks struct {
	requester *MockRequester
	displayer *MockDisplayer
	user      *MockInteractor
	memory    *MockMemory
	history   *MockHistory
}

func newMocks() (*mocks, Effects) {
	m := &mocks{
		requester: &MockRequester{},
		displayer: &MockDisplayer{},
		user:      &MockInteractor{},
		memory:    &MockMemory{},
		history:   &MockHistory{},
	}
	return m, Effects{
		Requester: m.requester,
		Displayer: m.displayer,
		User:      m.user,
		Memory:    m.memory,
		History:   m.history,
		Log:       NopLogger(),
	}
}

// baseModel is a chat session with memory and history off.
func baseModel(prompt string) Model {
	return Model{
		Algo: Algo{
			ChatModel:   DefaultChatModel,
			EditModel:   DefaultEditModel,
			Temperature: DefaultTemperature,
		},
		Mode: ChatMode(DataNone, ""),
		Prompt: Prompt{
			Text:  prompt,
			ActAs: DefaultActAs,
		},
		Memory: Memory{
			TopK:         DefaultTopK,
			Conversation: schema.DefaultConversation,
		},
	}
}
