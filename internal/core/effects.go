package core

import (
	"context"

	"heygpt/internal/llm"
	"heygpt/pkg/schema"
	"heygpt/pkg/stream"
)

// Requester issues model requests.
type Requester interface {
	ChatStream(ctx context.Context, messages []Message, algo Algo) (stream.Source, error)
	Edit(ctx context.Context, instruction, input string, algo Algo) ([]string, error)
}

// Displayer writes to the terminal.
type Displayer interface {
	PrintStream(ctx context.Context, src stream.Source) ([]string, error)
	Print(text string)
	Eprint(text string)
}

// Interactor asks the user for decisions.
type Interactor interface {
	ElicitCycleResponse(ctx context.Context, prompt string) (schema.CycleResponse, error)
	EditText(ctx context.Context, initial string) (string, error)
}

// LongTermMemory stores and retrieves past conversation text.
type LongTermMemory interface {
	Save(ctx context.Context, inputs []schema.MemoryInput, category string) ([]string, error)
	Query(ctx context.Context, text string, scopes []schema.QueryScope) ([]schema.MemoryRecord, error)
	Delete(ctx context.Context, id string) error
}

// History is the short-term conversation transcript.
type History interface {
	SaveHistory(entries []schema.HistoryEntry) error
	GetHistory(n int) ([]schema.DialogueSegment, error)
}

// Effects bundles every collaborator a state may call. It is handed from
// one state to the next by value.
type Effects struct {
	Requester Requester
	Displayer Displayer
	User      Interactor
	Memory    LongTermMemory
	History   History
	Log       Logger
}

// llmRequester adapts llm.Client to Requester.
type llmRequester struct {
	client *llm.Client
}

// NewLLMRequester wraps an OpenAI client.
func NewLLMRequester(client *llm.Client) Requester {
	return &llmRequester{client: client}
}

func (r *llmRequester) ChatStream(ctx context.Context, messages []Message, algo Algo) (stream.Source, error) {
	msgs := make([]llm.Message, len(messages))
	for i, m := range messages {
		msgs[i] = llm.Message{Role: m.Role, Content: m.Content}
	}
	s, err := r.client.ChatStream(ctx, llm.ChatRequest{
		Model:       algo.ChatModel,
		Messages:    msgs,
		Temperature: algo.Temperature,
		MaxTokens:   algo.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *llmRequester) Edit(ctx context.Context, instruction, input string, algo Algo) ([]string, error) {
	return r.client.Edit(ctx, llm.EditRequest{
		Model:       algo.EditModel,
		Instruction: instruction,
		Input:       input,
		Temperature: algo.Temperature,
	})
}
