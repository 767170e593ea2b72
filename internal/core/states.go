package core

import (
	"context"
	"fmt"

	"heygpt/pkg/schema"
	"heygpt/pkg/stream"
)

const (
	hintSingle = "\n[Press enter to continue; e to Edit]"
	hintCycle  = "\n[Press enter to continue; e to Edit; Cycle with <-/->/h/l]"
)

// NewInitState is the first state of every session.
func NewInitState(fx Effects) State {
	if fx.Log == nil {
		fx.Log = NopLogger()
	}
	return &initState{fx: fx}
}

type initState struct {
	fx Effects
}

func (s *initState) Name() string { return "Init" }

func (s *initState) Execute(_ context.Context, m Model) (State, Model, error) {
	if prompt, ok := m.Mode.DataPrompt(); ok {
		return &dataRequestState{fx: s.fx, prompt: prompt}, m, nil
	}
	return &requestState{fx: s.fx}, m, nil
}

// dataRequestState generates auxiliary data from a prompt.
type dataRequestState struct {
	fx     Effects
	prompt string
}

func (s *dataRequestState) Name() string { return "Data Request" }

func (s *dataRequestState) Execute(ctx context.Context, m Model) (State, Model, error) {
	src, err := s.fx.Requester.ChatStream(ctx, []Message{
		{Role: string(schema.RoleUser), Content: s.prompt},
	}, m.Algo)
	if err != nil {
		return nil, m, err
	}

	choices, err := printStream(ctx, s.fx, src)
	if err != nil {
		return nil, m, err
	}
	if len(choices) == 0 {
		return nil, m, &MissingInputError{Message: "Data generation returned no output"}
	}

	if m.Config.PreviewDataGeneration {
		// Choice 0 was streamed live, so the first preview does not reprint it.
		return &previewState{
			fx:      s.fx,
			choices: choices,
			index:   0,
			prompt:  s.prompt,
			display: false,
		}, m, nil
	}
	return &requestState{fx: s.fx}, m.WithGeneratedData(choices[0]), nil
}

// previewState lets the user browse, regenerate or accept generated data.
type previewState struct {
	fx      Effects
	choices []string
	index   int
	prompt  string
	display bool
}

func (s *previewState) Name() string { return "Preview Generated Data" }

func (s *previewState) Execute(ctx context.Context, m Model) (State, Model, error) {
	if len(s.choices) == 0 {
		return nil, m, &MissingInputError{Message: "No generated data to preview"}
	}

	// An index moved out of range is pulled back to the nearest end and shown again.
	if s.index < 0 || s.index >= len(s.choices) {
		next := *s
		next.display = true
		if s.index < 0 {
			next.index = 0
		} else {
			next.index = len(s.choices) - 1
		}
		return &next, m, nil
	}

	choice := s.choices[s.index]
	if s.display {
		s.fx.Displayer.Print(choice)
	}

	hint := hintSingle
	if len(s.choices) > 1 {
		hint = hintCycle
	}
	resp, err := s.fx.User.ElicitCycleResponse(ctx, hint)
	if err != nil {
		return nil, m, err
	}

	switch resp {
	case schema.CycleNextRight, schema.CycleNextLeft:
		next := *s
		next.display = true
		if resp == schema.CycleNextRight {
			next.index++
		} else {
			next.index--
		}
		return &next, m, nil
	case schema.CycleEdit:
		edited, err := s.fx.User.EditText(ctx, s.prompt)
		if err != nil {
			return nil, m, err
		}
		return &dataRequestState{fx: s.fx, prompt: edited}, m, nil
	case schema.CycleAccept:
		return &requestState{fx: s.fx}, m.WithGeneratedData(choice), nil
	default:
		return nil, m, fmt.Errorf("unknown cycle response %d", int(resp))
	}
}

// requestState routes to the workflow for the session's mode.
type requestState struct {
	fx Effects
}

func (s *requestState) Name() string { return "Request" }

func (s *requestState) Execute(_ context.Context, m Model) (State, Model, error) {
	if m.Mode.Kind == ModeEdit {
		return &editState{fx: s.fx}, m, nil
	}
	return &chatState{fx: s.fx}, m, nil
}

// editState runs a single edit request over the resolved input.
type editState struct {
	fx Effects
}

func (s *editState) Name() string { return "Edit" }

func (s *editState) Execute(ctx context.Context, m Model) (State, Model, error) {
	input, ok := ResolveEditInput(m)
	if !ok {
		return nil, m, &MissingInputError{Message: "No input data given to edit request"}
	}

	choices, err := s.fx.Requester.Edit(ctx, m.Prompt.Text, input, m.Algo)
	if err != nil {
		return nil, m, err
	}

	results, err := printStream(ctx, s.fx, stream.FromBatch(choices))
	if err != nil {
		return nil, m, err
	}
	return &successState{fx: s.fx}, m.WithEditResponse(results), nil
}

// chatState assembles the enriched prompt and streams the reply.
type chatState struct {
	fx Effects
}

func (s *chatState) Name() string { return "Chat" }

func (s *chatState) Execute(ctx context.Context, m Model) (State, Model, error) {
	query := ResolveChatQuery(m)

	var history []schema.DialogueSegment
	if m.Memory.ConvoLen > 0 {
		var err error
		history, err = s.fx.History.GetHistory(m.Memory.ConvoLen)
		if err != nil {
			return nil, m, err
		}
	}
	s.fx.Log.Debug("Loaded conversation history", "segments", len(history))

	var memories []schema.MemoryRecord
	if m.Memory.Enabled {
		scopes := MemoryScopes(m.Memory, history)
		records, err := s.fx.Memory.Query(ctx, query, scopes)
		if err != nil {
			return nil, m, err
		}
		memories = RankMemories(records, m.Memory.TopK)
		s.fx.Log.Debug("Retrieved memories", "scopes", len(scopes), "hits", len(records), "kept", len(memories))
	}

	messages := AssembleMessages(m.Prompt.ActAs, memories, history, query)
	src, err := s.fx.Requester.ChatStream(ctx, messages, m.Algo)
	if err != nil {
		return nil, m, err
	}

	results, err := printStream(ctx, s.fx, src)
	if err != nil {
		return nil, m, err
	}
	return &successState{fx: s.fx}, m.WithChatResponse(results).WithChatPrompt(query), nil
}

// successState persists a finished chat and ends the session.
type successState struct {
	fx Effects
}

func (s *successState) Name() string { return "Success" }

func (s *successState) Execute(ctx context.Context, m Model) (State, Model, error) {
	if m.Mode.Kind != ModeChat || len(m.Output.ChatResults) == 0 {
		return nil, m, nil
	}

	// An absent final prompt is persisted as an empty string.
	prompt := ""
	if m.Prompt.FinalChatPrompt != nil {
		prompt = *m.Prompt.FinalChatPrompt
	}
	response := m.Output.ChatResults[0]

	if m.Memory.Enabled {
		ids, err := s.fx.Memory.Save(ctx, []schema.MemoryInput{
			{Text: prompt, Author: string(schema.RoleUser)},
			{Text: response, Author: string(schema.RoleAssistant)},
		}, m.Memory.Conversation)
		if err != nil {
			return nil, m, err
		}
		s.fx.Log.Debug("Saved memories", "ids", ids)
	}

	if err := s.fx.History.SaveHistory([]schema.HistoryEntry{
		{Author: string(schema.RoleUser), Content: prompt},
		{Author: string(schema.RoleAssistant), Content: response},
	}); err != nil {
		return nil, m, err
	}
	return nil, m, nil
}
