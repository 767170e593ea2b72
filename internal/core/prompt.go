package core

import (
	"fmt"
	"strings"
	"time"

	"heygpt/internal/retrieval"
	"heygpt/pkg/schema"
)

const memoryPreamble = "Below is a list of text related to the current query, it has metadata prepended between the square braces: "

// memoryTimeLayout renders memory timestamps in the system message.
const memoryTimeLayout = "2006-01-02 15:04:05 MST"

// ResolveChatQuery is the query text for a chat request. Generated data wins
// over stdin; empty data is ignored.
func ResolveChatQuery(m Model) string {
	if data, ok := inputData(m); ok {
		return fmt.Sprintf("%s. Use this input: %s.", m.Prompt.Text, data)
	}
	return m.Prompt.Text
}

// ResolveEditInput is the text to edit: generated data, else stdin.
func ResolveEditInput(m Model) (string, bool) {
	return inputData(m)
}

func inputData(m Model) (string, bool) {
	if m.Prompt.GeneratedData != nil && *m.Prompt.GeneratedData != "" {
		return *m.Prompt.GeneratedData, true
	}
	if stdin, ok := m.Mode.Stdin(); ok && stdin != "" {
		return stdin, true
	}
	return "", false
}

// MemoryScopes builds one open scope per memory category, then a scope over
// the conversation itself that ends one second before the oldest loaded
// history segment.
func MemoryScopes(mem Memory, history []schema.DialogueSegment) []schema.QueryScope {
	scopes := make([]schema.QueryScope, 0, len(mem.Categories)+1)
	for _, category := range mem.Categories {
		scopes = append(scopes, schema.QueryScope{Category: category})
	}

	var window schema.QueryWindow
	if len(history) > 0 {
		upper := history[0].CreatedAt.Add(-time.Second)
		window.Max = &upper
	}
	return append(scopes, schema.QueryScope{Category: mem.Conversation, Window: window})
}

// RankMemories keeps the topK best hits across all scopes.
func RankMemories(records []schema.MemoryRecord, topK int) []schema.MemoryRecord {
	return retrieval.TopK(records, topK)
}

// SystemMessage renders the persona followed by any retrieved memories.
func SystemMessage(actAs string, memories []schema.MemoryRecord) string {
	var b strings.Builder
	for _, mem := range memories {
		fmt.Fprintf(&b, "[author: %s, category: %s, created_at: %s] %s\n",
			mem.Author, mem.Category, mem.CreatedAt.UTC().Format(memoryTimeLayout), mem.Text)
	}

	memoryMsg := ""
	if b.Len() > 0 {
		memoryMsg = memoryPreamble + b.String()
	}
	return fmt.Sprintf("%s. %s", actAs, memoryMsg)
}

// AssembleMessages orders a chat request: the system message, the loaded
// history oldest first, then the query.
func AssembleMessages(actAs string, memories []schema.MemoryRecord, history []schema.DialogueSegment, query string) []Message {
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: string(schema.RoleSystem), Content: SystemMessage(actAs, memories)})
	for _, seg := range history {
		messages = append(messages, Message{Role: seg.Role, Content: seg.Content})
	}
	return append(messages, Message{Role: string(schema.RoleUser), Content: query})
}
