package schema

import "time"

// DialogueSegment is one turn of a stored conversation transcript.
// Segments are append-only and never rewritten once saved.
type DialogueSegment struct {
	Role      string    `json:"role" yaml:"role"`
	Content   string    `json:"content" yaml:"content"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Script is the document stored in a conversation history file.
type Script struct {
	Dialogue []DialogueSegment `yaml:"dialogue"`
}

// HistoryEntry is a dialogue turn waiting to be stamped and appended to history.
type HistoryEntry struct {
	Author  string
	Content string
}
