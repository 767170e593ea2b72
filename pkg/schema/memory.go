package schema

import "time"

// MemoryInput is a piece of text to be saved to long-term memory.
type MemoryInput struct {
	Text   string
	Author string
}

// MemoryRecord is a single hit returned by a long-term memory query.
type MemoryRecord struct {
	ID        string
	Text      string
	Author    string
	Category  string
	CreatedAt time.Time
	Score     float64
}

// QueryWindow bounds a memory query by creation time. Nil bounds are open.
type QueryWindow struct {
	Min *time.Time
	Max *time.Time
}

// QueryScope restricts one memory query to a category and time window.
type QueryScope struct {
	Category string
	Window   QueryWindow
}
