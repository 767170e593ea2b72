package stream

import "strings"

// Transpose turns rows into columns. Column i holds, in row order, the element at
// position i of every row long enough to have one. Short rows are skipped rather
// than padded, so [[1,2,3],[4,5],[6,7,8,9]] becomes [[1,4,6],[2,5,7],[3,8],[9]].
func Transpose[T any](rows [][]T) [][]T {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	cols := make([][]T, 0, width)
	for i := 0; i < width; i++ {
		col := make([]T, 0, len(rows))
		for _, row := range rows {
			if i < len(row) {
				col = append(col, row[i])
			}
		}
		cols = append(cols, col)
	}
	return cols
}

// Words splits text on whitespace and suffixes every word with one space.
func Words(text string) []string {
	fields := strings.Fields(text)
	words := make([]string, len(fields))
	for i, f := range fields {
		words[i] = f + " "
	}
	return words
}

// FromBatch adapts a complete multi-choice response into a Source so it can be
// displayed through the same path as a live stream.
func FromBatch(choices []string) *SliceSource {
	rows := make([][]string, len(choices))
	for i, c := range choices {
		rows[i] = Words(c)
	}
	return FromSlices(Transpose(rows))
}
