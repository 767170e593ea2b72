package retrieval

import (
	"sort"

	"heygpt/pkg/schema"
)

// TopK keeps the k highest-scoring records across every scope. Records with
// equal scores keep the order in which they were returned.
func TopK(records []schema.MemoryRecord, k int) []schema.MemoryRecord {
	ranked := make([]schema.MemoryRecord, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if k < 0 {
		k = 0
	}
	if k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}
