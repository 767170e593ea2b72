package schema

import (
	"fmt"
	"strings"
)

// ValidateHistoryEntry validates a dialogue turn before it is appended to history.
func ValidateHistoryEntry(e *HistoryEntry) error {
	author := strings.TrimSpace(e.Author)
	if len(author) < RoleNameMin || len(author) > RoleNameMax {
		return fmt.Errorf("author must be %d-%d characters", RoleNameMin, RoleNameMax)
	}
	return nil
}

// ValidateQueryScope validates a memory query scope.
func ValidateQueryScope(s *QueryScope) error {
	if len(s.Category) < CategoryNameMin || len(s.Category) > CategoryNameMax {
		return fmt.Errorf("category must be %d-%d characters", CategoryNameMin, CategoryNameMax)
	}
	if s.Window.Min != nil && s.Window.Max != nil && s.Window.Min.After(*s.Window.Max) {
		return fmt.Errorf("query window min %s is after max %s", s.Window.Min, s.Window.Max)
	}
	return nil
}
