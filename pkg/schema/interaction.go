package schema

// CycleResponse is the user's answer while browsing generated previews.
type CycleResponse int

const (
	CycleAccept CycleResponse = iota
	CycleEdit
	CycleNextRight
	CycleNextLeft
)

func (c CycleResponse) String() string {
	switch c {
	case CycleAccept:
		return "accept"
	case CycleEdit:
		return "edit"
	case CycleNextRight:
		return "next-right"
	case CycleNextLeft:
		return "next-left"
	default:
		return "unknown"
	}
}
