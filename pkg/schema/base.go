package schema

// Role identifies who authored a chat message or dialogue segment.
type Role string

const (
	RoleSystem    Role = "system"    // Persona and retrieved memories
	RoleUser      Role = "user"      // The person at the terminal
	RoleAssistant Role = "assistant" // The model's reply
)

// MemorySource is the fixed source tag the retrieval plugin files conversation memories under.
const MemorySource = "email"

// DefaultConversation is the conversation used when none is configured.
const DefaultConversation = "a4c80afe-f225-11ed-a05b-0242ac120003"

// ValidationLimits defines the constraints for various fields.
const (
	CategoryNameMin = 1
	CategoryNameMax = 128
	RoleNameMin     = 1
	RoleNameMax     = 32
)
