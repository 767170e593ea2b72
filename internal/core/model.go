package core

// Message is one chat message sent to the model.
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Algo selects the models and sampling settings. It does not change once the
// session starts.
type Algo struct {
	ChatModel   string
	EditModel   string
	Temperature float32
	MaxTokens   *int
}

// Config holds session switches.
type Config struct {
	Debug                 bool
	PreviewDataGeneration bool
	ContextURL            string
}

// ModeKind is the workflow a session runs.
type ModeKind int

const (
	ModeChat ModeKind = iota
	ModeEdit
)

func (k ModeKind) String() string {
	if k == ModeEdit {
		return "edit"
	}
	return "chat"
}

// DataSource says where a mode's input data comes from.
type DataSource int

const (
	DataNone DataSource = iota
	DataFromPrompt
	DataFromStdin
)

// Mode is the workflow plus its input data. Data holds the data-generation
// prompt for DataFromPrompt and the piped text for DataFromStdin.
type Mode struct {
	Kind   ModeKind
	Source DataSource
	Data   string
}

// ChatMode builds a chat mode.
func ChatMode(source DataSource, data string) Mode {
	return Mode{Kind: ModeChat, Source: source, Data: data}
}

// EditMode builds an edit mode. Edit always needs input data.
func EditMode(source DataSource, data string) (Mode, error) {
	if source == DataNone {
		return Mode{}, &MissingInputError{Message: "Data must be provided for edit mode"}
	}
	return Mode{Kind: ModeEdit, Source: source, Data: data}, nil
}

// DataPrompt returns the data-generation prompt, if the mode has one.
func (m Mode) DataPrompt() (string, bool) {
	if m.Source == DataFromPrompt {
		return m.Data, true
	}
	return "", false
}

// Stdin returns the piped input, if the mode has any.
func (m Mode) Stdin() (string, bool) {
	if m.Source == DataFromStdin {
		return m.Data, true
	}
	return "", false
}

// Prompt carries the user's text and what the session derives from it.
type Prompt struct {
	Text            string
	GeneratedData   *string
	FinalChatPrompt *string
	ActAs           string
}

// Memory configures history and long-term retrieval.
type Memory struct {
	Enabled      bool
	TopK         int
	Categories   []string
	Conversation string
	ConvoLen     int
	ConvoPath    string
}

// Output is filled once, by the state that produced the response.
type Output struct {
	ChatResults []string
	EditResults []string
}

// Model is the session aggregate handed from state to state.
type Model struct {
	Algo   Algo
	Config Config
	Mode   Mode
	Prompt Prompt
	Memory Memory
	Output Output
}

// WithGeneratedData records the accepted data-generation result.
func (m Model) WithGeneratedData(data string) Model {
	m.Prompt.GeneratedData = &data
	return m
}

// WithChatPrompt records the query text actually sent.
func (m Model) WithChatPrompt(prompt string) Model {
	m.Prompt.FinalChatPrompt = &prompt
	return m
}

// WithChatResponse stores the chat results.
func (m Model) WithChatResponse(results []string) Model {
	if results == nil {
		results = []string{}
	}
	m.Output.ChatResults = results
	return m
}

// WithEditResponse stores the edit results.
func (m Model) WithEditResponse(results []string) Model {
	if results == nil {
		results = []string{}
	}
	m.Output.EditResults = results
	return m
}
