package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"heygpt/internal/llm"
	"heygpt/internal/repository"
	"heygpt/pkg/schema"
)

// Built-in defaults.
const (
	DefaultChatModel   = "gpt-3.5-turbo"
	DefaultEditModel   = "text-davinci-edit-001"
	DefaultTemperature = float32(0.7)
	DefaultTopK        = 3
	DefaultActAs       = "You are a helpful AI assistant that will give responses in a computer terminal"
	DefaultOpenAIEnv   = "OPENAI_KEY"
	DefaultContextEnv  = "AI_CONTEXT_KEY"
)

// FileConfig is the optional YAML config file. Every field may be omitted.
type FileConfig struct {
	ChatModel         *string  `yaml:"chat_model"`
	EditModel         *string  `yaml:"edit_model"`
	MaxTokens         *int     `yaml:"max_tokens"`
	Temp              *float32 `yaml:"temp"`
	NoPreview         *bool    `yaml:"no_preview"`
	OpenAITokenEnv    *string  `yaml:"open_ai_token_env"`
	OpenAIToken       *string  `yaml:"open_ai_token"`
	ContextAITokenEnv *string  `yaml:"context_ai_token_env"`
	ContextAIToken    *string  `yaml:"context_ai_token"`
	Convo             *string  `yaml:"convo"`
	ConvoLength       *int     `yaml:"convo_length"`
	ConvoDir          *string  `yaml:"convo_dir"`
	ActAs             *string  `yaml:"act_as"`
	TopK              *int     `yaml:"top_k"`
	Memories          []string `yaml:"memories"`
	Memory            *bool    `yaml:"memory"`
	AlwaysEdit        *bool    `yaml:"always_edit"`
	ContextURL        *string  `yaml:"context_url"`
	OpenAIURL         *string  `yaml:"openai_url"`
}

// Flags holds command-line values. Pointer fields are nil unless the flag
// was given.
type Flags struct {
	Prompt            string
	ChatModel         *string
	EditModel         *string
	MaxTokens         *int
	Temp              *float32
	DataPrompt        *string
	NoPreview         *bool
	OpenAITokenEnv    *string
	OpenAIToken       *string
	ContextAITokenEnv *string
	ContextAIToken    *string
	Convo             *string
	NewConvo          bool
	ConvoLength       *int
	ConvoDir          *string
	ActAs             *string
	TopK              *int
	Memories          []string
	Memory            *bool
	Debug             bool
	Edit              bool
	ContextURL        *string
}

// Env is the process environment a model is built from.
type Env struct {
	Home   string
	Getenv func(string) string
	Stdin  string
}

func (e Env) getenv(key string) string {
	if e.Getenv == nil {
		return os.Getenv(key)
	}
	return e.Getenv(key)
}

// Credentials are the secrets and endpoints the effects need.
type Credentials struct {
	OpenAIToken  string
	OpenAIURL    string
	ContextToken string
}

// DefaultConfigPaths lists config file locations in lookup order.
func DefaultConfigPaths(home string) []string {
	return []string{
		filepath.Join(home, ".config", "hey_gpt", "config"),
		filepath.Join(home, "hey_gpt", "config"),
	}
}

// DefaultConvoDir is where conversations live unless configured.
func DefaultConvoDir(home string) string {
	return filepath.Join(home, ".config", "hey_gpt", "conversations")
}

// LoadFileConfig reads the first existing file in paths. It returns the path
// used, or "" when none exist.
func LoadFileConfig(paths []string) (FileConfig, string, error) {
	var cfg FileConfig
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return cfg, "", fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, "", &ValidationError{Field: path, Message: "invalid config file", Err: err}
		}
		return cfg, path, nil
	}
	return cfg, "", nil
}

// LogLevel resolves the log level: --debug or DEBUG=1 force debug,
// otherwise LOG_LEVEL, defaulting to warn.
func LogLevel(debug bool) string {
	if debug || os.Getenv("DEBUG") == "1" {
		return "debug"
	}
	return getEnvOrDefault("LOG_LEVEL", "warn")
}

// BuildModel merges flags over the config file over the environment over
// built-in defaults.
func BuildModel(flags Flags, file FileConfig, env Env) (Model, Credentials, error) {
	var creds Credentials

	openAIToken, err := resolveToken(flags.OpenAIToken, file.OpenAIToken, flags.OpenAITokenEnv, file.OpenAITokenEnv, DefaultOpenAIEnv, env)
	if err != nil {
		return Model{}, creds, &ValidationError{Field: "open_ai_token", Message: "Could not find openai token in environment and it was not provided by user"}
	}
	creds.OpenAIToken = openAIToken
	creds.OpenAIURL = orDefault(file.OpenAIURL, llm.DefaultBaseURL)

	memoryEnabled := pick(flags.Memory, file.Memory, false)
	contextURL := pick(flags.ContextURL, file.ContextURL, "")
	if memoryEnabled {
		token, err := resolveToken(flags.ContextAIToken, file.ContextAIToken, flags.ContextAITokenEnv, file.ContextAITokenEnv, DefaultContextEnv, env)
		if err != nil {
			return Model{}, creds, &ValidationError{Field: "context_ai_token", Message: "Could not find ai context token in environment and it was not provided by user"}
		}
		creds.ContextToken = token
		if contextURL == "" {
			return Model{}, creds, &ValidationError{Field: "context_url", Message: "Context url should be set if memory enabled"}
		}
	}

	mode, err := resolveMode(flags, file, env.Stdin)
	if err != nil {
		return Model{}, creds, err
	}

	algo := Algo{
		ChatModel:   pick(flags.ChatModel, file.ChatModel, DefaultChatModel),
		EditModel:   pick(flags.EditModel, file.EditModel, DefaultEditModel),
		Temperature: pick(flags.Temp, file.Temp, DefaultTemperature),
		MaxTokens:   firstSet(flags.MaxTokens, file.MaxTokens),
	}
	if algo.Temperature < 0 || algo.Temperature > 2 {
		return Model{}, creds, &ValidationError{Field: "temp", Message: "must be between 0 and 2"}
	}
	if algo.MaxTokens != nil && *algo.MaxTokens <= 0 {
		return Model{}, creds, &ValidationError{Field: "max_tokens", Message: "must be positive"}
	}

	_, hasDataPrompt := mode.DataPrompt()
	config := Config{
		Debug:                 flags.Debug,
		PreviewDataGeneration: hasDataPrompt && !pick(flags.NoPreview, file.NoPreview, false),
		ContextURL:            contextURL,
	}

	convo, convoPath := ResolveConversation(flags, file, env.Home)
	memCategories := flags.Memories
	if memCategories == nil {
		memCategories = file.Memories
	}
	memory := Memory{
		Enabled:      memoryEnabled,
		TopK:         pick(flags.TopK, file.TopK, DefaultTopK),
		Categories:   memCategories,
		Conversation: convo,
		ConvoLen:     pick(flags.ConvoLength, file.ConvoLength, 0),
		ConvoPath:    convoPath,
	}
	if memory.TopK < 0 {
		return Model{}, creds, &ValidationError{Field: "top_k", Message: "must not be negative"}
	}
	if memory.ConvoLen < 0 {
		return Model{}, creds, &ValidationError{Field: "convo_length", Message: "must not be negative"}
	}

	return Model{
		Algo:   algo,
		Config: config,
		Mode:   mode,
		Prompt: Prompt{
			Text:  flags.Prompt,
			ActAs: pick(flags.ActAs, file.ActAs, DefaultActAs),
		},
		Memory: memory,
	}, creds, nil
}

// ResolveConversation returns the conversation ID and its history file path.
// --new-convo mints a fresh ID.
func ResolveConversation(flags Flags, file FileConfig, home string) (string, string) {
	convo := pick(flags.Convo, file.Convo, schema.DefaultConversation)
	if flags.NewConvo {
		convo = schema.NewConversationID()
	}
	dir := pick(flags.ConvoDir, file.ConvoDir, DefaultConvoDir(home))
	dir = strings.ReplaceAll(dir, "$HOME", home)
	return convo, repository.ConversationPath(dir, convo)
}

// ResolveContextAccess returns the retrieval endpoint and token, which are
// required even when memory is off.
func ResolveContextAccess(flags Flags, file FileConfig, env Env) (string, string, error) {
	url := pick(flags.ContextURL, file.ContextURL, "")
	if url == "" {
		return "", "", &ValidationError{Field: "context_url", Message: "Context url must be set"}
	}
	token, err := resolveToken(flags.ContextAIToken, file.ContextAIToken, flags.ContextAITokenEnv, file.ContextAITokenEnv, DefaultContextEnv, env)
	if err != nil {
		return "", "", &ValidationError{Field: "context_ai_token", Message: "Could not find ai context token in environment and it was not provided by user"}
	}
	return url, token, nil
}

// resolveMode picks edit or chat and its data source. A data prompt wins
// over stdin.
func resolveMode(flags Flags, file FileConfig, stdin string) (Mode, error) {
	source, data := DataNone, ""
	switch {
	case flags.DataPrompt != nil && *flags.DataPrompt != "":
		source, data = DataFromPrompt, *flags.DataPrompt
	case stdin != "":
		source, data = DataFromStdin, stdin
	}

	if flags.Edit || orDefault(file.AlwaysEdit, false) {
		return EditMode(source, data)
	}
	return ChatMode(source, data), nil
}

var errNoToken = errors.New("token not found")

// resolveToken takes an explicit token, else the config file token, else the
// named environment variable.
func resolveToken(flagToken, fileToken, flagEnv, fileEnv *string, defaultEnv string, env Env) (string, error) {
	if token := pick(flagToken, fileToken, ""); token != "" {
		return token, nil
	}
	if token := env.getenv(pick(flagEnv, fileEnv, defaultEnv)); token != "" {
		return token, nil
	}
	return "", errNoToken
}

// pick returns the first non-nil of flag and file, else def.
func pick[T any](flag, file *T, def T) T {
	if v := firstSet(flag, file); v != nil {
		return *v
	}
	return def
}

func orDefault[T any](v *T, def T) T {
	if v != nil {
		return *v
	}
	return def
}

func firstSet[T any](vals ...*T) *T {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

// getEnvOrDefault returns the value of an environment variable or a default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
