package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"heygpt/internal/core"
)

// registerFlags adds every session option. They are persistent so the
// subcommands resolve conversations and endpoints the same way.
func registerFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringP("chat-model", "c", core.DefaultChatModel, "Model used for chat requests")
	f.String("edit-model", core.DefaultEditModel, "Model used for edit requests")
	f.Int("max-tokens", 0, "Maximum tokens in a chat response")
	f.Float32P("temp", "t", core.DefaultTemperature, "Sampling temperature between 0 and 2")
	f.StringP("data-prompt", "d", "", "Prompt that generates the data to work on")
	f.BoolP("no-preview", "y", false, "Use generated data without previewing it")
	f.String("open-ai-token-env", core.DefaultOpenAIEnv, "Environment variable holding the OpenAI token")
	f.String("open-ai-token", "", "OpenAI token")
	f.String("context-ai-token-env", core.DefaultContextEnv, "Environment variable holding the retrieval token")
	f.String("context-ai-token", "", "Retrieval backend token")
	f.String("convo", "", "Conversation to continue")
	f.Bool("new-convo", false, "Start a new conversation and print its id to stderr")
	f.Int("convo-length", 0, "Number of past dialogue segments sent with a chat")
	f.String("convo-dir", "", "Directory holding conversation history files")
	f.String("act-as", core.DefaultActAs, "Persona given to the model as the system message")
	f.Int("top-k", core.DefaultTopK, "Number of long-term memories added to a chat")
	f.StringSlice("memories", nil, "Memory categories to search besides the conversation")
	f.Bool("memory", false, "Use long-term memory")
	f.Bool("debug", false, "Log at debug level to stderr")
	f.BoolP("edit", "e", false, "Treat the prompt as an edit instruction")
	f.String("context-url", "", "Base URL of the retrieval backend")
}

// collectFlags copies the flags the user actually set into core.Flags, so
// unset flags fall through to the config file and defaults.
func collectFlags(cmd *cobra.Command) core.Flags {
	f := cmd.Flags()
	flags := core.Flags{
		ChatModel:         changed(f, "chat-model", f.GetString),
		EditModel:         changed(f, "edit-model", f.GetString),
		MaxTokens:         changed(f, "max-tokens", f.GetInt),
		Temp:              changed(f, "temp", f.GetFloat32),
		DataPrompt:        changed(f, "data-prompt", f.GetString),
		NoPreview:         changed(f, "no-preview", f.GetBool),
		OpenAITokenEnv:    changed(f, "open-ai-token-env", f.GetString),
		OpenAIToken:       changed(f, "open-ai-token", f.GetString),
		ContextAITokenEnv: changed(f, "context-ai-token-env", f.GetString),
		ContextAIToken:    changed(f, "context-ai-token", f.GetString),
		Convo:             changed(f, "convo", f.GetString),
		ConvoLength:       changed(f, "convo-length", f.GetInt),
		ConvoDir:          changed(f, "convo-dir", f.GetString),
		ActAs:             changed(f, "act-as", f.GetString),
		TopK:              changed(f, "top-k", f.GetInt),
		Memory:            changed(f, "memory", f.GetBool),
		ContextURL:        changed(f, "context-url", f.GetString),
	}
	flags.NewConvo, _ = f.GetBool("new-convo")
	flags.Debug, _ = f.GetBool("debug")
	flags.Edit, _ = f.GetBool("edit")
	if f.Changed("memories") {
		flags.Memories, _ = f.GetStringSlice("memories")
	}
	return flags
}

func changed[T any](f *pflag.FlagSet, name string, get func(string) (T, error)) *T {
	if !f.Changed(name) {
		return nil
	}
	v, err := get(name)
	if err != nil {
		return nil
	}
	return &v
}
