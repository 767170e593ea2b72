package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"heygpt/internal/console"
	"heygpt/internal/core"
	"heygpt/internal/llm"
	"heygpt/internal/repository"
	"heygpt/internal/retrieval"
	"heygpt/pkg/schema"
)

var display = console.NewDisplay(os.Stdout, os.Stderr)

// rootCmd runs one chat or edit session.
var rootCmd = &cobra.Command{
	Use:   "heygpt [prompt]",
	Short: "Chat with or edit text through an OpenAI model from the terminal",
	Long: `heygpt sends a prompt to an OpenAI chat model and streams the answer.

Piped stdin becomes the data the prompt works on. With --data-prompt the data is
generated first and can be previewed, cycled and edited before the main request.
With --edit the prompt is used as an edit instruction instead.`,
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runSession,
}

func init() {
	registerFlags(rootCmd)
	rootCmd.AddCommand(historyCmd, forgetCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		display.Eprint(err.Error())
		os.Exit(1)
	}
}

func runSession(cmd *cobra.Command, args []string) error {
	flags := collectFlags(cmd)
	flags.Prompt = args[0]

	home, file, err := loadFileConfig()
	if err != nil {
		return err
	}
	stdin, err := console.ReadPipedStdin(os.Stdin)
	if err != nil {
		return err
	}

	m, creds, err := core.BuildModel(flags, file, core.Env{Home: home, Getenv: os.Getenv, Stdin: stdin})
	if err != nil {
		return err
	}

	runID, err := schema.NewRunID()
	if err != nil {
		return fmt.Errorf("generate run id: %w", err)
	}
	log := core.NewLogger(core.LogLevel(flags.Debug), os.Stderr).With("run_id", runID)
	defer func() { _ = log.Sync() }()

	if flags.NewConvo {
		fmt.Fprintln(os.Stderr, m.Memory.Conversation)
	}
	if err := repository.EnsureHistoryFile(m.Memory.ConvoPath); err != nil {
		return err
	}

	client, err := llm.NewClient(&llm.Config{
		APIKey:  creds.OpenAIToken,
		BaseURL: creds.OpenAIURL,
	}, llm.WithLogger(log.Sugared()))
	if err != nil {
		return err
	}

	history := repository.NewHistoryStore(m.Memory.ConvoPath)
	fx := core.Effects{
		Requester: core.NewLLMRequester(client),
		Displayer: display,
		User:      console.NewTerminal(os.Stdout),
		History:   history,
		Log:       log,
	}
	if m.Memory.Enabled {
		fx.Memory = retrieval.NewClient(m.Config.ContextURL, creds.ContextToken, m.Memory.TopK, log.Sugared())
	}

	log.Debug("Starting session",
		"conversation", m.Memory.Conversation,
		"history", history.Path(),
		"chat_model", m.Algo.ChatModel,
		"memory", m.Memory.Enabled,
	)
	_, err = core.NewSession(fx, runID).Run(cmd.Context(), m)
	return err
}

// loadFileConfig reads the first config file found under the home directory.
func loadFileConfig() (string, core.FileConfig, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", core.FileConfig{}, fmt.Errorf("find home directory: %w", err)
	}
	file, _, err := core.LoadFileConfig(core.DefaultConfigPaths(home))
	if err != nil {
		return "", core.FileConfig{}, err
	}
	return home, file, nil
}
