package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"heygpt/internal/core"
	"heygpt/internal/repository"
	"heygpt/internal/retrieval"
)

const defaultHistoryLength = 10

var historyCmd = &cobra.Command{
	Use:   "history [n]",
	Short: "Print the last n dialogue segments of the conversation",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n := defaultHistoryLength
		if len(args) == 1 {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < 0 {
				return fmt.Errorf("invalid history length %q", args[0])
			}
			n = v
		}

		home, file, err := loadFileConfig()
		if err != nil {
			return err
		}
		_, path := core.ResolveConversation(collectFlags(cmd), file, home)

		segments, err := repository.NewHistoryStore(path).GetHistory(n)
		if err != nil {
			return err
		}
		for _, seg := range segments {
			display.Print(fmt.Sprintf("[%s] %s: %s", seg.CreatedAt.Format(time.RFC3339), seg.Role, seg.Content))
		}
		return nil
	},
}

var forgetCmd = &cobra.Command{
	Use:   "forget <id>...",
	Short: "Delete long-term memory records by id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		home, file, err := loadFileConfig()
		if err != nil {
			return err
		}
		flags := collectFlags(cmd)
		url, token, err := core.ResolveContextAccess(flags, file, core.Env{Home: home})
		if err != nil {
			return err
		}

		log := core.NewLogger(core.LogLevel(flags.Debug), nil)
		defer func() { _ = log.Sync() }()

		client := retrieval.NewClient(url, token, 0, log.Sugared())
		for _, id := range args {
			if err := client.Delete(cmd.Context(), id); err != nil {
				return err
			}
			display.Print(fmt.Sprintf("forgot %s", id))
		}
		return nil
	},
}
