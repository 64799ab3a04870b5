package cli

import (
	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game lifecycle commands",
	}

	cmd.AddCommand(newGameStartCmd())
	cmd.AddCommand(newGameEndCmd())
	cmd.AddCommand(newGameConfirmCmd())
	cmd.AddCommand(newGameCurrentCmd())

	return cmd
}

func newGameStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <contact> <opponent>",
		Short: "Start a game against an opponent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatchAction(args[0], "start_game", map[string]string{
				"opponent": args[1],
			})
		},
	}
}

func newGameEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end <contact>",
		Short: "Report that you lost the current game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatchAction(args[0], "end_match", nil)
		},
	}
}

func newGameConfirmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <contact>",
		Short: "Confirm the challenger has arrived at the table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatchAction(args[0], "confirm_challenger", nil)
		},
	}
}

func newGameCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the current game",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Game

			if err := client.Get("/api/v1/games/current", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
