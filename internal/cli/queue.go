package cli

import (
	"github.com/spf13/cobra"
)

func newQueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Waiting line commands",
	}

	cmd.AddCommand(newQueueJoinCmd())
	cmd.AddCommand(newQueueLeaveCmd())
	cmd.AddCommand(newQueuePositionCmd())
	cmd.AddCommand(newQueueListCmd())

	return cmd
}

// dispatchAction posts a named action for an actor and prints the result
func dispatchAction(actor, action string, args map[string]string) error {
	req := map[string]any{
		"actor":  actor,
		"action": action,
	}
	if len(args) > 0 {
		req["args"] = args
	}

	var result ActionResult
	if err := client.Post("/api/v1/actions", req, &result); err != nil {
		return err
	}

	out := NewOutput(cfg.Output)
	out.Print(result)
	return nil
}

func newQueueJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <contact>",
		Short: "Join the waiting line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatchAction(args[0], "join_queue", nil)
		},
	}
}

func newQueueLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <contact>",
		Short: "Leave the waiting line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatchAction(args[0], "leave_queue", nil)
		},
	}
}

func newQueuePositionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "position <contact>",
		Short: "Check your position in line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatchAction(args[0], "check_position", nil)
		},
	}
}

func newQueueListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show everyone in line",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result QueueSnapshot

			if err := client.Get("/api/v1/queue", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
