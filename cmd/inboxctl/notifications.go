package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/go-push-inbox/internal/domain"
	"github.com/go-push-inbox/internal/transport/http/client"
	"github.com/spf13/cobra"
)

var (
	unreadOnly bool

	listCmd = &cobra.Command{
		Use:     "list",
		Short:   "list stored notifications, newest first",
		Example: "inboxctl list --unread",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := client.New(agentURL).List(cmd.Context())
			if err != nil {
				return err
			}
			return printNotifications(cmd.OutOrStdout(), list, unreadOnly)
		},
	}
	readCmd = &cobra.Command{
		Use:     "read <id>",
		Short:   "mark a notification as read",
		Example: "inboxctl read 0:1700000000000%abc",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := client.New(agentURL).MarkRead(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printNotifications(cmd.OutOrStdout(), list, false)
		},
	}
	deleteCmd = &cobra.Command{
		Use:   "delete <id>",
		Short: "delete a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := client.New(agentURL).Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printNotifications(cmd.OutOrStdout(), list, false)
		},
	}
	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "delete every stored notification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := client.New(agentURL).Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "notifications cleared")
			return nil
		},
	}
	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "print the agent's device token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tok, ok, err := client.New(agentURL).Token(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrTokenUnavailable
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
)

func init() {
	listCmd.Flags().BoolVar(&unreadOnly, "unread", false, "only show unread notifications")
}

func printNotifications(out io.Writer, list []domain.StoredNotification, unreadOnly bool) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tRECEIVED\tREAD\tTITLE\tBODY")
	for _, n := range list {
		if unreadOnly && n.Read {
			continue
		}
		received := time.UnixMilli(n.Timestamp).Local().Format(time.DateTime)
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\n", n.ID, received, n.Read, n.Title, n.Body)
	}
	return tw.Flush()
}
