package client

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sampsyo/loglet/pkg/loglet"
)

// NewPostCommand sends one message to a log. The process delivery mode
// in pkg/loglet shells out to exactly this command, so its argument
// shape is part of the client contract.
func NewPostCommand(baseURL BaseURLFunc) *cobra.Command {
	var (
		url     string
		level   int
		message string
	)
	cmd := &cobra.Command{
		Use:   "post <log-id>",
		Short: "Post a message to a log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := url
			if root == "" {
				root = baseURL()
			}
			msg := message
			if msg == "" {
				// No --message reads the body from stdin, for piping.
				b, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				msg = strings.TrimRight(string(b), "\n")
			}
			return loglet.Post(http.DefaultClient, root, args[0], msg, level)
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Service root URL (default LOGLET_URL or hosted service)")
	cmd.Flags().IntVar(&level, "level", 20, "Message level (0-100)")
	cmd.Flags().StringVar(&message, "message", "", "Message text (default read from stdin)")
	return cmd
}
