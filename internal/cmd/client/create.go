package client

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sampsyo/loglet/pkg/loglet"
)

// NewCreateCommand provisions a new log and prints its id and URL.
func NewCreateCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a new log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loglet.New(loglet.Options{BaseURL: baseURL()})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.LogID())
			fmt.Fprintln(cmd.OutOrStdout(), c.URL())
			return nil
		},
	}
}
