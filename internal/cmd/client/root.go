package client

import (
	"github.com/spf13/cobra"
)

// BaseURLFunc resolves the service root a command should talk to. The
// CLI passes a closure over the --url flag and LOGLET_URL.
type BaseURLFunc func() string

// Register adds the client commands (create, post, dump) to root.
func Register(root *cobra.Command, baseURL BaseURLFunc) {
	root.AddCommand(NewCreateCommand(baseURL))
	root.AddCommand(NewPostCommand(baseURL))
	root.AddCommand(NewDumpCommand(baseURL))
}
