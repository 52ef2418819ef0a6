package client

import (
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"

	"github.com/spf13/cobra"
)

// NewDumpCommand fetches a log's messages over one of the export views.
func NewDumpCommand(baseURL BaseURLFunc) *cobra.Command {
	var (
		format string
		filter string
	)
	cmd := &cobra.Command{
		Use:   "dump <log-id>",
		Short: "Print a log's messages, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			switch format {
			case "txt":
				path = "/" + args[0] + "/txt"
			case "json":
				path = "/" + args[0] + "/json"
			default:
				return fmt.Errorf("invalid --format; use txt|json")
			}
			url := strings.TrimRight(baseURL(), "/") + path
			if filter != "" {
				url += "?filter=" + neturl.QueryEscape(filter)
			}
			resp, err := http.Get(url)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			}
			if _, err := io.Copy(cmd.OutOrStdout(), resp.Body); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "txt", "Output format: txt|json")
	cmd.Flags().StringVar(&filter, "filter", "", "CEL filter expression, e.g. 'level >= 30'")
	return cmd
}
