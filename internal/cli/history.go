package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	fc "github.com/gofhir/client"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Count int
	Since string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [type [id]]",
		Short: "Fetch the history of the server, a type or a resource",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := fc.HistoryRequest{Count: opts.Count}
			if len(args) > 0 {
				req.Type = args[0]
			}
			if len(args) > 1 {
				req.ID = args[1]
			}
			if opts.Since != "" {
				since, err := time.Parse(time.RFC3339, opts.Since)
				if err != nil {
					return fmt.Errorf("invalid --since: %w", err)
				}
				req.Since = since
			}

			c, err := opts.newClient(cmd)
			if err != nil {
				return err
			}
			b, err := c.History(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeEntries(cmd.OutOrStdout(), opts.Format, b.Entry)
		},
	}

	cmd.Flags().IntVar(&opts.Count, "count", 0, "page size (_count)")
	cmd.Flags().StringVar(&opts.Since, "since", "", "only changes after this RFC 3339 instant (_since)")

	return cmd
}
