package cli

import (
	"github.com/spf13/cobra"

	"github.com/gofhir/client/bundle"
)

// ReadOptions holds flags for the read command.
type ReadOptions struct {
	*RootOptions
	VersionID string
}

// NewReadCommand creates the read command.
func NewReadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "read <type> <id>",
		Short: "Read a resource, or one of its versions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient(cmd)
			if err != nil {
				return err
			}

			var r bundle.Resource
			if opts.VersionID != "" {
				r, err = c.VRead(cmd.Context(), args[0], args[1], opts.VersionID)
			} else {
				r, err = c.Read(cmd.Context(), args[0], args[1])
			}
			if err != nil {
				return err
			}
			return writeResource(cmd.OutOrStdout(), opts.Format, r)
		},
	}

	cmd.Flags().StringVar(&opts.VersionID, "vid", "", "version id to read")

	return cmd
}
