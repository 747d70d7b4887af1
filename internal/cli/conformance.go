package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewConformanceCommand creates the conformance command.
func NewConformanceCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "conformance",
		Short: "Fetch the server capability statement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient(cmd)
			if err != nil {
				return err
			}
			cs, err := c.Conformance(cmd.Context())
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), cs)
			}

			software, _ := cs["software"].(map[string]any)
			name, _ := software["name"].(string)
			version, _ := cs["fhirVersion"].(string)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\tfhirVersion=%s\n", name, version)
			return err
		},
	}
}
