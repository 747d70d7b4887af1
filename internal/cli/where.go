package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gofhir/client/bundle"
	"github.com/gofhir/client/predicate"
	"github.com/gofhir/client/stream"
)

// NewWhereCommand creates the where command.
func NewWhereCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "where <fhirpath> [file|-]",
		Short: "Filter the entries of a bundle file with FHIRPath",
		Long: `Filter the entries of a bundle read from a file or stdin with a FHIRPath
expression. Entries are decoded one at a time, so large exports can be
filtered without a server.

  gofhir where "gender = 'female'" export.json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eval := predicate.Default()
			if _, err := eval.Compile(args[0]); err != nil {
				return err
			}

			path := "-"
			if len(args) > 1 {
				path = args[1]
			}
			in, closeIn, err := openInput(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			defer closeIn()

			dec := stream.NewDecoder().WithFilter(func(r bundle.Resource) (bool, error) {
				return eval.Match(args[0], r)
			})
			s := stream.Collect(dec.Entries(cmd.Context(), in))

			if err := writeEntries(cmd.OutOrStdout(), opts.Format, s.Entries); err != nil {
				return err
			}
			if s.HasErrors() {
				return fmt.Errorf("%s: %w", s, s.Errors[0])
			}
			return nil
		},
	}
}
