package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gofhir/client/bundle"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Query string
	Where string
	Pages int
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search <type> [file|-]",
		Short: "Search resources of a type",
		Long: `Search resources of a type with a query object written as JSON or YAML.

Results can be narrowed locally with a FHIRPath expression:

  gofhir search Patient -q 'name: smith' --where "gender = 'female'"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "inline query object")
	cmd.Flags().StringVarP(&opts.Where, "where", "w", "", "FHIRPath filter applied to each entry")
	cmd.Flags().IntVar(&opts.Pages, "pages", 1, "number of pages to fetch by following next links")

	return cmd
}

func runSearch(opts *SearchOptions, args []string, cmd *cobra.Command) error {
	q, err := loadQuery(cmd, opts.Query, args[1:])
	if err != nil {
		return err
	}
	c, err := opts.newClient(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	b, err := c.Search(ctx, args[0], q)
	if err != nil {
		return err
	}

	var entries []bundle.Entry
	for page := 1; ; page++ {
		matched := b.Entry
		if opts.Where != "" {
			if matched, err = c.Where(b, opts.Where); err != nil {
				return err
			}
		}
		entries = append(entries, matched...)

		if page >= opts.Pages || len(b.Links(bundle.RelNext)) == 0 {
			break
		}
		if b, err = c.NextPage(ctx, b); err != nil {
			return fmt.Errorf("page %d: %w", page+1, err)
		}
	}

	return writeEntries(cmd.OutOrStdout(), opts.Format, entries)
}
