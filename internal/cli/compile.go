package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gofhir/client/query"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Query string
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [file|-]",
		Short: "Compile a query object to a FHIR search string",
		Long: `Compile a query object, written as JSON or YAML, to a FHIR search
string. Nothing is sent to a server.

  gofhir compile -q '{"name": "maud", "birthdate": {"$gt": "1970"}}'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "inline query object")

	return cmd
}

func runCompile(opts *CompileOptions, args []string, cmd *cobra.Command) error {
	q, err := loadQuery(cmd, opts.Query, args)
	if err != nil {
		return err
	}

	if opts.Format == "text" {
		s, err := query.Compile(q)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), s)
		return err
	}

	params, err := query.Linearize(q)
	if err != nil {
		return err
	}
	out := struct {
		Query  string   `json:"query"`
		Params []string `json:"params"`
	}{Params: make([]string, len(params))}
	for i, p := range params {
		out.Params[i] = p.String()
	}
	out.Query = strings.Join(out.Params, "&")
	return writeJSON(cmd.OutOrStdout(), out)
}

// loadQuery returns the inline query, or the query read from the single
// file argument. Without either the query is empty.
func loadQuery(cmd *cobra.Command, inline string, args []string) (query.Object, error) {
	switch {
	case inline != "" && len(args) > 0:
		return nil, fmt.Errorf("give either --query or a query file, not both")
	case inline != "":
		return parseQuery([]byte(inline))
	case len(args) > 0:
		data, err := readInput(cmd.InOrStdin(), args[0])
		if err != nil {
			return nil, err
		}
		return parseQuery(data)
	default:
		return query.Object{}, nil
	}
}
