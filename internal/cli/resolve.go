package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	fc "github.com/gofhir/client"
	"github.com/gofhir/client/bundle"
	"github.com/gofhir/client/resolve"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	Bundle   string
	Resource string
	Local    bool
	Workers  int
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <reference>...",
		Short: "Resolve references locally or against the server",
		Long: `Resolve references such as "Patient/1" or "#p1".

Contained resources of --resource and entries of --bundle are tried first.
The server is asked only when no local source has the resource, unless
--local is given. Several references are resolved concurrently.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Bundle, "bundle", "", "bundle file searched for the reference")
	cmd.Flags().StringVar(&opts.Resource, "resource", "", "resource file whose contained resources are searched")
	cmd.Flags().BoolVar(&opts.Local, "local", false, "never contact the server")
	cmd.Flags().IntVar(&opts.Workers, "workers", 4, "concurrent resolutions when several references are given")

	return cmd
}

// resolved is the JSON output for one reference.
type resolved struct {
	Reference string          `json:"reference"`
	Source    string          `json:"source"`
	Resource  bundle.Resource `json:"resource,omitempty"`
	Error     string          `json:"error,omitempty"`
}

func runResolve(opts *ResolveOptions, args []string, cmd *cobra.Command) error {
	ro, err := opts.localSources(cmd)
	if err != nil {
		return err
	}
	c, err := opts.newClient(cmd)
	if err != nil {
		return err
	}

	refs := make([]resolve.Reference, len(args))
	for i, a := range args {
		refs[i] = resolve.Ref(a)
	}

	var results []resolve.Result
	if opts.Local {
		results = make([]resolve.Result, len(refs))
		for i, ref := range refs {
			if e, src := c.Lookup(ref, ro); e != nil {
				results[i] = resolve.Result{Entry: e, Source: src}
			} else {
				results[i] = resolve.Result{Err: errNotLocal}
			}
		}
	} else {
		results = c.ResolveAll(cmd.Context(), refs, ro, opts.Workers)
	}

	out := make([]resolved, len(results))
	failed := 0
	for i, r := range results {
		out[i] = resolved{Reference: args[i], Source: r.Source.String()}
		res, err := resultResource(r)
		if err != nil {
			out[i].Error = err.Error()
			failed++
			continue
		}
		out[i].Resource = res
	}

	if err := writeResolved(cmd, opts.Format, out); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d reference(s) could not be resolved", failed, len(out))
	}
	return nil
}

var errNotLocal = errors.New("not found locally")

func (opts *ResolveOptions) localSources(cmd *cobra.Command) (fc.ResolveOptions, error) {
	var ro fc.ResolveOptions
	if opts.Bundle != "" {
		data, err := readInput(cmd.InOrStdin(), opts.Bundle)
		if err != nil {
			return ro, err
		}
		if ro.Bundle, err = bundle.Parse(data); err != nil {
			return ro, err
		}
	}
	if opts.Resource != "" {
		data, err := readInput(cmd.InOrStdin(), opts.Resource)
		if err != nil {
			return ro, err
		}
		if err := json.Unmarshal(data, &ro.Resource); err != nil {
			return ro, fmt.Errorf("failed to parse resource: %w", err)
		}
	}
	return ro, nil
}

// resultResource returns the resolved resource, decoding remote responses.
func resultResource(r resolve.Result) (bundle.Resource, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	if r.Entry != nil {
		return r.Entry.Body(), nil
	}
	var res bundle.Resource
	if err := r.Response.Decode(&res); err != nil {
		return nil, err
	}
	return res, nil
}

func writeResolved(cmd *cobra.Command, format string, out []resolved) error {
	w := cmd.OutOrStdout()
	if format == "json" {
		if len(out) == 1 && out[0].Error == "" {
			return writeJSON(w, out[0].Resource)
		}
		return writeJSON(w, out)
	}
	for _, r := range out {
		line := resourceLine(r.Resource)
		if r.Error != "" {
			line = "error: " + r.Error
		}
		if len(out) > 1 {
			line = r.Reference + "\t" + line
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
