package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/depscout/depscout/pkg/errors"
	"github.com/depscout/depscout/pkg/export"
)

// graphOpts holds the flags for the graph command.
type graphOpts struct {
	output string // output file; format inferred from extension
}

// newGraphCmd creates the graph command. It resolves the given
// descriptors and exports the provenance edges as DOT, SVG, or PNG.
func newGraphCmd(root *rootOpts) *cobra.Command {
	opts := graphOpts{}

	cmd := &cobra.Command{
		Use:   "graph <pom-file>...",
		Short: "Export the provenance graph as DOT, SVG, or PNG",
		Long: `Resolve descriptors and export the provenance graph, one edge per reason
a coordinate was collected (parent, dependency, bom, plugin, ...).

The output format is inferred from the file extension (.dot, .svg, .png);
without --output the DOT source is printed to stdout.

Examples:
  depscout graph pom.xml
  depscout graph -o deps.svg pom.xml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runGraph(c.Context(), root, &opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (.dot, .svg, or .png)")
	return cmd
}

func runGraph(ctx context.Context, root *rootOpts, opts *graphOpts, roots []string) error {
	layout, cfg, err := root.newLayout()
	if err != nil {
		return err
	}
	read, closeCache, err := newReadFunc(ctx, cfg, root.noCache)
	if err != nil {
		return err
	}
	defer closeCache()

	rc, err := resolveRoots(ctx, layout, read, roots)
	if err != nil {
		return err
	}

	dot := export.ToDOT(rc.Edges)
	if opts.output == "" {
		fmt.Print(dot)
		return nil
	}

	var data []byte
	switch strings.ToLower(filepath.Ext(opts.output)) {
	case ".dot", ".gv":
		data = []byte(dot)
	case ".svg":
		data, err = export.RenderSVG(dot)
	case ".png":
		data, err = export.RenderPNG(dot)
	default:
		return errors.New(errors.ErrCodeUnsupported, "unsupported graph format %q", filepath.Ext(opts.output))
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write graph")
	}
	printSuccess("Wrote graph with %d edges", len(rc.Edges))
	printFile(opts.output)
	return nil
}
