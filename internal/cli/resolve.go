package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/depscout/depscout/pkg/export"
	"github.com/depscout/depscout/pkg/resolve"
)

// resolveOpts holds the command-line flags for the resolve and scan commands.
type resolveOpts struct {
	jsonOut bool   // print the JSON report to stdout
	output  string // write the JSON report to a file
	edges   bool   // include provenance edges in the report
	skipped bool   // list skipped entries after the table
}

func (o *resolveOpts) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.jsonOut, "json", false, "print the report as JSON")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "write the JSON report to a file")
	cmd.Flags().BoolVar(&o.edges, "edges", false, "include provenance edges in the report")
	cmd.Flags().BoolVar(&o.skipped, "skipped", false, "list skipped entries")
}

// newResolveCmd creates the resolve command.
func newResolveCmd(root *rootOpts) *cobra.Command {
	opts := resolveOpts{}

	cmd := &cobra.Command{
		Use:   "resolve <pom-file>...",
		Short: "Resolve descriptor files into artifact coordinates",
		Long: `Resolve one or more Maven descriptor files into the transitive set of
artifact coordinates they reference.

Examples:
  depscout resolve pom.xml
  depscout resolve --json ~/.m2/repository/com/acme/app/1.0/app-1.0.pom
  depscout resolve -o report.json service-a/pom.xml service-b/pom.xml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runResolve(c.Context(), root, &opts, args)
		},
	}

	opts.register(cmd)
	return cmd
}

func runResolve(ctx context.Context, root *rootOpts, opts *resolveOpts, roots []string) error {
	logger := loggerFromContext(ctx)

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

	logger.Debugf("run %s finished", rc.RunID)
	return emitReport(rc, opts)
}

// emitReport writes the resolution result in the requested form: a JSON
// file, JSON on stdout, or a styled table.
func emitReport(rc *resolve.Context, opts *resolveOpts) error {
	report := export.BuildReport(rc, opts.edges)

	switch {
	case opts.output != "":
		if err := export.ExportJSON(report, opts.output); err != nil {
			return err
		}
		printSuccess("Wrote %d coordinates", len(report.Coordinates))
		printFile(opts.output)
	case opts.jsonOut:
		return export.WriteJSON(report, os.Stdout)
	default:
		printCoordinateTable(report)
		printStats(len(report.Coordinates), len(report.Edges), len(report.Skipped))
	}

	if opts.skipped && len(report.Skipped) > 0 {
		printWarning("%d entries skipped", len(report.Skipped))
		for _, msg := range report.Skipped {
			printDetail("%s", msg)
		}
	}
	return nil
}

// printCoordinateTable renders the coordinates as a styled table.
func printCoordinateTable(report export.Report) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader.Padding(0, 1)
			}
			return StyleValue.Padding(0, 1)
		}).
		Headers("COORDINATE", "TYPE", "SOURCE", "LOCAL")

	for _, e := range report.Coordinates {
		local := styleMissing.Render("missing")
		if e.Exists {
			local = stylePresent.Render("present")
		}
		gav := fmt.Sprintf("%s:%s:%s", e.GroupID, e.ArtifactID, e.Version)
		t.Row(gav, e.Packaging, string(e.Source), local)
	}

	fmt.Println(t.Render())
}
