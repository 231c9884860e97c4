package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/depscout/depscout/pkg/resolve"
	"github.com/depscout/depscout/pkg/scan"
)

// scanOpts holds the flags specific to the scan command.
type scanOpts struct {
	resolveOpts

	skipDirs    []string // extra directory names to skip while walking
	interactive bool     // pick descriptors interactively before resolving
	noExpand    bool     // skip the locally-cached-versions completeness pass
}

// newScanCmd creates the scan command. It walks directory trees for
// descriptors (pom.xml, *.pom, and jar/war/ear files with an adjacent
// descriptor), resolves every finding, and then expands the result over
// every locally cached version of each discovered artifact.
func newScanCmd(root *rootOpts) *cobra.Command {
	opts := scanOpts{}

	cmd := &cobra.Command{
		Use:   "scan <dir>...",
		Short: "Discover descriptors under directory trees and resolve them",
		Long: `Scan one or more directory trees for Maven descriptors and resolve every
finding into artifact coordinates. Build output and VCS directories are
skipped.

Examples:
  depscout scan ~/projects
  depscout scan --interactive ~/projects/monorepo
  depscout scan --json ~/.m2/repository`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runScan(c.Context(), root, &opts, args)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringSliceVar(&opts.skipDirs, "skip-dir", nil, "extra directory names to skip")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "pick descriptors interactively before resolving")
	cmd.Flags().BoolVar(&opts.noExpand, "no-expand", false, "do not expand over locally cached versions")
	return cmd
}

func runScan(ctx context.Context, root *rootOpts, opts *scanOpts, dirs []string) error {
	logger := loggerFromContext(ctx)

	layout, cfg, err := root.newLayout()
	if err != nil {
		return err
	}

	scanner := scan.NewScanner(append(cfg.SkipDirs, opts.skipDirs...), logger.Debugf)
	descriptors, err := scanner.Scan(dirs)
	if err != nil {
		return err
	}
	if len(descriptors) == 0 {
		printInfo("No descriptors found")
		return nil
	}
	printInfo("Found %d descriptors", len(descriptors))

	if opts.interactive {
		descriptors, err = pickDescriptors(descriptors)
		if err != nil {
			return err
		}
		if len(descriptors) == 0 {
			printInfo("Nothing selected")
			return nil
		}
	}

	read, closeCache, err := newReadFunc(ctx, cfg, root.noCache)
	if err != nil {
		return err
	}
	defer closeCache()

	rc, err := resolveRoots(ctx, layout, read, descriptors)
	if err != nil {
		return err
	}

	if !opts.noExpand {
		extra := scan.ExpandVersions(layout, rc.Collector.List())
		if len(extra) > 0 {
			logger.Debugf("expanding over %d locally cached versions", len(extra))
			resolver := resolve.NewResolver(layout, read, resolve.Options{Logger: logger.Debugf})
			if err := resolver.ResolveAll(ctx, extra, rc); err != nil {
				return err
			}
		}
	}

	return emitReport(rc, &opts.resolveOpts)
}

// pickDescriptors runs the interactive descriptor picker.
func pickDescriptors(descriptors []string) ([]string, error) {
	model := newPickerModel(descriptors)
	out, err := tea.NewProgram(model).Run()
	if err != nil {
		return nil, err
	}
	final, ok := out.(pickerModel)
	if !ok {
		return nil, nil
	}
	return final.chosen(), nil
}
