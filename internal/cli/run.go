package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/depscout/depscout/pkg/repo"
	"github.com/depscout/depscout/pkg/resolve"
)

// resolveRoots runs a full resolution over the root descriptor paths
// with a spinner and elapsed-time logging. On cancellation the partial
// context is returned alongside the error so callers can still inspect
// what was collected.
func resolveRoots(ctx context.Context, layout *repo.Layout, read resolve.ReadFunc, roots []string) (*resolve.Context, error) {
	logger := loggerFromContext(ctx)

	rc := resolve.NewContext(layout)
	spin := newSpinner(ctx, fmt.Sprintf("Resolving %d descriptors", len(roots)))
	spin.Start()

	resolver := resolve.NewResolver(layout, read, resolve.Options{
		Logger: logger.Debugf,
		Progress: func(fraction float64, status string) {
			logger.Debugf("%3.0f%% %s", fraction*100, status)
		},
	})

	prog := newProgress(logger)
	err := resolver.ResolveAll(ctx, roots, rc)
	spin.Stop()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			printWarning("Interrupted after %d coordinates", rc.Collector.Len())
		}
		return rc, err
	}

	prog.done(fmt.Sprintf("Resolved %d coordinates from %d descriptors", rc.Collector.Len(), len(roots)))
	return rc, nil
}
