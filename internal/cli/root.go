package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/depscout/depscout/pkg/buildinfo"
	"github.com/depscout/depscout/pkg/cache"
	"github.com/depscout/depscout/pkg/config"
	"github.com/depscout/depscout/pkg/repo"
	"github.com/depscout/depscout/pkg/resolve"
)

// appName is the application name used for directories and display.
const appName = "depscout"

// rootOpts holds the persistent flags shared by all commands.
type rootOpts struct {
	verbose    bool
	configPath string
	repoRoot   string
	noCache    bool
}

// Execute runs the depscout CLI and returns an error if any command fails.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute(ctx context.Context) error {
	opts := &rootOpts{}

	root := &cobra.Command{
		Use:   appName,
		Short: "Depscout collects Maven artifact coordinates from local descriptors",
		Long: `Depscout resolves Maven project descriptors (POM files) into the full
transitive set of artifact coordinates they reference: parents, dependencies,
managed dependencies, imported BOMs, and build plugins. Descriptors are read
from the local repository only; nothing is downloaded.`,
		Version:          buildinfo.Version,
		SilenceUsage:     true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if opts.verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default .depscout.toml, then user config dir)")
	root.PersistentFlags().StringVar(&opts.repoRoot, "repo", "", "local repository root (default $MAVEN_REPO_LOCAL, then ~/.m2/repository)")
	root.PersistentFlags().BoolVar(&opts.noCache, "no-cache", false, "bypass the descriptor cache")

	root.AddCommand(newResolveCmd(opts))
	root.AddCommand(newScanCmd(opts))
	root.AddCommand(newGraphCmd(opts))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newCacheCmd(opts))

	return root.ExecuteContext(ctx)
}

// loadConfig loads the configuration file and applies flag overrides.
func (o *rootOpts) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.repoRoot != "" {
		cfg.RepoRoot = o.repoRoot
	}
	return cfg, nil
}

// newLayout builds the repository layout from config plus flag overrides.
func (o *rootOpts) newLayout() (*repo.Layout, *config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	layout, err := repo.NewLayout(cfg.RepoRoot)
	if err != nil {
		return nil, nil, err
	}
	return layout, cfg, nil
}

// newBackend creates the cache backend selected by config. The caller
// owns Close.
func newBackend(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case "redis":
		return cache.NewRedisCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, appName+":")
	case "none":
		return cache.NewNullCache(), nil
	default:
		return cache.NewFileCache(cfg.Cache.CacheDir())
	}
}

// newReadFunc wraps the plain descriptor reader with the configured cache.
func newReadFunc(ctx context.Context, cfg *config.Config, noCache bool) (resolve.ReadFunc, func(), error) {
	backend, err := newBackend(ctx, cfg, noCache)
	if err != nil {
		return nil, nil, err
	}
	read := cache.DescriptorReader(backend, cfg.Cache.TTL())
	return read, func() { _ = backend.Close() }, nil
}
