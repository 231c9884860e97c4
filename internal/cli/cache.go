package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/depscout/depscout/pkg/cache"
	"github.com/depscout/depscout/pkg/errors"
)

// newCacheCmd creates the cache management command.
func newCacheCmd(root *rootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the descriptor cache",
	}

	cmd.AddCommand(newCacheClearCmd(root))
	cmd.AddCommand(newCachePathCmd(root))
	return cmd
}

// newCacheClearCmd creates the "cache clear" subcommand.
func newCacheClearCmd(root *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached descriptors",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Cache.Backend != "file" {
				return errors.New(errors.ErrCodeUnsupported,
					"cache clear supports the file backend only, config selects %q", cfg.Cache.Backend)
			}

			backend, err := cache.NewFileCache(cfg.Cache.CacheDir())
			if err != nil {
				return err
			}
			defer func() { _ = backend.Close() }()

			fc, ok := backend.(*cache.FileCache)
			if !ok {
				return errors.New(errors.ErrCodeInternal, "unexpected cache backend")
			}
			if err := fc.Clear(); err != nil {
				return err
			}
			printSuccess("Cache cleared")
			printDetail("Directory: %s", cfg.Cache.CacheDir())
			return nil
		},
	}
}

// newCachePathCmd creates the "cache path" subcommand.
func newCachePathCmd(root *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			fmt.Println(cfg.Cache.CacheDir())
			return nil
		},
	}
}
