package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/resourcemap/pkg/cache"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the layout cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every entry of the file cache",
			Args:  cobra.NoArgs,
			RunE:  func(*cobra.Command, []string) error { return c.clearCache() },
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the file cache directory",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				dir, err := c.cacheDir()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), dir)
				return err
			},
		},
	)
	return cmd
}

// clearCache empties the file cache. Shared backends (redis, mongo) expire
// entries by TTL and are left alone.
func (c *CLI) clearCache() error {
	if b := c.Config.Cache.Backend; b != cache.BackendFile {
		printWarning("cache backend is %q; only the file cache can be cleared", b)
		return nil
	}

	dir, err := c.cacheDir()
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		printInfo("Cache is empty")
		return nil
	}

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return err
	}
	n, err := fc.Clear()
	if err != nil {
		return fmt.Errorf("clear %s: %w", dir, err)
	}
	printSuccess("Removed %d cached layouts", n)
	printDetail("%s", dir)
	return nil
}

// cacheDir is [cache] dir, or the per-user default when unset.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cache.Dir()
}
