package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"doublage/internal/cache"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the translation cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show translation cache statistics",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached translations",
	RunE:  runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	addCacheFlags(cacheCmd)
}

// cache flags are shared by every command that touches translations
func addCacheFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		String("cache-backend", "file", "Translation cache backend (file, sqlite)")
	cmd.PersistentFlags().
		String("cache-path", "", "Translation cache location (default: user cache dir)")
	cmd.PersistentFlags().
		Bool("no-cache", false, "Disable the translation cache")
}

// openCacheStore returns nil when caching is disabled.
func openCacheStore(cmd *cobra.Command) (cache.Store, error) {
	noCache, _ := cmd.Flags().GetBool("no-cache")
	if noCache {
		return nil, nil
	}

	backendStr, _ := cmd.Flags().GetString("cache-backend")
	path, _ := cmd.Flags().GetString("cache-path")

	backend := cache.Backend(backendStr)
	if path == "" {
		var err error
		path, err = defaultCachePath(backend)
		if err != nil {
			return nil, err
		}
	}

	store, err := cache.Open(backend, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open translation cache: %w", err)
	}
	return store, nil
}

func defaultCachePath(backend cache.Backend) (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil || cacheDir == "" {
		cacheDir = os.TempDir()
	}
	dir := filepath.Join(cacheDir, "doublage")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	switch backend {
	case cache.BackendSQLite:
		return filepath.Join(dir, "translations.db"), nil
	default:
		return filepath.Join(dir, "translations.json"), nil
	}
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	store, err := openCacheStore(cmd)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("cache is disabled")
	}
	defer store.Close()

	stats, err := store.Stats()
	if err != nil {
		return fmt.Errorf("failed to read cache stats: %w", err)
	}

	fmt.Printf("Cached translations: %d\n", stats.TotalEntries)
	if len(stats.LanguagePairs) > 0 {
		fmt.Println("Language pairs:")
		for _, pair := range stats.LanguagePairs {
			fmt.Printf("  %s\n", pair)
		}
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store, err := openCacheStore(cmd)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("cache is disabled")
	}
	defer store.Close()

	stats, err := store.Stats()
	if err != nil {
		return fmt.Errorf("failed to read cache stats: %w", err)
	}
	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	fmt.Printf("Cleared %d cached translations\n", stats.TotalEntries)
	return nil
}
