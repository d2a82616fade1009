package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cjd/internal/config"
	"cjd/internal/errors"
	"cjd/internal/manifest"
	"cjd/internal/paths"
)

var (
	initForce        bool
	initWithManifest bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize cjd in the current directory",
	Long: `Initialize cjd in the current directory by creating the .cjd/ state
directory with a default config.json. With --with-manifest, an example
DICTIONARIES.toml is also written next to it.

Running init twice is harmless; --force resets the config (and run
history) to a clean slate. An existing DICTIONARIES.toml is never
overwritten.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Reset .cjd/ even if it already exists")
	initCmd.Flags().BoolVar(&initWithManifest, "with-manifest", false, "Also write an example DICTIONARIES.toml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return errors.NewCjdError(errors.InternalError, "failed to resolve working directory", err)
	}

	if paths.IsInitialized(cwd) && !initForce {
		fmt.Println("cjd already initialized (.cjd exists)")
		fmt.Println("Use --force to reset the configuration")
		return nil
	}

	if initForce {
		if err := os.RemoveAll(paths.CjdDir(cwd)); err != nil {
			return errors.NewIOError("failed to remove existing .cjd directory", err)
		}
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(cwd); err != nil {
		return err
	}

	fmt.Println("✓ cjd initialized")
	fmt.Printf("  Config: %s\n", paths.ConfigFile(cwd))

	if initWithManifest {
		mfPath := paths.ManifestFile(cwd)
		if _, err := os.Stat(mfPath); err == nil {
			fmt.Printf("  Manifest: %s (kept existing)\n", mfPath)
		} else {
			if err := manifest.CreateExample(mfPath); err != nil {
				return err
			}
			fmt.Printf("  Manifest: %s\n", mfPath)
		}
	}

	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Declare your dictionaries in DICTIONARIES.toml (optional)")
	fmt.Println("  2. Run 'cjd check <file>' to inspect a dictionary")
	fmt.Println("  3. Run 'cjd normalize <file>' to clean it up")
	return nil
}
