package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/stateful/notebook/internal/config"
	"github.com/stateful/notebook/internal/config/autoconfig"
)

var (
	fConfigFile string
	fLogEnabled bool
	fLogVerbose bool
)

func Root() *cobra.Command {
	cmd := cobra.Command{
		Use:           "notebook",
		Short:         "Inspect and edit notebook documents",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	pflags := cmd.PersistentFlags()

	pflags.StringVar(&fConfigFile, "config", "", "Path to a configuration file. Defaults to notebook.yaml in the working directory.")
	pflags.BoolVar(&fLogEnabled, "log", false, "Enable logging.")
	pflags.BoolVar(&fLogVerbose, "log-verbose", false, "Enable verbose logging. Implies --log.")

	cmd.AddCommand(diffCmd())
	cmd.AddCommand(applyCmd())
	cmd.AddCommand(findCmd())
	cmd.AddCommand(snapshotCmd())
	cmd.AddCommand(importCmd())

	return &cmd
}

// newBuilder returns the dependency container configured by the global flags.
func newBuilder() (*autoconfig.Builder, error) {
	builder := autoconfig.NewBuilder()

	if fConfigFile != "" {
		dir, file := filepath.Split(fConfigFile)
		if dir == "" {
			dir = "."
		}
		ext := filepath.Ext(file)

		err := builder.Decorate(func() (*config.Loader, error) {
			loader := config.NewLoader(strings.TrimSuffix(file, ext), strings.TrimPrefix(ext, "."), os.DirFS(dir))
			if _, err := loader.RootConfig(); err != nil {
				return nil, errors.Wrapf(err, "failed to read %s", fConfigFile)
			}
			return loader, nil
		})
		if err != nil {
			return nil, err
		}
	}

	err := builder.Decorate(func(c *config.Config) *config.Config {
		if fLogEnabled || fLogVerbose {
			c.Log.Enabled = true
		}
		if fLogVerbose {
			c.Log.Verbose = true
		}
		return c
	})
	return builder, err
}
