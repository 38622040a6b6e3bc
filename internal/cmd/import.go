package cmd

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/stateful/notebook/internal/mdimport"
)

func importCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "import FILE",
		Short: "Convert a markdown file into a notebook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args[0])
			if err != nil {
				return err
			}

			if mtype := mimetype.Detect(data); !strings.HasPrefix(mtype.String(), "text/") {
				return errors.Errorf("%s is not a text file: %s", args[0], mtype)
			}

			return writeJSON(cmd.OutOrStdout(), mdimport.Import(data))
		},
	}

	return &cmd
}
