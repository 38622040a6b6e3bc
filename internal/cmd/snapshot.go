package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stateful/notebook/internal/config"
	"github.com/stateful/notebook/internal/config/autoconfig"
	"github.com/stateful/notebook/pkg/notebook"
)

func snapshotCmd() *cobra.Command {
	var (
		backup          bool
		outputSizeLimit int
	)

	cmd := cobra.Command{
		Use:   "snapshot NOTEBOOK",
		Short: "Print the serializable content of a notebook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := readSnapshot(args[0])
			if err != nil {
				return err
			}

			builder, err := newBuilder()
			if err != nil {
				return err
			}

			return builder.Invoke(func(cfg *config.Config, newDocument autoconfig.DocumentFactory) error {
				doc := newDocument(documentURI(args[0]), snapshot)
				defer doc.Dispose()

				context := notebook.SnapshotSave
				if backup {
					context = notebook.SnapshotBackup
				}

				opts := cfg.SnapshotOptions(context)
				if cmd.Flags().Changed("output-size-limit") {
					opts.OutputSizeLimit = outputSizeLimit
				}

				result, err := doc.CreateSnapshot(opts)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), result)
			})
		},
	}

	cmd.Flags().BoolVar(&backup, "backup", false, "Create a backup snapshot which honors the output size limit.")
	cmd.Flags().IntVar(&outputSizeLimit, "output-size-limit", 0, "Output bytes allowed in a backup. Zero means no limit.")

	return &cmd
}
