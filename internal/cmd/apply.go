package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/stateful/notebook/internal/config"
	"github.com/stateful/notebook/internal/config/autoconfig"
	"github.com/stateful/notebook/internal/undoredo"
	"github.com/stateful/notebook/pkg/notebook"
)

func applyCmd() *cobra.Command {
	var (
		undo bool
		redo bool
	)

	cmd := cobra.Command{
		Use:   "apply NOTEBOOK EDITS",
		Short: "Apply a batch of edits to a notebook and print the result",
		Long:  "Apply a batch of edits to a notebook and print the result. Use \"-\" to read the edits from stdin.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if redo && !undo {
				return errors.New("--redo requires --undo")
			}

			snapshot, err := readSnapshot(args[0])
			if err != nil {
				return err
			}

			data, err := readInput(args[1])
			if err != nil {
				return err
			}

			edits, err := notebook.DecodeEdits(data)
			if err != nil {
				return err
			}

			builder, err := newBuilder()
			if err != nil {
				return err
			}

			return builder.Invoke(func(
				cfg *config.Config,
				newDocument autoconfig.DocumentFactory,
				undoService *undoredo.Service,
			) error {
				doc := newDocument(documentURI(args[0]), snapshot)
				defer doc.Dispose()

				if _, err := doc.ApplyEdits(edits, notebook.ApplyOptions{Synchronous: true, ComputeUndoRedo: true}); err != nil {
					return errors.Wrap(err, "failed to apply edits")
				}

				if undo {
					if err := undoService.Undo(doc.URI()); err != nil {
						return err
					}
				}
				if redo {
					if err := undoService.Redo(doc.URI()); err != nil {
						return err
					}
				}

				result, err := doc.CreateSnapshot(cfg.SnapshotOptions(notebook.SnapshotSave))
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), result)
			})
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "Undo the applied edits before printing.")
	cmd.Flags().BoolVar(&redo, "redo", false, "Redo the edits after undoing them.")

	return &cmd
}
