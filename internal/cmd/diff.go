package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stateful/notebook/internal/config/autoconfig"
	"github.com/stateful/notebook/internal/execstate"
	"github.com/stateful/notebook/pkg/notebook"
)

func diffCmd() *cobra.Command {
	var asJSON bool

	cmd := cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Print the edits turning one notebook into another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			builder, err := newBuilder()
			if err != nil {
				return err
			}
			return builder.Invoke(func(newDocument autoconfig.DocumentFactory, exec *execstate.Service) error {
				snapshots := make([]*notebook.Snapshot, len(args))

				g, _ := errgroup.WithContext(context.Background())
				for i, path := range args {
					g.Go(func() (err error) {
						snapshots[i], err = readSnapshot(path)
						return err
					})
				}
				if err := g.Wait(); err != nil {
					return err
				}

				doc := newDocument(documentURI(args[0]), snapshots[0])
				defer doc.Dispose()

				edits := notebook.ComputeEdits(doc.Cells(), snapshots[1].Cells, func(handle int) bool {
					return exec.IsExecuting(doc.URI(), handle)
				})

				if asJSON {
					data, err := notebook.EncodeEdits(edits)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
					return errors.Wrap(err, "failed to write to stdout")
				}
				return printEdits(cmd.OutOrStdout(), edits)
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the edits in the wire format.")

	return &cmd
}

func printEdits(w io.Writer, edits []notebook.CellEdit) error {
	c := newColorizer(w)

	for _, edit := range edits {
		var line string

		switch e := edit.(type) {
		case *notebook.ReplaceEdit:
			line = fmt.Sprintf("%s index=%d count=%d cells=%d", c.color("replace", "yellow+b"), e.Index, e.Count, len(e.Cells))
		case *notebook.OutputEdit:
			line = fmt.Sprintf("%s %s outputs=%d", c.color("output", "magenta+b"), describeRef(e.Target), len(e.Outputs))
		case *notebook.MetadataEdit:
			line = fmt.Sprintf("%s %s keys=%d", c.color("metadata", "cyan+b"), describeRef(e.Target), len(e.Metadata))
		default:
			line = c.color(edit.EditType().String(), "white+b")
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return errors.Wrap(err, "failed to write to stdout")
		}
	}

	return nil
}

func describeRef(ref notebook.CellRef) string {
	if index, ok := ref.Index(); ok {
		return fmt.Sprintf("index=%d", index)
	}
	if handle, ok := ref.Handle(); ok {
		return fmt.Sprintf("handle=%d", handle)
	}
	return ""
}
