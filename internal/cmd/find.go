package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/stateful/notebook/internal/config"
	"github.com/stateful/notebook/internal/config/autoconfig"
	"github.com/stateful/notebook/pkg/notebook/textbuf"
)

func findCmd() *cobra.Command {
	var (
		params  textbuf.SearchParams
		filters []string
	)

	cmd := cobra.Command{
		Use:   "find NOTEBOOK QUERY",
		Short: "Find text in the cells of a notebook",
		Long:  "Find text in the cells of a notebook. Every match is printed as cell:line:column followed by the line.",
		Args:  cobra.ExactArgs(2),
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

				for _, condition := range filters {
					cfg.Filters = append(cfg.Filters, &config.Filter{Condition: condition})
				}

				params.SearchString = args[1]

				results, err := doc.FindMatches(params, cfg.FindOptions())
				if err != nil {
					return err
				}

				c := newColorizer(cmd.OutOrStdout())

				for _, result := range results {
					index := doc.CellIndex(result.Cell.Handle())
					lines := result.Cell.TextBuffer().LinesContent()

					for _, m := range result.Matches {
						loc := fmt.Sprintf("%d:%d:%d", index, m.Range.StartLineNumber, m.Range.StartColumn)
						line := lines[m.Range.StartLineNumber-1]

						_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", c.color(loc, "green"), line)
						if err != nil {
							return errors.Wrap(err, "failed to write to stdout")
						}
					}
				}

				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&params.IsRegex, "regex", false, "Treat the query as a regular expression.")
	cmd.Flags().BoolVar(&params.MatchCase, "match-case", false, "Match case.")
	cmd.Flags().StringVar(&params.WordSeparators, "word-separators", "", "Only match whole words delimited by these characters.")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Only search cells matching the expression, e.g. 'kind == \"code\"'. Can be repeated.")

	return &cmd
}
