package cmd

import (
	"encoding/json"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"

	"github.com/stateful/notebook/pkg/notebook"
)

// readSnapshot reads a notebook stored as a snapshot in JSON.
// Output items without a mime type get the detected one.
func readSnapshot(path string) (*notebook.Snapshot, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}

	var snapshot notebook.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, errors.Wrapf(err, "failed to parse notebook %s", path)
	}

	for i := range snapshot.Cells {
		for j := range snapshot.Cells[i].Outputs {
			items := snapshot.Cells[i].Outputs[j].Items
			for k := range items {
				if items[k].Mime == "" {
					items[k].Mime = mimetype.Detect(items[k].Data).String()
				}
			}
		}
	}

	return &snapshot, nil
}

// readInput reads a file, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return data, errors.Wrap(err, "failed to read stdin")
	}
	data, err := os.ReadFile(path)
	return data, errors.WithStack(err)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "failed to write output")
}

func documentURI(path string) string {
	if path == "-" {
		return ""
	}
	return "file://" + path
}
