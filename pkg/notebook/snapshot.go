package notebook

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

type SnapshotContext int

const (
	SnapshotSave SnapshotContext = iota + 1
	SnapshotBackup
)

type SnapshotOptions struct {
	Context SnapshotContext
	// OutputSizeLimit bounds the output bytes of a backup. Zero means no limit.
	OutputSizeLimit int
	// TransientOptions override the options of the document when set.
	TransientOptions *TransientOptions
}

// Snapshot is the serializable content of a document.
type Snapshot struct {
	Metadata Metadata   `json:"metadata"`
	Cells    []CellData `json:"cells"`
}

// Reset replaces the content of the document with cells and metadata.
// The edits are computed against the current cells, so unchanged cells
// keep their handles, and are not undoable.
func (d *Document) Reset(cells []CellData, metadata Metadata, transient TransientOptions) error {
	if d.disposed {
		return ErrDisposed
	}

	d.transient = transient
	executing := d.executingHandles()
	edits := ComputeEdits(d.cells, cells, func(handle int) bool {
		return slices.Contains(executing, handle)
	})
	edits = append(edits, &DocumentMetadataEdit{Metadata: metadata})

	_, err := d.ApplyEdits(edits, ApplyOptions{
		Synchronous:         true,
		ComputeEndSelection: func() *SelectionState { return nil },
	})
	return errors.Wrap(err, "failed to reset notebook document")
}

// CreateSnapshot returns the content of the document without its
// transient parts.
func (d *Document) CreateSnapshot(opts SnapshotOptions) (*Snapshot, error) {
	if d.disposed {
		return nil, ErrDisposed
	}

	transient := d.transient
	if opts.TransientOptions != nil {
		transient = *opts.TransientOptions
	}

	snapshot := &Snapshot{
		Metadata: filterMetadata(d.metadata, transient.TransientDocumentMetadata),
		Cells:    make([]CellData, 0, len(d.cells)),
	}

	size := 0
	for _, c := range d.cells {
		if opts.Context == SnapshotBackup && opts.OutputSizeLimit > 0 {
			for _, o := range c.outputs {
				size += o.size()
			}
			if size > opts.OutputSizeLimit {
				return nil, errors.WithStack(&TooLargeError{Size: size, Limit: opts.OutputSizeLimit})
			}
		}
		snapshot.Cells = append(snapshot.Cells, c.ToData(&transient))
	}

	return snapshot, nil
}

// RestoreSnapshot resets the document to the content of s. A nil
// transient keeps the current options.
func (d *Document) RestoreSnapshot(s *Snapshot, transient *TransientOptions) error {
	if s == nil {
		return errors.New("snapshot is nil")
	}
	opts := d.transient
	if transient != nil {
		opts = *transient
	}
	return d.Reset(s.Cells, s.Metadata, opts)
}
