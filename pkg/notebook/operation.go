package notebook

import (
	"github.com/pkg/errors"
)

// StackOperation is the undo/redo entry the document hands to the
// UndoRedoService. It groups the inverse operations of one or more
// edit batches.
type StackOperation struct {
	doc        *Document
	group      *UndoRedoGroup
	operations []*command

	beginSelection  *SelectionState
	resultSelection *SelectionState
	beginAltID      string
	resultAltID     string
}

func newStackOperation(doc *Document, group *UndoRedoGroup, selection *SelectionState, altID string) *StackOperation {
	return &StackOperation{
		doc:            doc,
		group:          group,
		beginSelection: selection,
		beginAltID:     altID,
		resultAltID:    altID,
	}
}

func (s *StackOperation) Resource() string { return s.doc.uri }

func (s *StackOperation) Group() *UndoRedoGroup { return s.group }

func (s *StackOperation) Label() string {
	if len(s.operations) == 1 {
		return s.operations[0].label
	}
	return "edit"
}

func (s *StackOperation) Code() string {
	if len(s.operations) == 1 {
		return s.operations[0].code
	}
	return codeStackOperation
}

func (s *StackOperation) isEmpty() bool { return len(s.operations) == 0 }

func (s *StackOperation) pushEndState(altID string, selection *SelectionState) {
	s.resultAltID = altID
	if selection != nil {
		s.resultSelection = selection
	}
}

func (s *StackOperation) pushEditOperation(cmd *command, beginSelection, resultSelection *SelectionState, altID string) {
	if len(s.operations) == 0 && s.beginSelection == nil {
		s.beginSelection = beginSelection
	}
	s.operations = append(s.operations, cmd)
	s.resultSelection = resultSelection
	s.resultAltID = altID
}

// Undo replays the inverse operations newest first and fires a single
// change event restoring the selection captured before the edits.
func (s *StackOperation) Undo() error {
	if s.doc.disposed {
		return ErrDisposed
	}
	s.doc.beginBatch()
	defer s.doc.endBatch()
	defer s.finish(s.beginAltID, s.beginSelection)

	for i := len(s.operations) - 1; i >= 0; i-- {
		if err := s.operations[i].undo(); err != nil {
			return errors.Wrapf(err, "failed to undo %q", s.operations[i].label)
		}
	}
	return nil
}

func (s *StackOperation) Redo() error {
	if s.doc.disposed {
		return ErrDisposed
	}
	s.doc.beginBatch()
	defer s.doc.endBatch()
	defer s.finish(s.resultAltID, s.resultSelection)

	for _, op := range s.operations {
		if err := op.redo(); err != nil {
			return errors.Wrapf(err, "failed to redo %q", op.label)
		}
	}
	return nil
}

// finish runs before the batch is closed, also when a replayed
// operation failed, so the merged event carries the new version.
func (s *StackOperation) finish(altID string, selection *SelectionState) {
	s.doc.postUndoRedo(altID)
	s.doc.fire(pendingEvent{
		versionID:    s.doc.versionID,
		endSelection: selection,
	})
}

// operationManager accumulates inverse operations into the pending
// StackOperation and hands it to the undo/redo service when the
// edit transaction ends.
type operationManager struct {
	doc       *Document
	service   UndoRedoService
	pending   *StackOperation
	appending bool
}

func (m *operationManager) isUndoStackEmpty() bool {
	return m.pending == nil || m.pending.isEmpty()
}

func (m *operationManager) pushStackElement(altID string, selection *SelectionState) {
	if m.pending != nil && !m.pending.isEmpty() {
		m.pending.pushEndState(altID, selection)
		if !m.appending {
			m.service.PushElement(m.pending, m.pending.group)
		}
	}
	m.appending = false
	m.pending = nil
}

// appendPreviousOperation continues the last entry of this document
// held by the undo/redo service, if it is one of ours.
func (m *operationManager) appendPreviousOperation() bool {
	previous, ok := m.service.LastElement(m.doc.uri).(*StackOperation)
	if !ok || previous.doc != m.doc {
		return false
	}
	m.pending = previous
	m.appending = true
	return true
}

func (m *operationManager) pushEditOperation(cmd *command, beginSelection, resultSelection *SelectionState, altID string, group *UndoRedoGroup) {
	if m.pending == nil {
		m.pending = newStackOperation(m.doc, group, beginSelection, altID)
	}
	m.pending.pushEditOperation(cmd, beginSelection, resultSelection, altID)
}
