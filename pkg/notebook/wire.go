package notebook

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// wireEdit is the JSON shape of an edit, tagged by editType. At most
// one of index, handle, and outputId selects the target.
type wireEdit struct {
	EditType         EditType     `json:"editType"`
	Index            *int         `json:"index,omitempty"`
	Handle           *int         `json:"handle,omitempty"`
	OutputID         *string      `json:"outputId,omitempty"`
	Count            *int         `json:"count,omitempty"`
	Cells            []CellData   `json:"cells,omitempty"`
	Outputs          []OutputData `json:"outputs,omitempty"`
	Items            []OutputItem `json:"items,omitempty"`
	Append           bool         `json:"append,omitempty"`
	Metadata         Metadata     `json:"metadata,omitempty"`
	InternalMetadata Metadata     `json:"internalMetadata,omitempty"`
	Language         *string      `json:"language,omitempty"`
	Length           *int         `json:"length,omitempty"`
	NewIndex         *int         `json:"newIdx,omitempty"`
}

// DecodeEdits parses a JSON array of edits.
func DecodeEdits(data []byte) ([]CellEdit, error) {
	var raw []wireEdit
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode edits")
	}

	edits := make([]CellEdit, 0, len(raw))
	for i, w := range raw {
		edit, err := w.toEdit()
		if err != nil {
			return nil, errors.Wrapf(err, "edit %d", i)
		}
		edits = append(edits, edit)
	}
	return edits, nil
}

// EncodeEdits is the inverse of DecodeEdits.
func EncodeEdits(edits []CellEdit) ([]byte, error) {
	raw := make([]wireEdit, 0, len(edits))
	for _, edit := range edits {
		w, err := fromEdit(edit)
		if err != nil {
			return nil, err
		}
		raw = append(raw, w)
	}
	data, err := json.Marshal(raw)
	return data, errors.WithStack(err)
}

func (w wireEdit) invalid(format string, args ...any) error {
	return errors.WithStack(&InvalidEditError{EditType: w.EditType, Reason: fmt.Sprintf(format, args...)})
}

func (w wireEdit) cellRef() (CellRef, error) {
	if w.OutputID != nil {
		return CellRef{}, w.invalid("outputId cannot select a cell")
	}
	switch {
	case w.Index != nil && w.Handle != nil:
		return CellRef{}, w.invalid("index and handle are mutually exclusive")
	case w.Index != nil:
		return AtIndex(*w.Index), nil
	case w.Handle != nil:
		return ByHandle(*w.Handle), nil
	default:
		return CellRef{}, w.invalid("missing index or handle")
	}
}

func (w wireEdit) requireInt(name string, v *int) (int, error) {
	if v == nil {
		return 0, w.invalid("missing %s", name)
	}
	return *v, nil
}

func (w wireEdit) toEdit() (CellEdit, error) {
	switch w.EditType {
	case EditReplace:
		index, err := w.requireInt("index", w.Index)
		if err != nil {
			return nil, err
		}
		count, err := w.requireInt("count", w.Count)
		if err != nil {
			return nil, err
		}
		return &ReplaceEdit{Index: index, Count: count, Cells: w.Cells}, nil
	case EditMove:
		index, err := w.requireInt("index", w.Index)
		if err != nil {
			return nil, err
		}
		length, err := w.requireInt("length", w.Length)
		if err != nil {
			return nil, err
		}
		newIndex, err := w.requireInt("newIdx", w.NewIndex)
		if err != nil {
			return nil, err
		}
		return &MoveEdit{Index: index, Length: length, NewIndex: newIndex}, nil
	case EditDocumentMetadata:
		return &DocumentMetadataEdit{Metadata: w.Metadata}, nil
	case EditOutputItems:
		if w.Index != nil || w.Handle != nil {
			return nil, w.invalid("output items are selected by outputId only")
		}
		if w.OutputID == nil {
			return nil, w.invalid("missing outputId")
		}
		return &OutputItemsEdit{OutputID: *w.OutputID, Items: w.Items, Append: w.Append}, nil
	}

	if w.EditType == EditOutput && w.OutputID != nil {
		if w.Index != nil || w.Handle != nil {
			return nil, w.invalid("outputId and index or handle are mutually exclusive")
		}
		return &OutputEdit{OutputID: *w.OutputID, Outputs: w.Outputs, Append: w.Append}, nil
	}

	ref, err := w.cellRef()
	if err != nil {
		return nil, err
	}

	switch w.EditType {
	case EditOutput:
		return &OutputEdit{Target: ref, Outputs: w.Outputs, Append: w.Append}, nil
	case EditMetadata:
		return &MetadataEdit{Target: ref, Metadata: w.Metadata}, nil
	case EditPartialMetadata:
		return &PartialMetadataEdit{Target: ref, Metadata: w.Metadata}, nil
	case EditPartialInternalMetadata:
		return &PartialInternalMetadataEdit{Target: ref, InternalMetadata: w.InternalMetadata}, nil
	case EditCellLanguage:
		if w.Language == nil {
			return nil, w.invalid("missing language")
		}
		return &CellLanguageEdit{Target: ref, Language: *w.Language}, nil
	default:
		return nil, w.invalid("unknown edit type %d", int(w.EditType))
	}
}

func fromEdit(edit CellEdit) (wireEdit, error) {
	if edit == nil {
		return wireEdit{}, errors.WithStack(&InvalidEditError{Reason: "edit is nil"})
	}

	w := wireEdit{EditType: edit.EditType()}

	if ref, ok := cellTarget(edit); ok {
		if idx, ok := ref.Index(); ok {
			w.Index = &idx
		} else if handle, ok := ref.Handle(); ok {
			w.Handle = &handle
		}
	}

	switch e := edit.(type) {
	case *ReplaceEdit:
		w.Index, w.Count, w.Cells = &e.Index, &e.Count, e.Cells
	case *MoveEdit:
		w.Index, w.Length, w.NewIndex = &e.Index, &e.Length, &e.NewIndex
	case *DocumentMetadataEdit:
		w.Metadata = e.Metadata
	case *OutputItemsEdit:
		w.OutputID, w.Items, w.Append = &e.OutputID, e.Items, e.Append
	case *OutputEdit:
		w.Outputs, w.Append = e.Outputs, e.Append
		if e.OutputID != "" {
			w.OutputID = &e.OutputID
		}
	case *MetadataEdit:
		w.Metadata = e.Metadata
	case *PartialMetadataEdit:
		w.Metadata = e.Metadata
	case *PartialInternalMetadataEdit:
		w.InternalMetadata = e.InternalMetadata
	case *CellLanguageEdit:
		w.Language = &e.Language
	default:
		return wireEdit{}, errors.WithStack(&InvalidEditError{EditType: edit.EditType(), Reason: "unsupported edit"})
	}

	return w, nil
}
