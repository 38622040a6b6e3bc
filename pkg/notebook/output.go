package notebook

import (
	"encoding/binary"
	"hash/fnv"
)

// Output is a live cell output owned by a Cell.
type Output struct {
	id       string
	items    []OutputItem
	metadata Metadata
}

func newOutput(data OutputData, generateID func() string) *Output {
	id := data.OutputID
	if id == "" {
		id = generateID()
	}
	return &Output{
		id:       id,
		items:    cloneItems(data.Items),
		metadata: data.Metadata.Clone(),
	}
}

func (o *Output) ID() string { return o.id }

func (o *Output) Items() []OutputItem { return cloneItems(o.items) }

func (o *Output) Metadata() Metadata { return o.metadata.Clone() }

func (o *Output) ToData() OutputData {
	return OutputData{
		OutputID: o.id,
		Items:    o.Items(),
		Metadata: o.Metadata(),
	}
}

func (o *Output) appendItems(items []OutputItem) {
	o.items = append(o.items, cloneItems(items)...)
}

func (o *Output) replaceItems(items []OutputItem) {
	o.items = cloneItems(items)
}

func (o *Output) size() (n int) {
	for _, item := range o.items {
		n += len(item.Data)
	}
	return n
}

// ContentEqual reports whether both outputs carry the same items.
func (o *Output) ContentEqual(other *Output) bool {
	return itemsEqual(o.items, other.items)
}

func itemsEqual(a, b []OutputItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Mime != b[i].Mime || string(a[i].Data) != string(b[i].Data) {
			return false
		}
	}
	return true
}

// hashItems identifies an output by its content for sequence diffing.
func hashItems(items []OutputItem) uint64 {
	h := fnv.New64a()
	var size [8]byte
	for _, item := range items {
		binary.LittleEndian.PutUint64(size[:], uint64(len(item.Mime)))
		_, _ = h.Write(size[:])
		_, _ = h.Write([]byte(item.Mime))
		binary.LittleEndian.PutUint64(size[:], uint64(len(item.Data)))
		_, _ = h.Write(size[:])
		_, _ = h.Write(item.Data)
	}
	return h.Sum64()
}

func cloneItems(items []OutputItem) []OutputItem {
	if items == nil {
		return nil
	}
	result := make([]OutputItem, len(items))
	for i, item := range items {
		result[i] = OutputItem{
			Mime: item.Mime,
			Data: append([]byte(nil), item.Data...),
		}
	}
	return result
}

func outputsToData(outputs []*Output) []OutputData {
	result := make([]OutputData, 0, len(outputs))
	for _, o := range outputs {
		result = append(result, o.ToData())
	}
	return result
}
