package notebook

// pendingEvent is a partial ContentChangedEvent. Nil fields are
// left to other events of the same batch.
type pendingEvent struct {
	rawEvents    []RawEvent
	versionID    int
	synchronous  *bool
	endSelection *SelectionState
}

// eventBatch accumulates the events of an edit transaction. Batches
// nest; only closing the outermost one yields the merged event.
type eventBatch struct {
	depth int
	queue []pendingEvent
}

func (b *eventBatch) beginBatch() {
	b.depth++
}

// push queues event while a batch is open. Otherwise the event is
// returned for immediate delivery.
func (b *eventBatch) push(event pendingEvent) (pendingEvent, bool) {
	if b.depth > 0 {
		b.queue = append(b.queue, event)
		return pendingEvent{}, false
	}
	return event, true
}

// endBatch closes a batch and returns the merged event once the
// outermost batch is closed and anything was queued.
func (b *eventBatch) endBatch() (pendingEvent, bool) {
	if b.depth == 0 {
		return pendingEvent{}, false
	}
	b.depth--
	if b.depth > 0 || len(b.queue) == 0 {
		return pendingEvent{}, false
	}
	queue := b.queue
	b.queue = nil
	return mergeEvents(queue), true
}

func (b *eventBatch) isEmpty() bool {
	return len(b.queue) == 0
}

// isDirty reports whether any queued raw event is not transient.
func (b *eventBatch) isDirty() bool {
	for _, event := range b.queue {
		for _, raw := range event.rawEvents {
			if !raw.IsTransient() {
				return true
			}
		}
	}
	return false
}

// mergeEvents concatenates raw events. The version of the last event
// wins, as do its selection and synchronous flag when set.
func mergeEvents(events []pendingEvent) pendingEvent {
	result := pendingEvent{}
	for _, event := range events {
		result.rawEvents = append(result.rawEvents, event.rawEvents...)
		result.versionID = event.versionID
		if event.synchronous != nil {
			result.synchronous = event.synchronous
		}
		if event.endSelection != nil {
			result.endSelection = event.endSelection
		}
	}
	return result
}

func (d *Document) beginBatch() {
	d.batch.beginBatch()
}

func (d *Document) endBatch() {
	if event, ok := d.batch.endBatch(); ok {
		d.deliver(event)
	}
}

func (d *Document) fire(event pendingEvent) {
	if event, ok := d.batch.push(event); ok {
		d.deliver(event)
	}
}

func (d *Document) deliver(event pendingEvent) {
	if len(event.rawEvents) == 0 {
		return
	}
	result := ContentChangedEvent{
		RawEvents:         event.rawEvents,
		VersionID:         event.versionID,
		EndSelectionState: event.endSelection,
	}
	if event.synchronous != nil {
		result.Synchronous = *event.synchronous
	}
	d.onDidChangeContent.fire(result)
}

func boolPtr(v bool) *bool { return &v }
