package undoredo

import (
	"sync"

	"github.com/elliotchance/orderedmap"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/stateful/notebook/pkg/notebook"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

const defaultMaxEntries = 1000

type entry struct {
	element notebook.UndoRedoElement
	group   *notebook.UndoRedoGroup
}

func (e *entry) groupID() int64 {
	if e.group == nil {
		return 0
	}
	return e.group.ID
}

type stack struct {
	past   []*entry
	future []*entry
}

// Service is an in-memory undo/redo service keeping one stack per
// resource. Elements pushed with the same non-zero group are undone
// and redone together, across resources.
type Service struct {
	mu         sync.Mutex
	stacks     *orderedmap.OrderedMap // resource -> *stack
	maxEntries int
	logger     *zap.Logger
}

var _ notebook.UndoRedoService = (*Service)(nil)

type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMaxEntries bounds the number of undo entries per resource.
func WithMaxEntries(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

func New(opts ...Option) *Service {
	s := &Service{
		stacks:     orderedmap.NewOrderedMap(),
		maxEntries: defaultMaxEntries,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) stackLocked(resource string, create bool) *stack {
	if v, ok := s.stacks.Get(resource); ok {
		return v.(*stack)
	}
	if !create {
		return nil
	}
	st := &stack{}
	s.stacks.Set(resource, st)
	return st
}

// PushElement records element as the newest undo entry of its resource
// and clears the redo entries of that resource.
func (s *Service) PushElement(element notebook.UndoRedoElement, group *notebook.UndoRedoGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.stackLocked(element.Resource(), true)
	st.past = append(st.past, &entry{element: element, group: group})
	st.future = nil

	if excess := len(st.past) - s.maxEntries; excess > 0 {
		st.past = st.past[excess:]
	}

	s.logger.Debug("pushed undo element", zap.String("resource", element.Resource()), zap.String("label", element.Label()), zap.String("code", element.Code()))
}

func (s *Service) LastElement(resource string) notebook.UndoRedoElement {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.stackLocked(resource, false)
	if st == nil || len(st.past) == 0 {
		return nil
	}
	return st.past[len(st.past)-1].element
}

func (s *Service) RemoveElements(resource string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stacks.Delete(resource) {
		s.logger.Debug("removed undo elements", zap.String("resource", resource))
	}
}

// Resources returns the resources with a stack, in the order they were first seen.
func (s *Service) Resources() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]string, 0, s.stacks.Len())
	for el := s.stacks.Front(); el != nil; el = el.Next() {
		result = append(result, el.Key.(string))
	}
	return result
}

func (s *Service) CanUndo(resource string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stackLocked(resource, false)
	return st != nil && len(st.past) > 0
}

func (s *Service) CanRedo(resource string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stackLocked(resource, false)
	return st != nil && len(st.future) > 0
}

type move struct {
	resource string
	entry    *entry
}

// takeLocked pops the newest entry of resource from the past stacks (or
// the future stacks when redo is set), together with the newest entries
// of other resources belonging to the same group.
func (s *Service) takeLocked(resource string, redo bool) []move {
	pick := func(st *stack) *[]*entry {
		if redo {
			return &st.future
		}
		return &st.past
	}

	st := s.stackLocked(resource, false)
	if st == nil || len(*pick(st)) == 0 {
		return nil
	}

	entries := pick(st)
	top := (*entries)[len(*entries)-1]
	*entries = (*entries)[:len(*entries)-1]
	moves := []move{{resource: resource, entry: top}}

	groupID := top.groupID()
	if groupID == 0 {
		return moves
	}

	for el := s.stacks.Front(); el != nil; el = el.Next() {
		other := el.Key.(string)
		if other == resource {
			continue
		}
		entries := pick(el.Value.(*stack))
		if n := len(*entries); n > 0 && (*entries)[n-1].groupID() == groupID {
			moves = append(moves, move{resource: other, entry: (*entries)[n-1]})
			*entries = (*entries)[:n-1]
		}
	}
	return moves
}

// putLocked pushes entries onto the past stacks (or the future stacks
// when future is set).
func (s *Service) putLocked(moves []move, future bool) {
	for _, m := range moves {
		st := s.stackLocked(m.resource, true)
		if future {
			st.future = append(st.future, m.entry)
		} else {
			st.past = append(st.past, m.entry)
		}
	}
}

// Undo reverts the newest entry of resource. The lock is not held while
// the entries run, since they call back into their documents.
func (s *Service) Undo(resource string) error {
	s.mu.Lock()
	moves := s.takeLocked(resource, false)
	s.mu.Unlock()

	if len(moves) == 0 {
		return ErrNothingToUndo
	}

	var err error
	for _, m := range moves {
		err = multierr.Append(err, m.entry.element.Undo())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.putLocked(moves, false)
		return errors.Wrapf(err, "failed to undo %s", resource)
	}
	s.putLocked(moves, true)
	s.logger.Debug("undone", zap.String("resource", resource), zap.Int("elements", len(moves)))
	return nil
}

func (s *Service) Redo(resource string) error {
	s.mu.Lock()
	moves := s.takeLocked(resource, true)
	s.mu.Unlock()

	if len(moves) == 0 {
		return ErrNothingToRedo
	}

	var err error
	for _, m := range moves {
		err = multierr.Append(err, m.entry.element.Redo())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.putLocked(moves, true)
		return errors.Wrapf(err, "failed to redo %s", resource)
	}
	s.putLocked(moves, false)
	s.logger.Debug("redone", zap.String("resource", resource), zap.Int("elements", len(moves)))
	return nil
}
