package execstate

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/stateful/notebook/internal/ulid"
	"github.com/stateful/notebook/pkg/notebook"
)

// Service tracks the cell executions of documents and keeps the
// execution bookkeeping in the internal metadata of the cells.
type Service struct {
	mu         sync.Mutex
	executions map[string]map[int]*Execution // document uri -> cell handle
	now        func() time.Time
	logger     *zap.Logger
}

var _ notebook.ExecutionStateService = (*Service)(nil)

type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(opts ...Option) *Service {
	s := &Service{
		executions: make(map[string]map[int]*Execution),
		now:        time.Now,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CellExecutionsForNotebook returns the executions of a document ordered by cell handle.
func (s *Service) CellExecutionsForNotebook(uri string) []notebook.CellExecution {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]notebook.CellExecution, 0, len(s.executions[uri]))
	for handle, exe := range s.executions[uri] {
		result = append(result, notebook.CellExecution{CellHandle: handle, State: exe.state})
	}
	slices.SortFunc(result, func(a, b notebook.CellExecution) int { return a.CellHandle - b.CellHandle })
	return result
}

func (s *Service) IsExecuting(uri string, handle int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	exe, ok := s.executions[uri][handle]
	return ok && exe.state == notebook.CellExecutionExecuting
}

// Create registers an unconfirmed execution of the cell with handle.
func (s *Service) Create(doc *notebook.Document, handle int) (*Execution, error) {
	if doc.CellIndex(handle) < 0 {
		return nil, errors.Errorf("no cell with handle %d in %s", handle, doc.URI())
	}

	s.mu.Lock()
	if _, ok := s.executions[doc.URI()][handle]; ok {
		s.mu.Unlock()
		return nil, errors.Errorf("cell %d of %s is already executing", handle, doc.URI())
	}
	exe := &Execution{
		id:      ulid.GenerateID(),
		service: s,
		doc:     doc,
		handle:  handle,
		state:   notebook.CellExecutionUnconfirmed,
	}
	if s.executions[doc.URI()] == nil {
		s.executions[doc.URI()] = make(map[int]*Execution)
	}
	s.executions[doc.URI()][handle] = exe
	s.mu.Unlock()

	s.logger.Debug("created cell execution", zap.String("uri", doc.URI()), zap.Int("handle", handle), zap.String("id", exe.id))

	err := exe.patch(notebook.Metadata{
		notebook.InternalExecutionID:    exe.id,
		notebook.InternalRunStartTime:   nil,
		notebook.InternalRunEndTime:     nil,
		notebook.InternalLastRunSuccess: nil,
	})
	if err != nil {
		s.remove(exe)
		return nil, err
	}
	return exe, nil
}

func (s *Service) setState(exe *Execution, state notebook.CellExecutionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exe.state = state
}

func (s *Service) remove(exe *Execution) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byHandle := s.executions[exe.doc.URI()]
	if byHandle[exe.handle] == exe {
		delete(byHandle, exe.handle)
	}
	if len(byHandle) == 0 {
		delete(s.executions, exe.doc.URI())
	}
}

// Execution is a single run of a cell.
type Execution struct {
	id      string
	service *Service
	doc     *notebook.Document
	handle  int
	state   notebook.CellExecutionState
}

func (e *Execution) ID() string { return e.id }

func (e *Execution) Handle() int { return e.handle }

func (e *Execution) State() notebook.CellExecutionState {
	e.service.mu.Lock()
	defer e.service.mu.Unlock()
	return e.state
}

// Confirm marks the execution as accepted by a kernel.
func (e *Execution) Confirm() {
	e.service.setState(e, notebook.CellExecutionPending)
}

// Start marks the execution as running.
func (e *Execution) Start(executionOrder int) error {
	e.service.setState(e, notebook.CellExecutionExecuting)
	return e.patch(notebook.Metadata{
		notebook.InternalExecutionOrder: executionOrder,
		notebook.InternalRunStartTime:   e.service.now().UnixMilli(),
	})
}

// AppendOutputs adds outputs produced by the execution to the cell.
func (e *Execution) AppendOutputs(outputs []notebook.OutputData) error {
	_, err := e.doc.ApplyEdits([]notebook.CellEdit{
		&notebook.OutputEdit{Target: notebook.ByHandle(e.handle), Outputs: outputs, Append: true},
	}, notebook.ApplyOptions{Synchronous: true})
	return errors.Wrap(err, "failed to append outputs")
}

// ClearOutputs removes the outputs of the cell.
func (e *Execution) ClearOutputs() error {
	_, err := e.doc.ApplyEdits([]notebook.CellEdit{
		&notebook.OutputEdit{Target: notebook.ByHandle(e.handle)},
	}, notebook.ApplyOptions{Synchronous: true})
	return errors.Wrap(err, "failed to clear outputs")
}

// Complete records the result of the execution and forgets it.
func (e *Execution) Complete(success bool) error {
	defer e.service.remove(e)
	e.service.logger.Debug("completed cell execution", zap.String("uri", e.doc.URI()), zap.Int("handle", e.handle), zap.Bool("success", success))
	return e.patch(notebook.Metadata{
		notebook.InternalLastRunSuccess: success,
		notebook.InternalRunEndTime:     e.service.now().UnixMilli(),
	})
}

func (e *Execution) patch(internal notebook.Metadata) error {
	_, err := e.doc.ApplyEdits([]notebook.CellEdit{
		&notebook.PartialInternalMetadataEdit{Target: notebook.ByHandle(e.handle), InternalMetadata: internal},
	}, notebook.ApplyOptions{Synchronous: true})
	return errors.Wrap(err, "failed to update internal metadata")
}
