// autoconfig provides a way to create various instances from the [config.Config] like
// [notebook.Document], [undoredo.Service], [zap.Logger].
//
// For example, to open a notebook, you can write:
//
//	autoconfig.NewBuilder().Invoke(func(open autoconfig.DocumentFactory) error {
//	    ...
//	})
//
// Treat it as a dependency injection mechanism.
package autoconfig

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/stateful/notebook/internal/config"
	"github.com/stateful/notebook/internal/execstate"
	"github.com/stateful/notebook/internal/log"
	"github.com/stateful/notebook/internal/undoredo"
	"github.com/stateful/notebook/pkg/notebook"
)

// DocumentFactory opens a notebook document from a snapshot using the
// configured services.
type DocumentFactory func(uri string, snapshot *notebook.Snapshot) *notebook.Document

type Builder struct {
	container *dig.Container
}

func NewBuilder() *Builder {
	b := &Builder{container: dig.New()}

	mustProvide(b.container.Provide(getLoader))
	mustProvide(b.container.Provide(getConfig))
	mustProvide(b.container.Provide(getLogger))
	mustProvide(b.container.Provide(getUndoService))
	mustProvide(b.container.Provide(getExecutionService))
	mustProvide(b.container.Provide(getDocumentFactory))

	return b
}

// Decorate replaces a provided type, for example the [config.Loader]
// to read the configuration from a different location.
func (b *Builder) Decorate(decorator interface{}, opts ...dig.DecorateOption) error {
	err := b.container.Decorate(decorator, opts...)
	return dig.RootCause(err)
}

// Invoke is used to invoke the function with the given dependencies.
// The package will automatically figure out how to instantiate them
// using the available configuration.
func (b *Builder) Invoke(function interface{}, opts ...dig.InvokeOption) error {
	err := b.container.Invoke(function, opts...)
	return dig.RootCause(err)
}

func mustProvide(err error) {
	if err != nil {
		panic("failed to provide: " + err.Error())
	}
}

func getLoader() (*config.Loader, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return config.NewLoader("notebook", config.TypeYAML, os.DirFS(cwd)), nil
}

func getConfig(loader *config.Loader) (*config.Config, error) {
	return loader.Load("")
}

func getLogger(c *config.Config) (*zap.Logger, error) {
	if c == nil {
		return zap.NewNop(), nil
	}
	return log.New(c.Log)
}

func getUndoService(c *config.Config, logger *zap.Logger) *undoredo.Service {
	return undoredo.New(
		undoredo.WithLogger(logger),
		undoredo.WithMaxEntries(c.Undo.MaxEntries),
	)
}

func getExecutionService(logger *zap.Logger) *execstate.Service {
	return execstate.New(execstate.WithLogger(logger))
}

func getDocumentFactory(
	c *config.Config,
	logger *zap.Logger,
	undo *undoredo.Service,
	exec *execstate.Service,
) DocumentFactory {
	return func(uri string, snapshot *notebook.Snapshot) *notebook.Document {
		if snapshot == nil {
			snapshot = &notebook.Snapshot{}
		}
		return notebook.New(
			uri,
			snapshot.Cells,
			snapshot.Metadata,
			c.TransientOptions(),
			notebook.WithLogger(logger),
			notebook.WithUndoRedoService(undo),
			notebook.WithExecutionStateService(exec),
		)
	}
}
