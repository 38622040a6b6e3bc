package config

import (
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pkg/errors"

	"github.com/stateful/notebook/pkg/notebook"
)

// Filter is a boolean expr condition evaluated against a cell.
type Filter struct {
	Condition string `yaml:"condition" toml:"condition" validate:"required"`

	once       sync.Once
	program    *vm.Program
	compileErr error
}

// FilterCellEnv is the environment a filter condition is evaluated in.
//
// The `expr` tag is used to map the field to the corresponding variable.
// Without it, all variables start with capitalized letters.
type FilterCellEnv struct {
	Handle   int            `expr:"handle"`
	Kind     string         `expr:"kind"`
	Language string         `expr:"language"`
	Mime     string         `expr:"mime"`
	Source   string         `expr:"source"`
	Metadata map[string]any `expr:"metadata"`
	Outputs  int            `expr:"outputs"`
}

func NewFilterCellEnv(c *notebook.Cell) FilterCellEnv {
	return FilterCellEnv{
		Handle:   c.Handle(),
		Kind:     c.Kind().String(),
		Language: c.Language(),
		Mime:     c.Mime(),
		Source:   c.Source(),
		Metadata: c.Metadata(),
		Outputs:  len(c.Outputs()),
	}
}

func (f *Filter) compile() error {
	f.once.Do(func() {
		program, err := expr.Compile(
			f.Condition,
			expr.Env(FilterCellEnv{}),
			expr.AsBool(),
		)
		f.program, f.compileErr = program, errors.Wrap(err, "failed to compile filter program")
	})
	return f.compileErr
}

func (f *Filter) Evaluate(env FilterCellEnv) (bool, error) {
	if err := f.compile(); err != nil {
		return false, err
	}

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, errors.Wrap(err, "failed to run filter program")
	}
	return result.(bool), nil
}
