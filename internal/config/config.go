package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"github.com/stateful/notebook/pkg/notebook"
)

const (
	TypeYAML = "yaml"
	TypeTOML = "toml"
)

// Config is the configuration of the notebook tooling.
type Config struct {
	Version  string         `yaml:"version" toml:"version" validate:"required,oneof=v1alpha1"`
	Notebook NotebookConfig `yaml:"notebook" toml:"notebook"`
	Undo     UndoConfig     `yaml:"undo" toml:"undo"`
	Snapshot SnapshotConfig `yaml:"snapshot" toml:"snapshot"`
	Search   SearchConfig   `yaml:"search" toml:"search"`
	Filters  []*Filter      `yaml:"filters" toml:"filters" validate:"dive,required"`
	Log      LogConfig      `yaml:"log" toml:"log"`
}

type NotebookConfig struct {
	Transient TransientConfig `yaml:"transient" toml:"transient"`
}

// TransientConfig names the fields excluded from dirty tracking and snapshots.
type TransientConfig struct {
	Outputs          bool     `yaml:"outputs" toml:"outputs"`
	DocumentMetadata []string `yaml:"document_metadata" toml:"document_metadata" validate:"dive,required"`
	CellMetadata     []string `yaml:"cell_metadata" toml:"cell_metadata" validate:"dive,required"`
}

type UndoConfig struct {
	MaxEntries int `yaml:"max_entries" toml:"max_entries" validate:"gte=0"`
}

type SnapshotConfig struct {
	// OutputSizeLimit bounds the output bytes of a backup. Zero disables the check.
	OutputSizeLimit int `yaml:"output_size_limit" toml:"output_size_limit" validate:"gte=0"`
}

type SearchConfig struct {
	MaxResultsPerCell int `yaml:"max_results_per_cell" toml:"max_results_per_cell" validate:"gte=0"`
}

type LogConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
	Verbose bool   `yaml:"verbose" toml:"verbose"`
}

// ParseYAML parses one or more YAML documents on top of the defaults.
// Later documents override earlier ones.
func ParseYAML(data ...[]byte) (*Config, error) {
	return Parse(TypeYAML, data...)
}

func ParseTOML(data ...[]byte) (*Config, error) {
	return Parse(TypeTOML, data...)
}

func Parse(configType string, data ...[]byte) (*Config, error) {
	cfg := Default()
	if err := parse(cfg, configType, data...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse(cfg *Config, configType string, data ...[]byte) error {
	for _, d := range data {
		version, err := parseVersion(configType, d)
		if err != nil {
			return err
		}
		if version != "v1alpha1" {
			return errors.Errorf("unknown version: %s", version)
		}

		if err := decode(configType, d, cfg); err != nil {
			return errors.Wrap(err, "failed to parse v1alpha1 config")
		}
	}

	return errors.Wrap(validateConfig(cfg), "failed to validate v1alpha1 config")
}

type versionOnly struct {
	Version string `yaml:"version" toml:"version"`
}

func parseVersion(configType string, data []byte) (string, error) {
	var result versionOnly
	if err := decode(configType, data, &result); err != nil {
		return "", errors.Wrap(err, "failed to unmarshal version")
	}
	return result.Version, nil
}

func decode(configType string, data []byte, v any) error {
	switch configType {
	case TypeYAML, "yml", "":
		err := yaml.Unmarshal(data, v)
		return errors.WithStack(err)
	case TypeTOML:
		err := toml.Unmarshal(data, v)
		return errors.WithStack(err)
	default:
		return errors.Errorf("unsupported config type %q", configType)
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateConfig(cfg *Config) (err error) {
	if verr := validate.Struct(cfg); verr != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(verr, &fieldErrs) {
			return errors.WithStack(verr)
		}
		for _, fe := range fieldErrs {
			err = multierr.Append(err, errors.Errorf("%s: failed on %q", fe.Namespace(), fe.Tag()))
		}
	}

	for i, f := range cfg.Filters {
		if f == nil {
			continue
		}
		if cerr := f.compile(); cerr != nil {
			err = multierr.Append(err, errors.Wrapf(cerr, "filters[%d]", i))
		}
	}

	return err
}

func (c *Config) clone() *Config {
	result := *c
	result.Notebook.Transient.DocumentMetadata = slices.Clone(c.Notebook.Transient.DocumentMetadata)
	result.Notebook.Transient.CellMetadata = slices.Clone(c.Notebook.Transient.CellMetadata)
	result.Filters = make([]*Filter, 0, len(c.Filters))
	for _, f := range c.Filters {
		result.Filters = append(result.Filters, &Filter{Condition: f.Condition})
	}
	return &result
}

func (c *Config) TransientOptions() notebook.TransientOptions {
	return notebook.TransientOptions{
		TransientOutputs:          c.Notebook.Transient.Outputs,
		TransientDocumentMetadata: toSet(c.Notebook.Transient.DocumentMetadata),
		TransientCellMetadata:     toSet(c.Notebook.Transient.CellMetadata),
	}
}

func (c *Config) SnapshotOptions(context notebook.SnapshotContext) notebook.SnapshotOptions {
	return notebook.SnapshotOptions{
		Context:         context,
		OutputSizeLimit: c.Snapshot.OutputSizeLimit,
	}
}

// FindOptions restricts the search to cells passing every filter.
func (c *Config) FindOptions() notebook.FindOptions {
	opts := notebook.FindOptions{MaxResultsPerCell: c.Search.MaxResultsPerCell}
	if len(c.Filters) == 0 {
		return opts
	}

	filters := c.Filters
	opts.Filter = func(cell *notebook.Cell) (bool, error) {
		env := NewFilterCellEnv(cell)
		for _, f := range filters {
			ok, err := f.Evaluate(env)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
	return opts
}

func toSet(keys []string) map[string]bool {
	if len(keys) == 0 {
		return nil
	}
	result := make(map[string]bool, len(keys))
	for _, k := range keys {
		result[k] = true
	}
	return result
}
