package config

import (
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrRootConfigNotFound = errors.New("root configuration file not found")

// Loader reads configuration files from a file system.
//
// Besides the root configuration file, a notebook can be accompanied by
// nested configuration files in the directories leading to it. They are
// applied in order, so the file closest to the notebook wins.
type Loader struct {
	// root is the file system holding the root configuration file.
	// Typically, it's the current working directory.
	root fs.FS

	// configName is the name of the configuration file without extension.
	configName string

	// configType is the extension of the configuration file and
	// selects the parser, see [TypeYAML] and [TypeTOML].
	configType string

	logger *zap.Logger
}

type LoaderOption func(*Loader)

func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

func NewLoader(configName, configType string, root fs.FS, opts ...LoaderOption) *Loader {
	if configName == "" {
		panic("config name is not set")
	}

	l := &Loader{
		root:       root,
		configName: configName,
		configType: configType,
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.logger == nil {
		l.logger = zap.NewNop()
	}

	return l
}

func (l *Loader) configFullName() string {
	if l.configType == "" {
		return l.configName
	}
	return l.configName + "." + l.configType
}

// Load parses the configuration chain for the notebook at name.
// Without any configuration file the defaults are returned.
func (l *Loader) Load(name string) (*Config, error) {
	chain, err := l.FindConfigChain(name)
	if err != nil {
		return nil, err
	}
	if len(chain) == 0 {
		l.logger.Debug("no configuration files found, using defaults", zap.String("name", name))
		return Default(), nil
	}
	cfg, err := Parse(l.configType, chain...)
	return cfg, errors.Wrapf(err, "failed to load configuration for %q", name)
}

func (l *Loader) FindConfigChain(name string) ([][]byte, error) {
	paths, err := l.findConfigFilesOnPath(name)
	if err != nil {
		return nil, err
	}
	return l.readFiles(paths...)
}

func (l *Loader) RootConfig() ([]byte, error) {
	data, err := fs.ReadFile(l.root, l.configFullName())
	if err != nil {
		return nil, ErrRootConfigNotFound
	}
	return data, nil
}

func (l *Loader) findConfigFilesOnPath(name string) (result []string, _ error) {
	name, err := l.parsePath(name)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("finding config files on path", zap.String("name", name))

	configFullName := l.configFullName()

	_, err = fs.Stat(l.root, configFullName)
	if err == nil {
		result = append(result, configFullName)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.WithStack(err)
	}

	fragments := strings.Split(name, string(filepath.Separator))
	if len(fragments) > 0 && fragments[0] == "." {
		fragments = fragments[1:]
	}

	curDir := ""
	for _, fragment := range fragments {
		// [path.Join] works with [fs.FS] on every platform.
		curDir = path.Join(curDir, fragment)

		configPath := path.Join(curDir, configFullName)
		_, err := fs.Stat(l.root, configPath)
		if err == nil {
			result = append(result, configPath)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.WithStack(err)
		}
	}

	l.logger.Debug("found config files on path", zap.String("name", name), zap.Strings("files", result))

	return result, nil
}

// parsePath returns the directory of name, which is either a notebook
// file or a directory.
func (l *Loader) parsePath(name string) (string, error) {
	if name == "" {
		name = "."
	}

	info, err := fs.Stat(l.root, name)
	if err != nil {
		return "", errors.Wrapf(err, "failed to get the path info for %q", name)
	}

	if info.IsDir() {
		return filepath.Clean(name), nil
	}
	return filepath.Dir(name), nil
}

func (l *Loader) readFiles(paths ...string) (result [][]byte, _ error) {
	for _, p := range paths {
		data, err := fs.ReadFile(l.root, p)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		result = append(result, data)
	}
	return result, nil
}
