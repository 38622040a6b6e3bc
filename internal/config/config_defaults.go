package config

var defaults Config

func init() {
	yaml := []byte(`version: v1alpha1

notebook:
  # Fields excluded from dirty tracking and from saved snapshots.
  transient:
    outputs: false
    document_metadata: []
    cell_metadata: []

undo:
  # Number of undo entries kept per notebook.
  max_entries: 1000

snapshot:
  # Backups with more output bytes than this fail. Zero disables the check.
  output_size_limit: 0

search:
  max_results_per_cell: 1000

# Filters restrict the cells searched by "notebook find".
# "condition" must return a boolean value; the syntax is described at
# https://expr-lang.org/docs/language-definition.
# Available fields are defined in [config.FilterCellEnv].
# filters:
#   - condition: "kind == 'code'"
#   - condition: "language in ['go', 'python']"

log:
  enabled: false
  path: ""
  verbose: false
`)

	var cfg Config
	if err := parse(&cfg, TypeYAML, yaml); err != nil {
		panic(err)
	}

	defaults = cfg
}

// Default returns a copy of the default configuration.
func Default() *Config {
	return defaults.clone()
}
