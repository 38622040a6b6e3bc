package notebook

const (
	codeTextBufferEdit = "undoredo.textBufferEdit"
	codeInsertCell     = "undoredo.notebooks.insertCell"
	codeMoveCell       = "undoredo.notebooks.moveCell"
	codeStackOperation = "undoredo.notebooks.stackOperation"
)

// command is a single inverse operation recorded in a StackOperation.
type command struct {
	resource string
	label    string
	code     string
	undo     func() error
	redo     func() error
}

func (c *command) Resource() string { return c.resource }

func (c *command) Label() string { return c.label }

func (c *command) Code() string { return c.code }

func (c *command) Undo() error { return c.undo() }

func (c *command) Redo() error { return c.redo() }
