package forge

import "dusk/typing"

// Variable is a named value participating in the IR: a declared local, a
// function parameter, or a call argument descriptor.  Call arguments that
// name a variable start out as UNKNOWN/REF_UNKNOWN and are promoted in place
// by the analyzer; literal arguments carry their literal type.
type Variable struct {
	Name string
	Type typing.DataType
}

// NewVariable creates a variable with the given name and type.
func NewVariable(name string, dt typing.DataType) *Variable {
	return &Variable{Name: name, Type: dt}
}
