package symbols

import (
	"fmt"

	"dusk/forge"
	"dusk/typing"
)

// Symbol is one name bound in a context.
type Symbol struct {
	Type      typing.DataType
	Immutable bool
}

// Context is a named scope corresponding to one source function.  The symbol
// maps form a stack: index 0 holds the function's own symbols, later entries
// are block scopes opened inside if/while/for bodies.
type Context struct {
	Name       string
	Parameters []*forge.Variable
	ReturnType typing.DataType

	scopes []map[string]*Symbol
}

// SymbolTable tracks every context of a translation unit.  Context signatures
// persist for the whole run so calls resolve after a function is finished;
// symbol contents are cleared once their function completes.  Declarations
// notify the memory layout manager so every symbol gets a storage slot.
type SymbolTable struct {
	contexts map[string]*Context
	active   []*Context
	memory   *forge.Memory

	uniqueCounter int
}

// NewSymbolTable creates an empty table that allocates storage through the
// given layout manager.
func NewSymbolTable(memory *forge.Memory) *SymbolTable {
	return &SymbolTable{
		contexts: make(map[string]*Context),
		memory:   memory,
	}
}

// -----------------------------------------------------------------------------

// NewContext begins a new function scope.  It fails if the name is already a
// context anywhere in the unit.
func (st *SymbolTable) NewContext(name string) error {
	if _, ok := st.contexts[name]; ok {
		return fmt.Errorf("context %q already exists", name)
	}

	ctx := &Context{
		Name:   name,
		scopes: []map[string]*Symbol{make(map[string]*Symbol)},
	}

	st.contexts[name] = ctx
	st.active = append(st.active, ctx)
	return nil
}

// DoesContextExist reports whether name is a known context.
func (st *SymbolTable) DoesContextExist(name string) bool {
	_, ok := st.contexts[name]
	return ok
}

// GetContextParameters returns the recorded parameter list of a context.
func (st *SymbolTable) GetContextParameters(name string) []*forge.Variable {
	if ctx, ok := st.contexts[name]; ok {
		return ctx.Parameters
	}

	return nil
}

// GetReturnTypeOfContext returns the recorded return type of a context.
func (st *SymbolTable) GetReturnTypeOfContext(name string) typing.DataType {
	if ctx, ok := st.contexts[name]; ok {
		return ctx.ReturnType
	}

	return typing.Undefined
}

// AddParametersToCurrentContext records the parameter list of the context
// being built.  The parameters also become visible for lookup.
func (st *SymbolTable) AddParametersToCurrentContext(params []*forge.Variable) {
	ctx := st.current()
	if ctx == nil {
		return
	}

	ctx.Parameters = params
}

// AddReturnTypeToCurrentContext records the return type of the context being
// built.
func (st *SymbolTable) AddReturnTypeToCurrentContext(dt typing.DataType) {
	if ctx := st.current(); ctx != nil {
		ctx.ReturnType = dt
	}
}

// CurrentContextName returns the name of the context being built, or "".
func (st *SymbolTable) CurrentContextName() string {
	if ctx := st.current(); ctx != nil {
		return ctx.Name
	}

	return ""
}

// LeaveContext pops the active context once its function has been walked.
func (st *SymbolTable) LeaveContext() {
	if len(st.active) > 0 {
		st.active = st.active[:len(st.active)-1]
	}
}

func (st *SymbolTable) current() *Context {
	if len(st.active) == 0 {
		return nil
	}

	return st.active[len(st.active)-1]
}

// -----------------------------------------------------------------------------

// PushScope opens a block scope inside the current context.
func (st *SymbolTable) PushScope() {
	if ctx := st.current(); ctx != nil {
		ctx.scopes = append(ctx.scopes, make(map[string]*Symbol))
	}
}

// PopScope closes the innermost block scope of the current context, freeing
// the storage its symbols held.  The function scope itself is never popped.
func (st *SymbolTable) PopScope() {
	ctx := st.current()
	if ctx == nil || len(ctx.scopes) <= 1 {
		return
	}

	for name := range ctx.scopes[len(ctx.scopes)-1] {
		st.memory.Release(name)
	}

	ctx.scopes = ctx.scopes[:len(ctx.scopes)-1]
}

// ScopeDepth returns the number of open scopes in the current context; 1
// means the function's own scope with no nested blocks.
func (st *SymbolTable) ScopeDepth() int {
	if ctx := st.current(); ctx != nil {
		return len(ctx.scopes)
	}

	return 0
}

// AddSymbol declares a name in the innermost block of the current context and
// allocates storage for it.  It fails if the name is already visible anywhere
// in the context.
func (st *SymbolTable) AddSymbol(name string, dt typing.DataType, immutable bool) error {
	ctx := st.current()
	if ctx == nil {
		return fmt.Errorf("no active context for symbol %q", name)
	}

	if st.DoesSymbolExist(name) {
		return fmt.Errorf("symbol %q already declared in context %q", name, ctx.Name)
	}

	ctx.scopes[len(ctx.scopes)-1][name] = &Symbol{Type: dt, Immutable: immutable}

	if _, err := st.memory.Allocate(name, dt); err != nil {
		return err
	}

	return nil
}

// lookup searches the innermost block first, outward to the function's own
// symbols and then its parameters.  There is no cross-function capture.
func (st *SymbolTable) lookup(name string) (*Symbol, bool) {
	ctx := st.current()
	if ctx == nil {
		return nil, false
	}

	for i := len(ctx.scopes) - 1; i > -1; i-- {
		if sym, ok := ctx.scopes[i][name]; ok {
			return sym, true
		}
	}

	for _, p := range ctx.Parameters {
		if p.Name == name {
			return &Symbol{Type: p.Type}, true
		}
	}

	return nil, false
}

// DoesSymbolExist reports whether name is visible in the current context.
func (st *SymbolTable) DoesSymbolExist(name string) bool {
	_, ok := st.lookup(name)
	return ok
}

// IsExistingSymbolOfType reports whether name is visible and of the given
// type.
func (st *SymbolTable) IsExistingSymbolOfType(name string, dt typing.DataType) bool {
	sym, ok := st.lookup(name)
	return ok && sym.Type == dt
}

// GetValueType returns the type bound to name in the current context.
func (st *SymbolTable) GetValueType(name string) typing.DataType {
	if sym, ok := st.lookup(name); ok {
		return sym.Type
	}

	return typing.Undefined
}

// IsImmutable reports whether name was declared immutable.
func (st *SymbolTable) IsImmutable(name string) bool {
	sym, ok := st.lookup(name)
	return ok && sym.Immutable
}

// ClearExistingContext deletes every symbol local to a finished function
// while retaining its signature record for later call resolution.
func (st *SymbolTable) ClearExistingContext(name string) {
	if ctx, ok := st.contexts[name]; ok {
		ctx.scopes = []map[string]*Symbol{make(map[string]*Symbol)}
	}
}

// -----------------------------------------------------------------------------
// The generators below synthesize names for compiler-introduced variables and
// contexts.  Every generated name contains a double underscore, which the
// scanner rejects in user identifiers, so no collision with source names is
// possible.

// GenerateUniqueVariableSymbol produces a fresh synthesized variable name.
func (st *SymbolTable) GenerateUniqueVariableSymbol() string {
	st.uniqueCounter++
	return fmt.Sprintf("__v_%d", st.uniqueCounter)
}

// GenerateUniqueContext produces a fresh synthesized context name.
func (st *SymbolTable) GenerateUniqueContext() string {
	st.uniqueCounter++
	return fmt.Sprintf("__ctx_%d", st.uniqueCounter)
}

// GenerateUniqueReturnSymbol produces a fresh synthesized return-value name.
func (st *SymbolTable) GenerateUniqueReturnSymbol() string {
	st.uniqueCounter++
	return fmt.Sprintf("__ret_%d", st.uniqueCounter)
}

// GenerateUniqueCallParamSymbol produces a fresh synthesized argument name.
func (st *SymbolTable) GenerateUniqueCallParamSymbol() string {
	st.uniqueCounter++
	return fmt.Sprintf("__param_%d", st.uniqueCounter)
}
