package runtime

// Environment represents a variable scope with a parent chain.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a new environment with an optional parent scope.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Define binds a name in the current scope. Re-declaring an existing name
// silently overwrites it; shadowing a name from an outer scope is allowed.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Get looks up a variable by walking the scope chain.
func (e *Environment) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if val, exists := env.values[name]; exists {
			return val, true
		}
	}
	return nil, false
}

// Assign updates an existing variable in the nearest enclosing scope that
// defines it. It never creates a binding; assigning to an undefined name
// reports false.
func (e *Environment) Assign(name string, value Value) bool {
	for env := e; env != nil; env = env.parent {
		if _, exists := env.values[name]; exists {
			env.values[name] = value
			return true
		}
	}
	return false
}
