package scripting

import (
	"fmt"
	"math"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/parser"
	"github.com/milk9111/lilah/ecs/component"
)

// Required module-level functions. Each runs with no arguments.
var lifecycleFuncs = []string{"setup", "start", "update"}

// Behaviour callbacks looked up on the module's `behaviour` map.
var behaviourFuncs = []string{"start", "update", "on_collision"}

// Globals injected into every module. Scripts must not redeclare them.
const (
	globalState      = "state"
	globalSelf       = "self"
	globalCall       = "__call"
	globalGameObject = "__gameobject"
	globalInfo       = "__info"
)

// Module is one compiled script. Its `self` map survives reloads and holds
// the lifecycle frame counter.
type Module struct {
	Name   string
	Handle component.ModuleHandle

	compiled *tengo.Compiled
	self     *tengo.Map
	declared map[string]bool
}

// Frame is the number of lifecycle calls made so far.
func (m *Module) Frame() int {
	v, ok := m.self.Value["frame"]
	if !ok {
		return 0
	}
	i, _ := tengo.ToInt(v)
	return i
}

func (m *Module) advance() {
	if f := m.Frame(); f < math.MaxInt32 {
		m.self.Value["frame"] = integer(f + 1)
	}
}

// Declares reports whether the module assigns name at top level.
func (m *Module) Declares(name string) bool {
	return m.declared[name]
}

// declaredNames returns every identifier assigned at the top level of src.
func declaredNames(name string, src []byte) (map[string]bool, error) {
	fileSet := parser.NewFileSet()
	file := fileSet.AddFile(name, -1, len(src))
	p := parser.NewParser(file, src, nil)
	f, err := p.ParseFile()
	if err != nil {
		return nil, err
	}

	out := map[string]bool{}
	for _, stmt := range f.Stmts {
		assign, ok := stmt.(*parser.AssignStmt)
		if !ok {
			continue
		}
		for _, lhs := range assign.LHS {
			if ident, ok := lhs.(*parser.Ident); ok {
				out[ident.Name] = true
			}
		}
	}
	return out, nil
}

// dispatchSnippet is appended to a module's source. The native side selects
// a call by setting __call and running the program.
func dispatchSnippet(declared map[string]bool) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, fn := range lifecycleFuncs {
		fmt.Fprintf(&b, "if %s == %q {\n\t%s()\n}\n", globalCall, fn, fn)
	}
	if declared["ui"] {
		fmt.Fprintf(&b, "if %s == \"ui\" && is_callable(ui) {\n\tui()\n}\n", globalCall)
	}
	if declared["behaviour"] {
		for _, fn := range behaviourFuncs {
			args := globalGameObject
			if fn == "on_collision" {
				args += ", " + globalInfo
			}
			fmt.Fprintf(&b, "if %s == \"behaviour.%s\" && is_callable(behaviour.%s) {\n\tbehaviour.%s(%s)\n}\n",
				globalCall, fn, fn, fn, args)
		}
	}
	return b.String()
}

func (b *Bridge) compile(name string, src []byte, self *tengo.Map) (*Module, error) {
	declared, err := declaredNames(name, src)
	if err != nil {
		return nil, fmt.Errorf("scripting: parse %s: %w", name, err)
	}
	for _, fn := range lifecycleFuncs {
		if !declared[fn] {
			return nil, fmt.Errorf("scripting: module %s: %w: %s", name, ErrMissingFunction, fn)
		}
	}

	full := string(src) + "\n" + dispatchSnippet(declared)
	script := tengo.NewScript([]byte(full))
	_ = script.Add(globalState, b.state)
	_ = script.Add(globalSelf, self)
	_ = script.Add(globalCall, "")
	_ = script.Add(globalGameObject, tengo.UndefinedValue)
	_ = script.Add(globalInfo, tengo.UndefinedValue)
	script.SetImports(b.imports)

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("scripting: compile %s: %w", name, err)
	}

	m := &Module{
		Name:     name,
		Handle:   component.InternModule(name),
		compiled: compiled,
		self:     self,
		declared: declared,
	}

	// Run the top level once so load-time failures surface here.
	if err := m.call("", tengo.UndefinedValue, tengo.UndefinedValue); err != nil {
		return nil, fmt.Errorf("scripting: run %s: %w", name, err)
	}
	for _, fn := range lifecycleFuncs {
		if !compiled.IsDefined(fn) || !compiled.Get(fn).Object().CanCall() {
			return nil, fmt.Errorf("scripting: module %s: %w: %s is not a function", name, ErrMissingFunction, fn)
		}
	}
	return m, nil
}

// call runs the program with __call set to fn. Runtime panics raised inside
// the VM are returned as errors.
func (m *Module) call(fn string, gameObject, info tengo.Object) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scripting: %s.%s panicked: %v", m.Name, fn, r)
		}
	}()
	if err := m.compiled.Set(globalCall, fn); err != nil {
		return err
	}
	if err := m.compiled.Set(globalGameObject, gameObject); err != nil {
		return err
	}
	if err := m.compiled.Set(globalInfo, info); err != nil {
		return err
	}
	return m.compiled.Run()
}

// splitVMError separates a tengo error into its message and the source
// position tengo appends after "\n\tat ".
func splitVMError(err error) (message, location string) {
	msg := err.Error()
	i := strings.Index(msg, "\n\tat ")
	if i < 0 {
		return msg, ""
	}
	location = msg[i+len("\n\tat "):]
	if j := strings.IndexByte(location, '\n'); j >= 0 {
		location = location[:j]
	}
	return strings.TrimSpace(msg[:i]), strings.TrimSpace(location)
}
