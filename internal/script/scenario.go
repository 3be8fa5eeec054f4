package script

import (
	"bytes"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
)

// Scenario is a scripted run of the engine.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario demonstrates.
	Description string `yaml:"description"`

	// Scheduler is "sync" or "batch". Empty leaves the choice to the runner.
	Scheduler string `yaml:"scheduler,omitempty"`

	// Targets maps names to literals. Mappings become Objects and sequences
	// become Arrays.
	Targets map[string]any `yaml:"targets"`

	// Views lists the views steps and effects address. When empty, every
	// target gets a reactive view with the target's name.
	Views []ViewSpec `yaml:"views,omitempty"`

	// Effects are created in order before the first step.
	Effects []EffectSpec `yaml:"effects"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`

	// Expect is the expected trace. When empty, the trace is not checked.
	Expect []string `yaml:"expect,omitempty"`

	// path is the file the scenario was read from, for diagnostics.
	path string
}

// ViewSpec declares a view over a target.
type ViewSpec struct {
	Name   string `yaml:"name"`
	Target string `yaml:"target"`
	Mode   string `yaml:"mode,omitempty"`
}

// EffectSpec declares an effect that logs its expressions on every run.
type EffectSpec struct {
	Name string `yaml:"name"`
	Log  Exprs  `yaml:"log"`
	Lazy bool   `yaml:"lazy,omitempty"`

	Line int `yaml:"-"`
}

// UnmarshalYAML records the effect's line.
func (e *EffectSpec) UnmarshalYAML(node *yaml.Node) error {
	type plain EffectSpec
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*e = EffectSpec(p)
	e.Line = node.Line
	return nil
}

// Exprs is a list of expression sources. In YAML it is either a single
// string or a sequence of strings.
type Exprs []string

// UnmarshalYAML accepts a scalar or a sequence.
func (x *Exprs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*x = Exprs{node.Value}
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*x = list
	return nil
}

// Step is one scripted operation. Exactly one operation field is set.
type Step struct {
	// Set writes Value to the property at the path.
	Set string `yaml:"set,omitempty"`

	// Delete removes the property at the path.
	Delete string `yaml:"delete,omitempty"`

	// Push appends Value to the array view at the path.
	Push string `yaml:"push,omitempty"`

	// Pop removes the last element of the array view at the path.
	Pop string `yaml:"pop,omitempty"`

	// Length sets the length of the array view at the path to Value.
	Length string `yaml:"length,omitempty"`

	// Run runs the named effect.
	Run string `yaml:"run,omitempty"`

	// Stop stops the named effect.
	Stop string `yaml:"stop,omitempty"`

	// Batch runs its steps as one loop turn.
	Batch []Step `yaml:"batch,omitempty"`

	// Value is the operand of set, push and length.
	Value any `yaml:"value,omitempty"`

	Line   int `yaml:"-"`
	Column int `yaml:"-"`

	hasValue bool
}

// UnmarshalYAML records the step's position and whether a value was given.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	type plain Step
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = Step(p)
	s.Line, s.Column = node.Line, node.Column
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "value" {
			s.hasValue = true
		}
	}
	return nil
}

// Op returns the name of the step's operation, or "" when none or more
// than one is set.
func (s *Step) Op() string {
	ops := s.ops()
	if len(ops) != 1 {
		return ""
	}
	return ops[0]
}

func (s *Step) ops() []string {
	var ops []string
	for _, f := range []struct {
		name string
		set  bool
	}{
		{"set", s.Set != ""},
		{"delete", s.Delete != ""},
		{"push", s.Push != ""},
		{"pop", s.Pop != ""},
		{"length", s.Length != ""},
		{"run", s.Run != ""},
		{"stop", s.Stop != ""},
		{"batch", s.Batch != nil},
	} {
		if f.set {
			ops = append(ops, f.name)
		}
	}
	return ops
}

// Operand returns the path or effect name the step operates on.
func (s *Step) Operand() string {
	switch s.Op() {
	case "set":
		return s.Set
	case "delete":
		return s.Delete
	case "push":
		return s.Push
	case "pop":
		return s.Pop
	case "length":
		return s.Length
	case "run":
		return s.Run
	case "stop":
		return s.Stop
	default:
		return ""
	}
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("R060").
			WithDetail("Failed to read scenario file").
			Wrap(err)
	}
	return Parse(data, path)
}

// Parse decodes and validates a scenario. path is used for diagnostics.
func Parse(data []byte, path string) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, errors.New("R060").
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			Wrap(err)
	}
	s.path = path

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Path returns the file the scenario was read from.
func (s *Scenario) Path() string {
	return s.path
}

// TargetNames returns the target names in sorted order.
func (s *Scenario) TargetNames() []string {
	names := make([]string, 0, len(s.Targets))
	for name := range s.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ViewSpecs returns the declared views, or the default reactive view per
// target when none are declared.
func (s *Scenario) ViewSpecs() []ViewSpec {
	if len(s.Views) > 0 {
		return s.Views
	}
	specs := make([]ViewSpec, 0, len(s.Targets))
	for _, name := range s.TargetNames() {
		specs = append(specs, ViewSpec{Name: name, Target: name, Mode: "reactive"})
	}
	return specs
}

// Validate checks names, modes, step shapes and every expression.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return s.fail(0, 0, "name is required")
	}
	switch strings.ToLower(s.Scheduler) {
	case "", "sync", "batch":
	default:
		return s.fail(0, 0, "scheduler must be sync or batch, got %q", s.Scheduler)
	}
	if len(s.Targets) == 0 {
		return s.fail(0, 0, "at least one target is required")
	}
	for _, name := range s.TargetNames() {
		switch reactive.FromValue(s.Targets[name]).(type) {
		case *reactive.Object, *reactive.Array:
		default:
			return s.fail(0, 0, "target %q must be a mapping or a sequence", name)
		}
	}

	views := make(map[string]bool)
	for _, v := range s.ViewSpecs() {
		if v.Name == "" {
			return s.fail(0, 0, "view without a name")
		}
		if views[v.Name] {
			return s.fail(0, 0, "duplicate view %q", v.Name)
		}
		if _, ok := s.Targets[v.Target]; !ok {
			return errors.New("R062").
				WithDetailf("view %q refers to unknown target %q", v.Name, v.Target)
		}
		if _, err := ParseMode(v.Mode); err != nil {
			return err
		}
		views[v.Name] = true
	}

	effects := make(map[string]bool)
	for _, e := range s.Effects {
		if e.Name == "" {
			return s.fail(e.Line, 0, "effect without a name")
		}
		if effects[e.Name] {
			return s.fail(e.Line, 0, "duplicate effect %q", e.Name)
		}
		if len(e.Log) == 0 {
			return s.fail(e.Line, 0, "effect %q has nothing to log", e.Name)
		}
		for _, src := range e.Log {
			if err := s.checkExpr(src, views, e.Line, 0); err != nil {
				return err
			}
		}
		effects[e.Name] = true
	}

	return s.validateSteps(s.Steps, views, effects)
}

func (s *Scenario) validateSteps(steps []Step, views, effects map[string]bool) error {
	for i := range steps {
		st := &steps[i]
		ops := st.ops()
		if len(ops) != 1 {
			return s.fail(st.Line, st.Column, "step must have exactly one operation, found %d %v", len(ops), ops)
		}

		switch op := ops[0]; op {
		case "set", "delete":
			p, err := s.checkPath(st.Operand(), views, st.Line, st.Column)
			if err != nil {
				return err
			}
			if len(p.Segments) == 0 {
				return s.fail(st.Line, st.Column, "%s needs a property path, got %q", op, st.Operand())
			}
			if op == "set" && !st.hasValue {
				return s.fail(st.Line, st.Column, "set needs a value")
			}
		case "push", "pop", "length":
			if _, err := s.checkPath(st.Operand(), views, st.Line, st.Column); err != nil {
				return err
			}
			if op == "push" && !st.hasValue {
				return s.fail(st.Line, st.Column, "push needs a value")
			}
			if op == "length" {
				if n, ok := st.Value.(int); !ok || n < 0 {
					return s.fail(st.Line, st.Column, "length needs a non-negative integer value")
				}
			}
		case "run", "stop":
			if !effects[st.Operand()] {
				return errors.New("R062").
					WithDetailf("no effect named %q", st.Operand()).
					WithLocation(s.path, st.Line, st.Column)
			}
		case "batch":
			if err := s.validateSteps(st.Batch, views, effects); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Scenario) checkExpr(src string, views map[string]bool, line, col int) error {
	e, err := ParseExpr(src)
	if err != nil {
		return s.locate(err, line, col)
	}
	if !views[e.Path.Root] {
		return errors.New("R062").
			WithDetailf("no view named %q in %q", e.Path.Root, src).
			WithLocation(s.path, line, col)
	}
	return nil
}

func (s *Scenario) checkPath(src string, views map[string]bool, line, col int) (Path, error) {
	p, err := ParsePath(src)
	if err != nil {
		return Path{}, s.locate(err, line, col)
	}
	if !views[p.Root] {
		return Path{}, errors.New("R062").
			WithDetailf("no view named %q", p.Root).
			WithLocation(s.path, line, col)
	}
	return p, nil
}

func (s *Scenario) fail(line, col int, format string, args ...any) error {
	err := errors.New("R060").WithDetailf(format, args...)
	if s.path != "" && line > 0 {
		err.WithLocation(s.path, line, col)
	}
	return err
}

func (s *Scenario) locate(err error, line, col int) error {
	re := errors.FromError(err, "R061")
	if s.path != "" && line > 0 && re.Location == nil {
		re.WithLocation(s.path, line, col)
	}
	return re
}

// ParseMode converts a mode name into a reactive.Mode.
func ParseMode(name string) (reactive.Mode, error) {
	switch strings.ToLower(name) {
	case "", "reactive":
		return reactive.ModeReactive, nil
	case "shallow", "shallowreactive":
		return reactive.ModeShallow, nil
	case "readonly":
		return reactive.ModeReadonly, nil
	case "shallowreadonly":
		return reactive.ModeShallowReadonly, nil
	default:
		return 0, errors.New("R060").
			WithDetailf("unknown view mode %q", name).
			WithSuggestion("Use reactive, shallowReactive, readonly or shallowReadonly")
	}
}
