package script

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
)

// Path addresses a value: a root view name followed by property names and
// array indexes.
type Path struct {
	Root string

	// Segments holds string keys and int indexes.
	Segments []any
}

// String renders the path in source form.
func (p Path) String() string {
	var b strings.Builder
	b.WriteString(p.Root)
	for _, seg := range p.Segments {
		switch s := seg.(type) {
		case int:
			fmt.Fprintf(&b, "[%d]", s)
		default:
			fmt.Fprintf(&b, ".%s", s)
		}
	}
	return b.String()
}

// Parent returns the path without its last segment, and that segment.
func (p Path) Parent() (Path, any, bool) {
	if len(p.Segments) == 0 {
		return p, nil, false
	}
	n := len(p.Segments) - 1
	return Path{Root: p.Root, Segments: p.Segments[:n]}, p.Segments[n], true
}

// Expr is a parsed expression: a path, optionally wrapped in a function.
type Expr struct {
	// Func is "", "keys", "has" or "len".
	Func string
	Path Path
}

// String renders the expression in source form.
func (e Expr) String() string {
	if e.Func == "" {
		return e.Path.String()
	}
	return e.Func + "(" + e.Path.String() + ")"
}

var knownFuncs = map[string]bool{"keys": true, "has": true, "len": true}

// ParseExpr parses an expression.
func ParseExpr(src string) (Expr, error) {
	s := strings.TrimSpace(src)
	if open := strings.IndexByte(s, '('); open >= 0 {
		name := s[:open]
		if !knownFuncs[name] {
			return Expr{}, errors.New("R061").WithDetailf("unknown function %q in %q", name, src)
		}
		if !strings.HasSuffix(s, ")") {
			return Expr{}, errors.New("R061").WithDetailf("missing ) in %q", src)
		}
		p, err := ParsePath(s[open+1 : len(s)-1])
		if err != nil {
			return Expr{}, err
		}
		if name == "has" && len(p.Segments) == 0 {
			return Expr{}, errors.New("R061").WithDetailf("has() needs a property, got %q", src)
		}
		return Expr{Func: name, Path: p}, nil
	}

	p, err := ParsePath(s)
	if err != nil {
		return Expr{}, err
	}
	return Expr{Path: p}, nil
}

// ParsePath parses name(.key|[index])*.
func ParsePath(src string) (Path, error) {
	s := strings.TrimSpace(src)
	bad := func(format string, args ...any) (Path, error) {
		return Path{}, errors.New("R061").WithDetailf("%s in %q", fmt.Sprintf(format, args...), src)
	}

	root, rest := scanIdent(s)
	if root == "" {
		return bad("expected a name")
	}

	p := Path{Root: root}
	for rest != "" {
		switch rest[0] {
		case '.':
			var key string
			key, rest = scanIdent(rest[1:])
			if key == "" {
				return bad("expected a property after .")
			}
			p.Segments = append(p.Segments, key)
		case '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return bad("missing ]")
			}
			i, err := strconv.Atoi(rest[1:end])
			if err != nil || i < 0 {
				return bad("index %q is not a non-negative integer", rest[1:end])
			}
			p.Segments = append(p.Segments, i)
			rest = rest[end+1:]
		default:
			return bad("unexpected %q", rest[0])
		}
	}
	return p, nil
}

func scanIdent(s string) (ident, rest string) {
	i := 0
	for i < len(s) {
		r := rune(s[i])
		if r == '_' || r == '-' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			i++
			continue
		}
		break
	}
	return s[:i], s[i:]
}

// env resolves root names to views.
type env map[string]reactive.View

// eval evaluates e. Reads through mutable views are tracked.
func (v env) eval(e Expr) (any, error) {
	switch e.Func {
	case "has":
		parent, key, _ := e.Path.Parent()
		container, err := v.resolve(parent)
		if err != nil {
			return nil, err
		}
		return has(container, key)
	case "keys":
		container, err := v.resolve(e.Path)
		if err != nil {
			return nil, err
		}
		return keys(container)
	case "len":
		container, err := v.resolve(e.Path)
		if err != nil {
			return nil, err
		}
		return length(container)
	default:
		return v.resolve(e.Path)
	}
}

// resolve walks p from its root view.
func (v env) resolve(p Path) (any, error) {
	root, ok := v[p.Root]
	if !ok {
		return nil, errors.New("R062").WithDetailf("no view named %q", p.Root)
	}
	var cur any = root
	for i, seg := range p.Segments {
		next, err := index(cur, seg)
		if err != nil {
			return nil, errors.New("R061").
				WithDetailf("%s: %v", Path{Root: p.Root, Segments: p.Segments[:i+1]}, err)
		}
		cur = next
	}
	return cur, nil
}

func index(container, seg any) (any, error) {
	switch c := container.(type) {
	case reactive.View:
		return c.Get(seg), nil
	case *reactive.Object:
		key, ok := seg.(string)
		if !ok {
			return nil, fmt.Errorf("cannot index an object with %v", seg)
		}
		value, _ := c.Get(key)
		return value, nil
	case *reactive.Array:
		switch k := seg.(type) {
		case int:
			return c.At(k), nil
		case string:
			if k == reactive.LengthKey {
				return c.Len(), nil
			}
		}
		return nil, fmt.Errorf("cannot index an array with %v", seg)
	case nil:
		return nil, fmt.Errorf("cannot read %v of nil", seg)
	default:
		return nil, fmt.Errorf("cannot read %v of %s", seg, FormatValue(c))
	}
}

func has(container, key any) (bool, error) {
	switch c := container.(type) {
	case reactive.View:
		return c.Has(key), nil
	case *reactive.Object:
		k, _ := key.(string)
		return c.Has(k), nil
	case *reactive.Array:
		i, ok := key.(int)
		return ok && i < c.Len() && c.At(i) != nil, nil
	default:
		return false, errors.New("R061").WithDetailf("has() on %s", FormatValue(c))
	}
}

func keys(container any) ([]any, error) {
	switch c := container.(type) {
	case reactive.View:
		return c.Keys(), nil
	case *reactive.Object:
		out := make([]any, 0, c.Len())
		for _, k := range c.Keys() {
			out = append(out, k)
		}
		return out, nil
	case *reactive.Array:
		out := make([]any, 0, c.Len())
		for i := 0; i < c.Len(); i++ {
			out = append(out, i)
		}
		return out, nil
	default:
		return nil, errors.New("R061").WithDetailf("keys() on %s", FormatValue(c))
	}
}

func length(container any) (int, error) {
	switch c := container.(type) {
	case *reactive.ArrayView:
		return c.Len(), nil
	case reactive.View:
		return len(c.Keys()), nil
	case *reactive.Object:
		return c.Len(), nil
	case *reactive.Array:
		return c.Len(), nil
	default:
		return 0, errors.New("R061").WithDetailf("len() on %s", FormatValue(c))
	}
}
