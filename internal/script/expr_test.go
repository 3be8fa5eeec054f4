package script

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/reactive/pkg/reactive"
)

func TestParseExpr(t *testing.T) {
	tests := []struct {
		src  string
		want Expr
	}{
		{"state", Expr{Path: Path{Root: "state"}}},
		{"state.foo", Expr{Path: Path{Root: "state", Segments: []any{"foo"}}}},
		{"list[0]", Expr{Path: Path{Root: "list", Segments: []any{0}}}},
		{"list.length", Expr{Path: Path{Root: "list", Segments: []any{"length"}}}},
		{"a.b[2].c", Expr{Path: Path{Root: "a", Segments: []any{"b", 2, "c"}}}},
		{" keys(state) ", Expr{Func: "keys", Path: Path{Root: "state"}}},
		{"has(state.foo)", Expr{Func: "has", Path: Path{Root: "state", Segments: []any{"foo"}}}},
		{"len(list)", Expr{Func: "len", Path: Path{Root: "list"}}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := ParseExpr(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseExpr_Errors(t *testing.T) {
	for _, src := range []string{"", ".foo", "state.", "list[x]", "list[-1]", "list[0", "size(state)", "keys(state", "has(state)", "state foo"} {
		t.Run(src, func(t *testing.T) {
			_, err := ParseExpr(src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "R061")
		})
	}
}

func TestExprString(t *testing.T) {
	for _, src := range []string{"state", "a.b[2].c", "keys(state.items)", "has(state.x)"} {
		e, err := ParseExpr(src)
		require.NoError(t, err)
		assert.Equal(t, src, e.String())
	}
}

func TestEval(t *testing.T) {
	rt := reactive.New()
	raw := reactive.FromMap(map[string]any{
		"foo":  1,
		"list": []any{"a", "b"},
		"user": map[string]any{"name": "ada"},
	})
	views := env{
		"state":   rt.Reactive(raw),
		"shallow": rt.ShallowReactive(raw),
	}

	eval := func(src string) any {
		e, err := ParseExpr(src)
		require.NoError(t, err)
		v, err := views.eval(e)
		require.NoError(t, err, src)
		return v
	}

	assert.Equal(t, 1, eval("state.foo"))
	assert.Equal(t, "b", eval("state.list[1]"))
	assert.Equal(t, 2, eval("state.list.length"))
	assert.Equal(t, 2, eval("len(state.list)"))
	assert.Equal(t, 3, eval("len(state)"))
	assert.Equal(t, []any{"foo", "list", "user"}, eval("keys(state)"))
	assert.Equal(t, []any{0, 1}, eval("keys(state.list)"))
	assert.Equal(t, true, eval("has(state.user.name)"))
	assert.Equal(t, false, eval("has(state.missing)"))
	assert.Equal(t, "ada", eval("shallow.user.name"))
	assert.Equal(t, 2, eval("shallow.list.length"))
	assert.Equal(t, []any{"name"}, eval("keys(shallow.user)"))

	_, err := views.eval(Expr{Path: Path{Root: "nope"}})
	assert.Contains(t, err.Error(), "R062")

	e, _ := ParseExpr("state.foo.bar")
	_, err = views.eval(e)
	assert.Contains(t, err.Error(), "R061")
}

func TestFormatValue(t *testing.T) {
	obj := reactive.FromMap(map[string]any{"b": 2, "a": []any{1, nil}})
	rt := reactive.New()

	tests := []struct {
		in   any
		want string
	}{
		{nil, "nil"},
		{"text", "text"},
		{true, "true"},
		{42, "42"},
		{1.5, "1.5"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{[]any{1, "x"}, "[1 x]"},
		{map[string]any{"z": 1, "a": 2}, "{a: 2, z: 1}"},
		{obj, "{a: [1 nil], b: 2}"},
		{rt.Readonly(obj), "{a: [1 nil], b: 2}"},
		{reactive.NewArray(), "[]"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in))
	}
}
