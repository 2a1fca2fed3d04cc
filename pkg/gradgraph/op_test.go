package gradgraph

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewOp tests construction of a function-backed operation.
func TestNewOp(t *testing.T) {
	square := NewOp("square", 1,
		func(in []float64) float64 { return in[0] * in[0] },
		func(in []float64, wrt int) float64 { return 2 * in[0] },
	)

	assert.Equal(t, "square", square.Name())
	assert.Equal(t, 1, square.Arity())
	assert.Equal(t, 9.0, square.Apply([]float64{3}))
	assert.Equal(t, 6.0, square.Partial([]float64{3}, 0))
}

// TestNewOp_Validation tests that misdeclared operations panic.
func TestNewOp_Validation(t *testing.T) {
	apply := func(in []float64) float64 { return 0 }
	partial := func(in []float64, wrt int) float64 { return 0 }

	t.Run("empty name", func(t *testing.T) {
		assert.PanicsWithError(t, "gradgraph: op name cannot be empty", func() {
			NewOp("", 1, apply, partial)
		})
	})

	t.Run("arity zero", func(t *testing.T) {
		assert.PanicsWithError(t,
			`gradgraph: op "f" declares arity 0: operation arity must be 1 or 2`,
			func() { NewOp("f", 0, apply, partial) })
	})

	t.Run("arity three", func(t *testing.T) {
		assert.PanicsWithError(t,
			`gradgraph: op "f" declares arity 3: operation arity must be 1 or 2`,
			func() { NewOp("f", 3, apply, partial) })
	})

	t.Run("nil forward rule", func(t *testing.T) {
		assert.PanicsWithError(t, `gradgraph: op "f": nil rule`, func() {
			NewOp("f", 1, nil, partial)
		})
	})

	t.Run("nil derivative rule", func(t *testing.T) {
		assert.PanicsWithError(t, `gradgraph: op "f": nil rule`, func() {
			NewOp("f", 1, apply, nil)
		})
	})
}

// TestBuiltinOps tests the forward and derivative rules of every builtin.
func TestBuiltinOps(t *testing.T) {
	testCases := []struct {
		name     string
		in       []float64
		want     float64
		partials []float64
	}{
		{"add", []float64{2, 3}, 5, []float64{1, 1}},
		{"sub", []float64{2, 3}, -1, []float64{1, -1}},
		{"mul", []float64{2, 3}, 6, []float64{3, 2}},
		{"div", []float64{3, 2}, 1.5, []float64{0.5, -0.75}},
		{"neg", []float64{2}, -2, []float64{-1}},
		{"exp", []float64{1}, math.E, []float64{math.E}},
		{"log", []float64{2}, math.Ln2, []float64{0.5}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			op, ok := LookupOp(tc.name)
			require.True(t, ok, "builtin %q must be registered", tc.name)

			assert.Equal(t, tc.name, op.Name())
			assert.Equal(t, len(tc.in), op.Arity())
			assert.InDelta(t, tc.want, op.Apply(tc.in), 1e-12)

			for wrt, want := range tc.partials {
				assert.InDelta(t, want, op.Partial(tc.in, wrt), 1e-12,
					"partial wrt input %d", wrt)
			}
		})
	}
}

// TestRegisterOp tests registering and resolving a custom operation.
func TestRegisterOp(t *testing.T) {
	cube := NewOp("test_cube", 1,
		func(in []float64) float64 { return in[0] * in[0] * in[0] },
		func(in []float64, wrt int) float64 { return 3 * in[0] * in[0] },
	)
	RegisterOp(cube)

	got, ok := LookupOp("test_cube")
	require.True(t, ok)
	assert.Equal(t, 8.0, got.Apply([]float64{2}))

	// Re-registration replaces the previous entry.
	flat := NewOp("test_cube", 1,
		func(in []float64) float64 { return 0 },
		func(in []float64, wrt int) float64 { return 0 },
	)
	RegisterOp(flat)

	got, ok = LookupOp("test_cube")
	require.True(t, ok)
	assert.Equal(t, 0.0, got.Apply([]float64{2}))
}

// TestRegisterOp_Validation tests that invalid registrations panic.
func TestRegisterOp_Validation(t *testing.T) {
	assert.PanicsWithError(t, "gradgraph: register nil op", func() {
		RegisterOp(nil)
	})

	assert.PanicsWithError(t, "gradgraph: op name cannot be empty", func() {
		RegisterOp(arityOp{name: "", arity: 1})
	})
}

// TestLookupOp_Unknown tests resolution of an unregistered name.
func TestLookupOp_Unknown(t *testing.T) {
	_, ok := LookupOp("no_such_op")
	assert.False(t, ok)
}

// TestOps tests the registered-name listing.
func TestOps(t *testing.T) {
	names := Ops()

	assert.True(t, sort.StringsAreSorted(names), "names must be sorted")
	for _, builtin := range []string{"add", "sub", "mul", "div", "neg", "exp", "log"} {
		assert.Contains(t, names, builtin)
	}
}

// TestCustomOp_InGraph tests a registered operation end to end.
func TestCustomOp_InGraph(t *testing.T) {
	square := NewOp("test_square", 1,
		func(in []float64) float64 { return in[0] * in[0] },
		func(in []float64, wrt int) float64 { return 2 * in[0] },
	)
	RegisterOp(square)

	g := New()
	x := g.Variable("x").SetValue(4)
	y := g.Apply(square, x)

	out, err := g.Forward()
	require.NoError(t, err)
	assert.Equal(t, 16.0, out)

	require.NoError(t, g.Backward())
	requireDeriv(t, x, 8)
	requireDeriv(t, y, 1)
}
