package fieldexpr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval(t *testing.T) {
	for src, want := range map[string]float64{
		"1 + 2 * 3":             7,
		"(1 + 2) * 3":           9,
		"2 ^ 3 ^ 2":             512,
		"-x^2":                  -4,
		"--x":                   2,
		"x - -1":                3,
		"y / 2":                 1.5,
		"1.5e1 + .5":            15.5,
		"sin(pi / 2)":           1,
		"max(x, y, z)":          3,
		"min(x, y, z) + abs(z)": 0,
		"sqrt(x*x + y*y)":       math.Sqrt(13),
		"exp(log(3))":           3,
		"cos(x) ^ 2 + sin(x)^2": 1,
		"X + Y":                 5,
		"2^-1":                  0.5,
	} {
		e, err := Compile(src)
		require.NoError(t, err, src)
		assert.InDelta(t, want, e.Eval(2, 3, -1), 1e-12, src)
	}
}

func TestCompileErrors(t *testing.T) {
	for _, src := range []string{"", "1 +", "(x", "sin x", "x $ y"} {
		_, err := Compile(src)
		assert.Error(t, err, src)
	}
	for _, src := range []string{"w + 1", "foo(x)", "sin(x) * q"} {
		_, err := Compile(src)
		assert.ErrorIs(t, err, ErrUnknownName, src)
	}
	_, err := Compile("sin(x, y)")
	assert.Error(t, err)
	_, err = Compile("max()")
	assert.Error(t, err)
	assert.Panics(t, func() { MustCompile("(") })
}

func TestSample(t *testing.T) {
	e := MustCompile("x + 10*y + 100*z")
	assert.Equal(t, "x + 10*y + 100*z", e.String())
	assert.Equal(t, []float64{321, 0}, e.Sample([][3]float64{{1, 2, 3}, {0, 0, 0}}))
}
