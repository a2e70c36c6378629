package fieldexpr

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

var ErrUnknownName = errors.New("fieldexpr: unknown name")

type function struct {
	arity int // -1 accepts one or more arguments
	eval  func(args []float64) float64
}

var functions = map[string]function{
	"sin":  {1, func(a []float64) float64 { return math.Sin(a[0]) }},
	"cos":  {1, func(a []float64) float64 { return math.Cos(a[0]) }},
	"tan":  {1, func(a []float64) float64 { return math.Tan(a[0]) }},
	"exp":  {1, func(a []float64) float64 { return math.Exp(a[0]) }},
	"log":  {1, func(a []float64) float64 { return math.Log(a[0]) }},
	"sqrt": {1, func(a []float64) float64 { return math.Sqrt(a[0]) }},
	"abs":  {1, func(a []float64) float64 { return math.Abs(a[0]) }},
	"min": {-1, func(a []float64) float64 {
		m := a[0]
		for _, v := range a[1:] {
			m = math.Min(m, v)
		}
		return m
	}},
	"max": {-1, func(a []float64) float64 {
		m := a[0]
		for _, v := range a[1:] {
			m = math.Max(m, v)
		}
		return m
	}},
}

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// Expr is a compiled expression, safe for concurrent use.
type Expr struct {
	src  string
	root *Expression
}

// Compile parses src and resolves every name in it.
func Compile(src string) (*Expr, error) {
	root, err := parseExpression.ParseString("", src)
	if err != nil {
		return nil, errors.Wrapf(err, "fieldexpr: parsing %q", src)
	}
	if err = root.check(); err != nil {
		return nil, errors.Wrapf(err, "fieldexpr: compiling %q", src)
	}
	return &Expr{src: src, root: root}, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(src string) *Expr {
	e, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Expr) String() string { return e.src }

// Eval evaluates the expression at point (x, y, z).
func (e *Expr) Eval(x, y, z float64) float64 {
	return e.root.eval(&env{x: x, y: y, z: z})
}

// Sample evaluates the expression at every point.
func (e *Expr) Sample(points [][3]float64) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = e.Eval(p[0], p[1], p[2])
	}
	return out
}

type env struct{ x, y, z float64 }

func (v *env) lookup(name string) (float64, bool) {
	switch strings.ToLower(name) {
	case "x":
		return v.x, true
	case "y":
		return v.y, true
	case "z":
		return v.z, true
	}
	c, ok := constants[strings.ToLower(name)]
	return c, ok
}

func (x *Expression) eval(v *env) float64 {
	r := x.Left.eval(v)
	for _, t := range x.Right {
		switch t.Op {
		case "+":
			r += t.Term.eval(v)
		case "-":
			r -= t.Term.eval(v)
		}
	}
	return r
}

func (t *Term) eval(v *env) float64 {
	r := t.Left.eval(v)
	for _, f := range t.Right {
		switch f.Op {
		case "*":
			r *= f.Factor.eval(v)
		case "/":
			r /= f.Factor.eval(v)
		}
	}
	return r
}

func (f *Factor) eval(v *env) float64 {
	r := f.Power.eval(v)
	for _, s := range f.Signs {
		if s == "-" {
			r = -r
		}
	}
	return r
}

func (p *Power) eval(v *env) float64 {
	b := p.Base.eval(v)
	if p.Exponent == nil {
		return b
	}
	return math.Pow(b, p.Exponent.eval(v))
}

func (p *Primary) eval(v *env) float64 {
	switch {
	case p.Number != nil:
		return *p.Number
	case p.Var != nil:
		r, _ := v.lookup(*p.Var)
		return r
	case p.Call != nil:
		args := make([]float64, len(p.Call.Args))
		for i, a := range p.Call.Args {
			args[i] = a.eval(v)
		}
		return functions[strings.ToLower(p.Call.Name)].eval(args)
	}
	return p.Sub.eval(v)
}

func (x *Expression) check() error {
	if err := x.Left.check(); err != nil {
		return err
	}
	for _, t := range x.Right {
		if err := t.Term.check(); err != nil {
			return err
		}
	}
	return nil
}

func (t *Term) check() error {
	if err := t.Left.check(); err != nil {
		return err
	}
	for _, f := range t.Right {
		if err := f.Factor.check(); err != nil {
			return err
		}
	}
	return nil
}

func (f *Factor) check() error {
	if err := f.Power.Base.check(); err != nil {
		return err
	}
	if f.Power.Exponent != nil {
		return f.Power.Exponent.check()
	}
	return nil
}

func (p *Primary) check() error {
	switch {
	case p.Var != nil:
		if _, ok := (&env{}).lookup(*p.Var); !ok {
			return fmt.Errorf("%w: variable %q", ErrUnknownName, *p.Var)
		}
	case p.Call != nil:
		fn, ok := functions[strings.ToLower(p.Call.Name)]
		if !ok {
			return fmt.Errorf("%w: function %q", ErrUnknownName, p.Call.Name)
		}
		n := len(p.Call.Args)
		if (fn.arity >= 0 && n != fn.arity) || n == 0 {
			return fmt.Errorf("fieldexpr: %s takes %d argument(s), got %d", p.Call.Name, fn.arity, n)
		}
		for _, a := range p.Call.Args {
			if err := a.check(); err != nil {
				return err
			}
		}
	case p.Sub != nil:
		return p.Sub.check()
	}
	return nil
}
