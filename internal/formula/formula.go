// Package formula evaluates authored growth/buff expressions in a sandboxed
// Go interpreter. The sandbox imports nothing but the jabs package, which
// exposes a read-only snapshot of the owning battler.
package formula

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/traefik/yaegi/interp"
)

// ErrNotFinite is returned when an expression evaluates to NaN or ±Inf.
var ErrNotFinite = errors.New("formula result is not finite")

// Subject is the battler snapshot visible to formulas as `a`.
type Subject struct {
	Level float64
	HP    float64
	MP    float64
	TP    float64
	MaxHP float64
	MaxMP float64
	Atk   float64
	Def   float64
	Mat   float64
	Mdf   float64
	Agi   float64
	Luk   float64
}

// Func is a compiled expression.
type Func func(a Subject, base float64) float64

var sandboxExports = interp.Exports{
	"jabs/jabs": {
		"Subject": reflect.ValueOf((*Subject)(nil)),
	},
}

type compiled struct {
	fn  Func
	err error
}

// Evaluator compiles expressions once and caches the result, including
// compile errors so a broken formula is reported once per expression.
type Evaluator struct {
	mu     sync.Mutex
	interp *interp.Interpreter
	cache  map[string]compiled
}

// NewEvaluator creates an evaluator with an empty cache.
func NewEvaluator() (*Evaluator, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(sandboxExports); err != nil {
		return nil, fmt.Errorf("register sandbox exports: %w", err)
	}
	if _, err := i.Eval(`import "jabs"`); err != nil {
		return nil, fmt.Errorf("import sandbox package: %w", err)
	}
	return &Evaluator{
		interp: i,
		cache:  make(map[string]compiled),
	}, nil
}

// Compile returns the compiled form of expr.
func (e *Evaluator) Compile(expr string) (Func, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.New("empty formula")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if c, ok := e.cache[expr]; ok {
		return c.fn, c.err
	}
	fn, err := e.compile(expr)
	e.cache[expr] = compiled{fn: fn, err: err}
	return fn, err
}

func (e *Evaluator) compile(expr string) (fn Func, err error) {
	defer func() {
		if r := recover(); r != nil {
			fn, err = nil, fmt.Errorf("compile %q: panic: %v", expr, r)
		}
	}()

	src := fmt.Sprintf("func(a jabs.Subject, base float64) float64 { return float64(%s) }", expr)
	v, err := e.interp.Eval(src)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, err)
	}
	raw, ok := v.Interface().(func(Subject, float64) float64)
	if !ok {
		return nil, fmt.Errorf("compile %q: unexpected type %s", expr, v.Type())
	}
	return Func(raw), nil
}

// Eval compiles (or reuses) expr and runs it against a and base.
// Panics raised inside the interpreted code are returned as errors.
func (e *Evaluator) Eval(expr string, a Subject, base float64) (v float64, err error) {
	fn, err := e.Compile(expr)
	if err != nil {
		return 0, err
	}

	defer func() {
		if r := recover(); r != nil {
			v, err = 0, fmt.Errorf("eval %q: panic: %v", expr, r)
		}
	}()

	v = fn(a, base)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("eval %q: %w", expr, ErrNotFinite)
	}
	return v, nil
}
