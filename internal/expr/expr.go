// Package expr compiles calc(...) expressions referencing fragment timing
// variables (#fragmentId.time.{start|end|duration}) into thunks evaluated
// later against a TimingEnv (spec.md §4.2).
package expr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	videoerrors "github.com/videocraft/compiler/internal/pkg/errors"
)

// Env resolves a fragment timing property to a millisecond value. The
// sequence compiler's TimingEnv implements this; kept as a narrow interface
// here to avoid an import cycle between expr and sequence.
type Env interface {
	Lookup(fragmentID, dotPath string) (float64, bool)
}

// varRef records where a substituted variable came from, so evaluation can
// walk back to the original fragment id + property path.
type varRef struct {
	fragmentID string
	dotPath    string
}

// Thunk is a compiled calc() expression: the original source text plus a
// parsed AST and the variable-to-fragment-property bindings table.
type Thunk struct {
	Source string
	ast     node
	vars    map[string]varRef
}

var fragRefRegex = regexp.MustCompile(`#([A-Za-z_][A-Za-z0-9_-]*)\.([A-Za-z0-9_.]+)`)

// IsCalc reports whether a raw property string is a calc(...) expression.
func IsCalc(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "calc(")
}

// Compile parses a calc(...) expression into a Thunk. Input without the
// calc( ... ) wrapper is rejected with an error.
func Compile(raw string) (*Thunk, error) {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "calc(") {
		return nil, fmt.Errorf("not a calc() expression: %q", raw)
	}
	inner, err := stripCalcWrapper(s)
	if err != nil {
		return nil, videoerrors.ExpressionParseError(raw, err)
	}

	vars := map[string]varRef{}
	substituted := fragRefRegex.ReplaceAllStringFunc(inner, func(match string) string {
		groups := fragRefRegex.FindStringSubmatch(match)
		fragID, dotPath := groups[1], groups[2]
		varName := fragID + "_" + strings.ReplaceAll(dotPath, ".", "_")
		vars[varName] = varRef{fragmentID: fragID, dotPath: dotPath}
		return varName
	})

	ast, err := parseArithmetic(substituted)
	if err != nil {
		return nil, videoerrors.ExpressionParseError(raw, err)
	}

	return &Thunk{Source: raw, ast: ast, vars: vars}, nil
}

// stripCalcWrapper removes the leading "calc(" and its matching ")".
func stripCalcWrapper(s string) (string, error) {
	if !strings.HasPrefix(s, "calc(") {
		return "", fmt.Errorf("missing calc( prefix")
	}
	body := s[len("calc("):]

	depth := 1
	for i, r := range body {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return body[:i], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced parentheses in %q", s)
}

// Eval evaluates the thunk against an Env, returning the result in
// milliseconds.
func (t *Thunk) Eval(env Env) (float64, error) {
	values := make(map[string]float64, len(t.vars))
	for varName, ref := range t.vars {
		v, ok := env.Lookup(ref.fragmentID, ref.dotPath)
		if !ok {
			return 0, videoerrors.ExpressionUnresolved(t.Source,
				fmt.Sprintf("fragment %q has no resolved %q", ref.fragmentID, ref.dotPath))
		}
		values[varName] = v
	}
	return t.ast.eval(values)
}

// ConstExpr wraps a plain integer as a trivial always-resolved Thunk-like
// value for ParseOffset's non-calc branch (spec.md §4.1 parseOffset).
type ConstExpr struct {
	Value int
}

func (c ConstExpr) Eval(Env) (float64, error) { return float64(c.Value), nil }

// Expression is the sum type spec.md §9 calls for: overlayLeft is either a
// constant int or a lazy Thunk.
type Expression interface {
	Eval(env Env) (float64, error)
}

// ParseOffset parses an -offset-start/-offset-end value: calc(...) strings
// compile to a Thunk, everything else is a constant-int expression.
func ParseOffset(s string) (Expression, error) {
	s = strings.TrimSpace(s)
	if IsCalc(s) {
		return Compile(s)
	}
	// Non-calc input is read as a bare integer of milliseconds ("500");
	// anything else, including unit-suffixed specs like "500ms", yields 0.
	// Callers needing the decoder's ParseTime semantics parse first and
	// pass the resulting int through ConstExpr directly.
	v, err := strconv.Atoi(s)
	if err != nil {
		return ConstExpr{Value: 0}, nil
	}
	return ConstExpr{Value: v}, nil
}

// Add folds two expressions into a new lazy sum, used by overlay-pair
// normalization when either side is non-constant (spec.md §4.4): produces
// the equivalent of calc(<left> + <right>).
func Add(a, b Expression) Expression {
	ca, aConst := a.(ConstExpr)
	cb, bConst := b.(ConstExpr)
	if aConst && bConst {
		return ConstExpr{Value: ca.Value + cb.Value}
	}
	return sumExpr{a: a, b: b}
}

type sumExpr struct {
	a, b Expression
}

func (s sumExpr) Eval(env Env) (float64, error) {
	av, err := s.a.Eval(env)
	if err != nil {
		return 0, err
	}
	bv, err := s.b.Eval(env)
	if err != nil {
		return 0, err
	}
	return av + bv, nil
}
