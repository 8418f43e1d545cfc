package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArithmetic_UnaryMinus(t *testing.T) {
	n, err := parseArithmetic("-5 + 2")
	require.NoError(t, err)
	v, err := n.eval(nil)
	require.NoError(t, err)
	assert.Equal(t, -3.0, v)
}

func TestParseArithmetic_Parentheses(t *testing.T) {
	n, err := parseArithmetic("(1 + 2) * 3")
	require.NoError(t, err)
	v, err := n.eval(nil)
	require.NoError(t, err)
	assert.Equal(t, 9.0, v)
}

func TestParseArithmetic_DivisionByZeroFails(t *testing.T) {
	n, err := parseArithmetic("1 / 0")
	require.NoError(t, err)
	_, err = n.eval(nil)
	require.Error(t, err)
}

func TestParseArithmetic_UnboundVariableFails(t *testing.T) {
	n, err := parseArithmetic("x + 1")
	require.NoError(t, err)
	_, err = n.eval(map[string]float64{})
	require.Error(t, err)
}

func TestParseArithmetic_VariableResolvesFromTable(t *testing.T) {
	n, err := parseArithmetic("x + 1")
	require.NoError(t, err)
	v, err := n.eval(map[string]float64{"x": 9})
	require.NoError(t, err)
	assert.Equal(t, 10.0, v)
}

func TestParseArithmetic_TrailingTokensFail(t *testing.T) {
	_, err := parseArithmetic("1 + 2 3")
	require.Error(t, err)
}

func TestParseArithmetic_UnclosedParenFails(t *testing.T) {
	_, err := parseArithmetic("(1 + 2")
	require.Error(t, err)
}
