package expression

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLookups struct {
	fxRate  float64
	price   float64
	accrued float64
	err     error
}

func (s *stubLookups) FxRate(string, time.Time) (float64, error)       { return s.fxRate, s.err }
func (s *stubLookups) Price(string, time.Time) (float64, error)        { return s.price, s.err }
func (s *stubLookups) AccruedPrice(string, time.Time) (float64, error) { return s.accrued, s.err }
func (s *stubLookups) GenerateUserCode(prefix string) (string, error) {
	return prefix + "_abc123", s.err
}

func TestSafeEvalArithmetic(t *testing.T) {
	e := NewEvaluator(nil)

	v, err := e.SafeEval("2 * (3 + 4)", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 14, v)

	v, err = e.SafeEval("principal * fx", map[string]interface{}{
		"principal": 100.0,
		"fx":        1.25,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 125, v)
}

func TestSafeEvalParseErrors(t *testing.T) {
	e := NewEvaluator(nil)

	_, err := e.SafeEval("2 +* 3", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidExpression)

	_, err = e.SafeEval("1 "+strings.Repeat("+ 1 ", MaxExpressionLength/4), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidExpression)
}

func TestSafeEvalNumericHelpers(t *testing.T) {
	e := NewEvaluator(nil)

	cases := map[string]float64{
		"round(3.14159, 2)": 3.14,
		"round(2.5)":        3,
		"trunc(2.9)":        2,
		"abs(-4)":           4,
		"min(2, 7)":         2,
		"max(2, 7)":         7,
	}
	for expr, expected := range cases {
		v, err := e.SafeEval(expr, nil)
		require.NoError(t, err, expr)
		assert.EqualValues(t, expected, v, expr)
	}

	v, err := e.SafeEval(`iff(size > 0, "long", "short")`, map[string]interface{}{"size": 5.0})
	require.NoError(t, err)
	assert.Equal(t, "long", v)
}

func TestSafeEvalStringHelpers(t *testing.T) {
	e := NewEvaluator(nil)

	v, err := e.SafeEval(`upper("usd") + "_" + lower("EUR")`, nil)
	require.NoError(t, err)
	assert.Equal(t, "USD_eur", v)

	v, err = e.SafeEval(`replace("a-b-c", "-", "/")`, nil)
	require.NoError(t, err)
	assert.Equal(t, "a/b/c", v)

	v, err = e.SafeEval(`join(split("a,b,c", ","), ";")`, nil)
	require.NoError(t, err)
	assert.Equal(t, "a;b;c", v)

	v, err = e.SafeEval(`parse_number(" 3.5 ")`, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3.5, v)
}

func TestSafeEvalDateHelpers(t *testing.T) {
	e := NewEvaluator(nil)

	v, err := e.SafeEval(`format_date(add_days(date(2024, 1, 30), 3))`, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-02", v)

	// friday plus two workdays lands on tuesday
	v, err = e.SafeEval(`format_date(add_workdays(parse_date("2024-01-05"), 2))`, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-09", v)

	// saturday rolls back to friday
	v, err = e.SafeEval(`format_date(last_business_day(parse_date("2024-01-06")))`, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", v)

	v, err = e.SafeEval(`days_diff(date(2024, 1, 1), date(2024, 1, 11))`, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 10, v)

	v, err = e.SafeEval(`get_quarter(date(2024, 8, 15))`, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, v)
}

func TestSimplePriceInterpolation(t *testing.T) {
	e := NewEvaluator(nil)

	v, err := e.SafeEval(
		`simple_price(date(2024, 1, 6), date(2024, 1, 1), 100, date(2024, 1, 11), 110)`, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 105, v)

	// coincident anchor dates fall back to the first value
	v, err = e.SafeEval(
		`simple_price(date(2024, 1, 6), date(2024, 1, 1), 100, date(2024, 1, 1), 110)`, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 100, v)
}

func TestLookupFunctions(t *testing.T) {
	e := NewEvaluator(&stubLookups{fxRate: 1.1, price: 101.5, accrued: 0.75})

	v, err := e.SafeEval(`get_fx_rate("EUR", date(2024, 1, 10))`, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1.1, v)

	v, err = e.SafeEval(`get_price("bond_1", date(2024, 1, 10))`, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 101.5, v)

	v, err = e.SafeEval(`get_accrued_price("bond_1", date(2024, 1, 10))`, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0.75, v)

	v, err = e.SafeEval(`generate_user_code("bond")`, nil)
	require.NoError(t, err)
	assert.Equal(t, "bond_abc123", v)
}

func TestLookupFunctionsWithoutLookups(t *testing.T) {
	e := NewEvaluator(nil)

	_, err := e.SafeEval(`get_fx_rate("EUR", date(2024, 1, 10))`, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidExpression)
}

func TestLookupErrorsWrapped(t *testing.T) {
	e := NewEvaluator(&stubLookups{err: fmt.Errorf("no history row")})

	_, err := e.SafeEval(`get_price("bond_1", date(2024, 1, 10))`, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidExpression)
	assert.Contains(t, err.Error(), "no history row")
}

func TestEvalBool(t *testing.T) {
	e := NewEvaluator(nil)

	// nil and blank conditions are vacuously true
	ok, err := e.EvalBool(nil, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	blank := "   "
	ok, err = e.EvalBool(&blank, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	expr := "size > 10"
	ok, err = e.EvalBool(&expr, map[string]interface{}{"size": 5.0})
	require.NoError(t, err)
	assert.False(t, ok)

	notBool := "1 + 1"
	_, err = e.EvalBool(&notBool, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidExpression)
}

func TestSafeEvalWithLogs(t *testing.T) {
	e := NewEvaluator(nil)

	_, logs, err := e.SafeEvalWithLogs(`print("checkpoint", 42)`, nil)
	require.NoError(t, err)
	assert.Equal(t, "checkpoint 42\n", logs)
}

func TestUnknownNameFails(t *testing.T) {
	e := NewEvaluator(nil)

	_, err := e.SafeEval("missing_name + 1", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidExpression)
}
