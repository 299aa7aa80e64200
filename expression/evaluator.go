package expression

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PaesslerAG/gval"
)

// ErrInvalidExpression is the single failure mode of the evaluator.
// Parse errors, evaluation errors, unknown names, exceeded bounds and
// recovered panics all map onto it.
var ErrInvalidExpression = errors.New("invalid expression")

const (
	// MaxExpressionLength bounds parser input.
	MaxExpressionLength = 8192
	// EvalTimeout bounds the wall time of one evaluation.
	EvalTimeout = 2 * time.Second
)

// Lookups is the capability surface domain helpers reach through.
// A nil implementation makes those helpers fail with
// ErrInvalidExpression; the evaluator itself stays pure.
type Lookups interface {
	FxRate(currencyUserCode string, date time.Time) (float64, error)
	Price(instrumentUserCode string, date time.Time) (float64, error)
	AccruedPrice(instrumentUserCode string, date time.Time) (float64, error)
	GenerateUserCode(prefix string) (string, error)
}

type Evaluator struct {
	lang    gval.Language
	lookups Lookups
	timeout time.Duration
}

func NewEvaluator(lookups Lookups) *Evaluator {
	e := &Evaluator{
		lookups: lookups,
		timeout: EvalTimeout,
	}
	e.lang = gval.Full(e.functions()...)
	return e
}

// SafeEval evaluates expr against the names map. Deterministic and
// side-effect free: the only state a formula can observe is names and
// the injected lookups.
func (e *Evaluator) SafeEval(expr string, names map[string]interface{}) (interface{}, error) {
	value, _, err := e.eval(expr, names, nil)
	return value, err
}

// SafeEvalWithLogs additionally captures output of the formula's
// print(...) calls, one line per call.
func (e *Evaluator) SafeEvalWithLogs(expr string, names map[string]interface{}) (interface{}, string, error) {
	var log strings.Builder
	value, _, err := e.eval(expr, names, &log)
	return value, log.String(), err
}

// EvalBool evaluates a condition expression; a nil or empty expression
// is vacuously true (unconditional actions).
func (e *Evaluator) EvalBool(expr *string, names map[string]interface{}) (bool, error) {
	if expr == nil || strings.TrimSpace(*expr) == "" {
		return true, nil
	}
	v, err := e.SafeEval(*expr, names)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: condition is not boolean", ErrInvalidExpression)
	}
	return b, nil
}

func (e *Evaluator) eval(expr string, names map[string]interface{}, log *strings.Builder) (value interface{}, duration time.Duration, err error) {
	if len(expr) > MaxExpressionLength {
		return nil, 0, fmt.Errorf("%w: expression too long", ErrInvalidExpression)
	}

	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = fmt.Errorf("%w: %v", ErrInvalidExpression, r)
		}
	}()

	evaluable, err := e.lang.NewEvaluable(expr)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}

	params := make(map[string]interface{}, len(names)+1)
	for k, v := range names {
		params[k] = v
	}
	if log != nil {
		params["print"] = func(args ...interface{}) (interface{}, error) {
			log.WriteString(fmt.Sprintln(args...))
			return nil, nil
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	started := time.Now()
	value, err = evaluable(ctx, params)
	duration = time.Since(started)

	if err != nil {
		return nil, duration, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	if ctx.Err() != nil {
		return nil, duration, fmt.Errorf("%w: evaluation timed out", ErrInvalidExpression)
	}

	return value, duration, nil
}
