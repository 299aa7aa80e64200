package expression

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/gval"
)

const DateLayout = "2006-01-02"

// functions is the fixed helper catalog exposed into every formula.
// Additions are non-breaking; removals are.
func (e *Evaluator) functions() []gval.Language {
	return []gval.Language{
		gval.Function("iff", func(test bool, a, b interface{}) interface{} {
			if test {
				return a
			}
			return b
		}),
		gval.Function("round", e.fnRound),
		gval.Function("trunc", func(a interface{}) (float64, error) {
			f, err := toFloat(a)
			if err != nil {
				return 0, err
			}
			return math.Trunc(f), nil
		}),
		gval.Function("abs", func(a interface{}) (float64, error) {
			f, err := toFloat(a)
			if err != nil {
				return 0, err
			}
			return math.Abs(f), nil
		}),
		gval.Function("min", func(a, b interface{}) (float64, error) {
			x, err := toFloat(a)
			if err != nil {
				return 0, err
			}
			y, err := toFloat(b)
			if err != nil {
				return 0, err
			}
			return math.Min(x, y), nil
		}),
		gval.Function("max", func(a, b interface{}) (float64, error) {
			x, err := toFloat(a)
			if err != nil {
				return 0, err
			}
			y, err := toFloat(b)
			if err != nil {
				return 0, err
			}
			return math.Max(x, y), nil
		}),
		gval.Function("isclose", func(a, b interface{}) (bool, error) {
			x, err := toFloat(a)
			if err != nil {
				return false, err
			}
			y, err := toFloat(b)
			if err != nil {
				return false, err
			}
			return math.Abs(x-y) <= 1e-9*math.Max(math.Abs(x), math.Abs(y)), nil
		}),

		gval.Function("upper", strings.ToUpper),
		gval.Function("lower", strings.ToLower),
		gval.Function("contains", strings.Contains),
		gval.Function("replace", func(text, old, new string) string {
			return strings.ReplaceAll(text, old, new)
		}),
		gval.Function("strip", strings.TrimSpace),
		gval.Function("join", func(items []interface{}, sep string) string {
			parts := make([]string, 0, len(items))
			for _, it := range items {
				parts = append(parts, fmt.Sprint(it))
			}
			return strings.Join(parts, sep)
		}),
		gval.Function("split", func(text, sep string) []interface{} {
			parts := strings.Split(text, sep)
			out := make([]interface{}, len(parts))
			for i, p := range parts {
				out[i] = p
			}
			return out
		}),
		gval.Function("str", func(a interface{}) string {
			if d, ok := a.(time.Time); ok {
				return d.Format(DateLayout)
			}
			return fmt.Sprint(a)
		}),
		gval.Function("parse_number", func(a string) (float64, error) {
			return strconv.ParseFloat(strings.TrimSpace(a), 64)
		}),

		gval.Function("now", func() time.Time {
			return time.Now().UTC().Truncate(24 * time.Hour)
		}),
		gval.Function("date", func(year, month, day float64) time.Time {
			return time.Date(int(year), time.Month(int(month)), int(day), 0, 0, 0, 0, time.UTC)
		}),
		gval.Function("parse_date", func(s string) (time.Time, error) {
			return time.Parse(DateLayout, s)
		}),
		gval.Function("format_date", func(d time.Time) string {
			return d.Format(DateLayout)
		}),
		gval.Function("add_days", func(d time.Time, days float64) time.Time {
			return d.AddDate(0, 0, int(days))
		}),
		gval.Function("add_weeks", func(d time.Time, weeks float64) time.Time {
			return d.AddDate(0, 0, int(weeks)*7)
		}),
		gval.Function("add_workdays", addWorkdays),
		gval.Function("days_diff", func(a, b time.Time) float64 {
			return b.Sub(a).Hours() / 24
		}),
		gval.Function("get_year", func(d time.Time) float64 { return float64(d.Year()) }),
		gval.Function("get_month", func(d time.Time) float64 { return float64(int(d.Month())) }),
		gval.Function("get_quarter", func(d time.Time) float64 {
			return float64((int(d.Month())-1)/3 + 1)
		}),
		gval.Function("last_business_day", lastBusinessDay),

		gval.Function("simple_price", simplePrice),
		gval.Function("get_fx_rate", e.fnGetFxRate),
		gval.Function("get_price", e.fnGetPrice),
		gval.Function("get_accrued_price", e.fnGetAccruedPrice),
		gval.Function("generate_user_code", e.fnGenerateUserCode),
	}
}

func (e *Evaluator) fnRound(args ...interface{}) (float64, error) {
	if len(args) == 0 || len(args) > 2 {
		return 0, fmt.Errorf("round expects 1 or 2 arguments")
	}
	f, err := toFloat(args[0])
	if err != nil {
		return 0, err
	}
	ndigits := 0.0
	if len(args) == 2 {
		if ndigits, err = toFloat(args[1]); err != nil {
			return 0, err
		}
	}
	pow := math.Pow(10, ndigits)
	return math.Round(f*pow) / pow, nil
}

func (e *Evaluator) fnGetFxRate(currency string, date time.Time) (float64, error) {
	if e.lookups == nil {
		return 0, fmt.Errorf("fx lookups are not available")
	}
	return e.lookups.FxRate(currency, date)
}

func (e *Evaluator) fnGetPrice(instrument string, date time.Time) (float64, error) {
	if e.lookups == nil {
		return 0, fmt.Errorf("price lookups are not available")
	}
	return e.lookups.Price(instrument, date)
}

func (e *Evaluator) fnGetAccruedPrice(instrument string, date time.Time) (float64, error) {
	if e.lookups == nil {
		return 0, fmt.Errorf("price lookups are not available")
	}
	return e.lookups.AccruedPrice(instrument, date)
}

func (e *Evaluator) fnGenerateUserCode(prefix string) (string, error) {
	if e.lookups == nil {
		return "", fmt.Errorf("user code generation is not available")
	}
	return e.lookups.GenerateUserCode(prefix)
}

// simplePrice linearly interpolates a value between two dated points.
func simplePrice(date, date1 time.Time, value1 float64, date2 time.Time, value2 float64) (float64, error) {
	span := date2.Sub(date1).Hours() / 24
	if span == 0 {
		return value1, nil
	}
	elapsed := date.Sub(date1).Hours() / 24
	return value1 + (value2-value1)*elapsed/span, nil
}

func addWorkdays(d time.Time, workdays float64) time.Time {
	n := int(workdays)
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}
	for n > 0 {
		d = d.AddDate(0, 0, step)
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n--
		}
	}
	return d
}

func lastBusinessDay(d time.Time) time.Time {
	for {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			return d
		}
		d = d.AddDate(0, 0, -1)
	}
}

func toFloat(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(x), 64)
	}
	return 0, fmt.Errorf("value %v is not numeric", v)
}
