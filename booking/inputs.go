package booking

import (
	"fmt"
	"time"

	"github.com/finastack/folio/models"
)

// ValidateInputs checks the supplied values against the ordered
// transaction-type input declarations and materializes the bindings.
// Inputs with a value_expr may be absent; everything else is required.
func ValidateInputs(transactionType *models.TransactionType, values map[string]interface{}) ([]models.ComplexTransactionInput, error) {
	bindings := make([]models.ComplexTransactionInput, 0, len(transactionType.Inputs))

	for i := range transactionType.Inputs {
		input := &transactionType.Inputs[i]

		value, present := values[input.Name]
		if !present || value == nil {
			if input.ValueExpr != nil {
				continue // filled by expression during booking
			}
			return nil, &InputValidationError{InputName: input.Name, Reason: "missing required input"}
		}

		binding := models.ComplexTransactionInput{
			TransactionTypeInputID: input.ID,
		}

		switch input.ValueType {
		case models.InputValueNumber:
			f, ok := asFloat(value)
			if !ok {
				return nil, &InputValidationError{InputName: input.Name, Reason: "expected a number"}
			}
			binding.ValueFloat = &f

		case models.InputValueString:
			s, ok := value.(string)
			if !ok {
				return nil, &InputValidationError{InputName: input.Name, Reason: "expected a string"}
			}
			binding.ValueString = &s

		case models.InputValueDate:
			d, ok := asDate(value)
			if !ok {
				return nil, &InputValidationError{InputName: input.Name, Reason: "expected a date"}
			}
			binding.ValueDate = &d

		case models.InputValueRelation:
			id, contentType, ok := asRelation(value, input.ContentType)
			if !ok {
				reason := "expected a relation"
				if input.ContentType != nil {
					reason = fmt.Sprintf("expected a relation of %s", *input.ContentType)
				}
				return nil, &InputValidationError{InputName: input.Name, Reason: reason}
			}
			binding.ValueRelationID = &id
			binding.ValueRelationType = &contentType

		default:
			return nil, &InputValidationError{InputName: input.Name, Reason: "unknown value type"}
		}

		bindings = append(bindings, binding)
	}

	return bindings, nil
}

func asFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}

func asDate(v interface{}) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		d, err := time.Parse("2006-01-02", x)
		if err != nil {
			return time.Time{}, false
		}
		return d, true
	}
	return time.Time{}, false
}

// Relation is how callers pass relation input values: an id plus the
// content type it refers to.
type Relation struct {
	ID          uint64
	ContentType string
	UserCode    string
}

func asRelation(v interface{}, wantContentType *string) (uint64, string, bool) {
	rel, ok := v.(Relation)
	if !ok {
		if p, isPtr := v.(*Relation); isPtr {
			rel, ok = *p, true
		}
	}
	if !ok {
		return 0, "", false
	}
	if wantContentType != nil && rel.ContentType != *wantContentType {
		return 0, "", false
	}
	return rel.ID, rel.ContentType, true
}
