package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finastack/folio/models"
)

func strPtr(s string) *string { return &s }

func inputType(inputs ...models.TransactionTypeInput) *models.TransactionType {
	return &models.TransactionType{ID: 1, Inputs: inputs}
}

func TestValidateInputsMissingRequired(t *testing.T) {
	tt := inputType(models.TransactionTypeInput{ID: 1, Name: "size", ValueType: models.InputValueNumber})

	_, err := ValidateInputs(tt, map[string]interface{}{})
	require.Error(t, err)

	var verr *InputValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "size", verr.InputName)
}

func TestValidateInputsExprFilledMayBeAbsent(t *testing.T) {
	tt := inputType(models.TransactionTypeInput{
		ID: 1, Name: "trade_date", ValueType: models.InputValueDate, ValueExpr: strPtr("now()"),
	})

	bindings, err := ValidateInputs(tt, map[string]interface{}{})
	require.NoError(t, err)
	assert.Empty(t, bindings)
}

func TestValidateInputsTypes(t *testing.T) {
	tt := inputType(
		models.TransactionTypeInput{ID: 1, Name: "size", ValueType: models.InputValueNumber},
		models.TransactionTypeInput{ID: 2, Name: "note", ValueType: models.InputValueString},
		models.TransactionTypeInput{ID: 3, Name: "trade_date", ValueType: models.InputValueDate},
	)

	bindings, err := ValidateInputs(tt, map[string]interface{}{
		"size":       10,
		"note":       "hello",
		"trade_date": "2024-01-10",
	})
	require.NoError(t, err)
	require.Len(t, bindings, 3)

	require.NotNil(t, bindings[0].ValueFloat)
	assert.EqualValues(t, 10, *bindings[0].ValueFloat)
	require.NotNil(t, bindings[1].ValueString)
	assert.Equal(t, "hello", *bindings[1].ValueString)
	require.NotNil(t, bindings[2].ValueDate)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), *bindings[2].ValueDate)
}

func TestValidateInputsTypeMismatch(t *testing.T) {
	tt := inputType(models.TransactionTypeInput{ID: 1, Name: "size", ValueType: models.InputValueNumber})

	_, err := ValidateInputs(tt, map[string]interface{}{"size": "plenty"})
	require.Error(t, err)

	var verr *InputValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "number")
}

func TestValidateInputsRelation(t *testing.T) {
	tt := inputType(models.TransactionTypeInput{
		ID: 1, Name: "portfolio", ValueType: models.InputValueRelation, ContentType: strPtr("portfolios.portfolio"),
	})

	bindings, err := ValidateInputs(tt, map[string]interface{}{
		"portfolio": Relation{ID: 21, ContentType: "portfolios.portfolio"},
	})
	require.NoError(t, err)
	require.Len(t, bindings, 1)
	require.NotNil(t, bindings[0].ValueRelationID)
	assert.EqualValues(t, 21, *bindings[0].ValueRelationID)

	// content type must match the declaration
	_, err = ValidateInputs(tt, map[string]interface{}{
		"portfolio": Relation{ID: 21, ContentType: "accounts.account"},
	})
	require.Error(t, err)
}
