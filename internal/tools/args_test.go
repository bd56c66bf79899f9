package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpulse/pkg/errors"
)

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "AAPL", NormalizeSymbol(" aapl "))
	assert.Equal(t, "MSFT", NormalizeSymbol("MSFT"))
	assert.Equal(t, "BRK-B", NormalizeSymbol("brk-b"))
	assert.Equal(t, "", NormalizeSymbol("   "))
}

func TestSymbolsArg(t *testing.T) {
	symbols, err := symbolsArg(map[string]interface{}{
		"symbols": []interface{}{" aapl", "MSFT", "aapl "},
	}, "symbols")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, symbols, "normalized and deduplicated")
}

func TestSymbolsArg_SingleString(t *testing.T) {
	symbols, err := symbolsArg(map[string]interface{}{"symbols": "tsla"}, "symbols")
	require.NoError(t, err)
	assert.Equal(t, []string{"TSLA"}, symbols)
}

func TestSymbolsArg_Invalid(t *testing.T) {
	_, err := symbolsArg(map[string]interface{}{}, "symbols")
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	_, err = symbolsArg(map[string]interface{}{"symbols": []interface{}{}}, "symbols")
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	_, err = symbolsArg(map[string]interface{}{"symbols": []interface{}{42}}, "symbols")
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestDecimalArg(t *testing.T) {
	d, err := decimalArg(map[string]interface{}{"quantity": 2.5}, "quantity")
	require.NoError(t, err)
	assert.Equal(t, "2.5", d.String())

	// Models sometimes send numbers as strings
	d, err = decimalArg(map[string]interface{}{"quantity": "10"}, "quantity")
	require.NoError(t, err)
	assert.Equal(t, "10", d.String())

	_, err = decimalArg(map[string]interface{}{"quantity": "ten"}, "quantity")
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	_, err = decimalArg(map[string]interface{}{}, "quantity")
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestOptionalDecimalArg(t *testing.T) {
	d, err := optionalDecimalArg(map[string]interface{}{}, "quantity")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = optionalDecimalArg(map[string]interface{}{"quantity": 3.0}, "quantity")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "3", d.String())
}

func TestValidateArgs_RequiredAndTypes(t *testing.T) {
	def := Definition{
		Name: "test_tool",
		Parameters: objectSchema(map[string]interface{}{
			"symbol":   stringProp("a symbol"),
			"quantity": numberProp("a quantity"),
		}, "symbol"),
	}

	err := validateArgs(def, map[string]interface{}{})
	assert.True(t, errors.Is(err, errors.ErrInvalidInput), "missing required key")

	err = validateArgs(def, map[string]interface{}{"symbol": 42})
	assert.True(t, errors.Is(err, errors.ErrInvalidInput), "wrong type")

	err = validateArgs(def, map[string]interface{}{"symbol": "AAPL", "quantity": 2.0})
	assert.NoError(t, err)

	err = validateArgs(def, map[string]interface{}{"symbol": "AAPL", "extra": true})
	assert.NoError(t, err, "unknown keys are tolerated")
}

func TestFailureResult(t *testing.T) {
	cases := []struct {
		err  error
		kind string
	}{
		{errors.NewValidationError("quantity", "must be positive", -1), FailureInvalidArguments},
		{errors.Wrapf(errors.ErrSymbolNotFound, "no quote for ZZZZ"), FailureSymbolNotFound},
		{errors.ErrHoldingNotFound, FailureHoldingNotFound},
		{errors.ErrNotWatched, FailureNotWatched},
		{errors.Wrap(errors.ErrGatewayUnavailable, "yahoo down"), FailureGatewayUnavailable},
		{errors.New("something odd"), FailureInternal},
	}

	for _, tc := range cases {
		result := FailureResult(tc.err)
		assert.Equal(t, tc.kind, result["error"], "error %v", tc.err)
		assert.NotEmpty(t, result["message"])
	}
}
