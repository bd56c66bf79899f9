package tools

import (
	"stockpulse/pkg/errors"
)

// Failure kinds reported back to the model as structured results. The
// model uses these to phrase an honest reply; raw error strings never
// leave the tool layer.
const (
	FailureInvalidArguments     = "invalid_arguments"
	FailureSymbolNotFound       = "symbol_not_found"
	FailureHoldingNotFound      = "holding_not_found"
	FailureInsufficientQuantity = "insufficient_quantity"
	FailureNotWatched           = "not_watched"
	FailureGatewayUnavailable   = "gateway_unavailable"
	FailureInternal             = "internal_error"
)

// FailureResult converts a tool execution error into the structured
// map fed back to the model in place of a result.
func FailureResult(err error) map[string]interface{} {
	kind := FailureInternal
	message := "the operation could not be completed"

	var vErr *errors.ValidationError
	switch {
	case errors.As(err, &vErr):
		kind = FailureInvalidArguments
		message = vErr.Error()
	case errors.Is(err, errors.ErrInvalidInput):
		kind = FailureInvalidArguments
		message = err.Error()
	case errors.Is(err, errors.ErrSymbolNotFound):
		kind = FailureSymbolNotFound
		message = err.Error()
	case errors.Is(err, errors.ErrHoldingNotFound):
		kind = FailureHoldingNotFound
		message = "no holding exists for that symbol"
	case errors.Is(err, errors.ErrInsufficientQuantity):
		kind = FailureInsufficientQuantity
		message = "the position is smaller than the requested quantity"
	case errors.Is(err, errors.ErrNotWatched):
		kind = FailureNotWatched
		message = "that symbol is not on the watchlist"
	case errors.Is(err, errors.ErrGatewayUnavailable), errors.Is(err, errors.ErrUnavailable):
		kind = FailureGatewayUnavailable
		message = "live market data is unavailable right now"
	}

	return map[string]interface{}{
		"error":   kind,
		"message": message,
	}
}
