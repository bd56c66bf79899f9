package tools

import (
	"context"
	"strings"

	"stockpulse/pkg/errors"
)

// Definition describes a tool's metadata: its name, a natural-language
// description for the model, and a JSON schema for its arguments.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// Tool represents a callable capability exposed to the orchestrator.
type Tool interface {
	// Definition returns the tool's catalog entry.
	Definition() Definition
	// Execute performs the tool's action for one user. Failures are
	// returned as errors wrapping the sentinel taxonomy; the caller
	// converts them to structured results, never surfacing raw faults.
	Execute(ctx context.Context, userID string, args map[string]interface{}) (map[string]interface{}, error)
}

// HandlerFunc is the function signature for tool handlers.
type HandlerFunc func(ctx context.Context, userID string, args map[string]interface{}) (map[string]interface{}, error)

// FunctionTool is a simple Tool implementation backed by a handler
// function. Arguments are validated against the declared schema before
// the handler runs.
type FunctionTool struct {
	def     Definition
	handler HandlerFunc
}

// New creates a new function-backed Tool.
func New(def Definition, handler HandlerFunc) Tool {
	return &FunctionTool{
		def:     def,
		handler: handler,
	}
}

// Definition returns the tool's catalog entry.
func (t *FunctionTool) Definition() Definition { return t.def }

// Execute validates arguments and runs the underlying handler.
func (t *FunctionTool) Execute(ctx context.Context, userID string, args map[string]interface{}) (map[string]interface{}, error) {
	if t.handler == nil {
		return nil, errors.Newf("tool %s: handler is not defined", t.def.Name)
	}
	if err := validateArgs(t.def, args); err != nil {
		return nil, err
	}
	return t.handler(ctx, userID, args)
}

// NormalizeSymbol canonicalizes a ticker so storage invariants hold
// regardless of input casing
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
