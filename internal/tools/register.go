package tools

// BuildRegistry constructs the full tool catalog wired to the given
// dependencies.
func BuildRegistry(deps Deps) *Registry {
	registry := NewRegistry()

	registry.Register(NewGetPriceTool(deps))
	registry.Register(NewGetQuoteDetailTool(deps))
	registry.Register(NewAddHoldingTool(deps))
	registry.Register(NewRemoveHoldingTool(deps))
	registry.Register(NewGetPortfolioTool(deps))
	registry.Register(NewAddWatchTool(deps))
	registry.Register(NewRemoveWatchTool(deps))
	registry.Register(NewGetWatchlistTool(deps))
	registry.Register(NewGetSummaryTool(deps))

	return registry
}
