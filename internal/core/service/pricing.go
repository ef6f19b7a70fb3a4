package service

import (
	"fmt"
	"strings"

	"github.com/llmrelay/chat-service/internal/core/domain"
	"github.com/llmrelay/chat-service/internal/core/ports"
)

// priceTier holds per-million-unit prices for a family of models.
type priceTier struct {
	prefix     string
	prompt     float64
	completion float64
}

// priceTiers is the static pricing table. Matching is longest-prefix, so the
// gpt-4o tier wins over gpt-4 for gpt-4o models.
var priceTiers = []priceTier{
	{prefix: "gpt-4o", prompt: 500, completion: 1500},
	{prefix: "gpt-4", prompt: 3000, completion: 6000},
	{prefix: "gpt-3", prompt: 300, completion: 600},
}

// Price converts usage counters into a cost. An unrecognized model is a
// configuration error, never silently priced at zero.
func Price(model string, usage ports.Usage) (float64, error) {
	var best *priceTier
	for i := range priceTiers {
		t := &priceTiers[i]
		if !strings.HasPrefix(model, t.prefix) {
			continue
		}
		if best == nil || len(t.prefix) > len(best.prefix) {
			best = t
		}
	}
	if best == nil {
		return 0, fmt.Errorf("pricing %q: %w", model, domain.ErrUnknownModel)
	}

	cost := float64(usage.PromptTokens)*best.prompt/1e6 +
		float64(usage.CompletionTokens)*best.completion/1e6
	return cost, nil
}
