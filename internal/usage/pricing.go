package usage

import "strings"

// Per-million-token prices in USD. Unknown models fall back to the cheapest
// tier so reports undercount rather than alarm.
type modelPrice struct {
	input  float64
	output float64
}

var modelPrices = map[string]modelPrice{
	"gpt-4o":                  {input: 2.50, output: 10.00},
	"gpt-4o-mini":             {input: 0.15, output: 0.60},
	"claude-sonnet-4-5":       {input: 3.00, output: 15.00},
	"claude-3-5-haiku-latest": {input: 0.80, output: 4.00},
	"gemini-2.5-pro":          {input: 1.25, output: 10.00},
	"gemini-2.5-flash":        {input: 0.30, output: 2.50},
}

var fallbackPrice = modelPrice{input: 0.15, output: 0.60}

// Cost computes the dollar cost of one call from token counts.
func Cost(model string, inputTokens, outputTokens int) float64 {
	price, ok := modelPrices[model]
	if !ok {
		// Dated model IDs like gpt-4o-2024-08-06 share the base price. The
		// longest prefix wins so gpt-4o-mini variants never price as gpt-4o.
		best := ""
		for name, p := range modelPrices {
			if strings.HasPrefix(model, name) && len(name) > len(best) {
				best, price, ok = name, p, true
			}
		}
	}
	if !ok {
		price = fallbackPrice
	}

	return float64(inputTokens)/1_000_000*price.input +
		float64(outputTokens)/1_000_000*price.output
}
