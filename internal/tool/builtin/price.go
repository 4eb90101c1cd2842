// SPDX-License-Identifier: AGPL-3.0-only
package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/chatloop/chatloop/internal/chat"
	"github.com/chatloop/chatloop/internal/tool"
)

// PriceArgs are the arguments for the calculate_total_price tool.
type PriceArgs struct {
	Price    float64 `json:"price" jsonschema:"description=Unit price"`
	Quantity int     `json:"quantity" jsonschema:"description=Number of units"`
	TaxRate  float64 `json:"tax_rate,omitempty" jsonschema:"description=Tax rate as a fraction of the subtotal"`
}

// PriceDefinition describes the price arithmetic tool.
func PriceDefinition() chat.ToolDefinition {
	return chat.ToolDefinition{
		Name:        "calculate_total_price",
		Description: "Calculates the total price for a quantity of items, optionally with tax.",
		Parameters:  tool.MustGenerateSchema[PriceArgs](),
	}
}

// Price is the handler for calculate_total_price.
func Price(ctx context.Context, raw json.RawMessage) (string, error) {
	var args PriceArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("decode price arguments: %w", err)
	}
	if args.Price < 0 {
		return "", fmt.Errorf("price must not be negative, got %v", args.Price)
	}
	if args.Quantity < 0 {
		return "", fmt.Errorf("quantity must not be negative, got %d", args.Quantity)
	}
	if args.TaxRate < 0 || args.TaxRate > 1 {
		return "", fmt.Errorf("tax_rate must be between 0 and 1, got %v", args.TaxRate)
	}

	subtotal := args.Price * float64(args.Quantity)
	tax := subtotal * args.TaxRate
	total := math.Round((subtotal+tax)*100) / 100

	out, err := json.Marshal(map[string]interface{}{
		"subtotal": math.Round(subtotal*100) / 100,
		"tax":      math.Round(tax*100) / 100,
		"total":    total,
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}
