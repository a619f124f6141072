// =============================================================================
// Bill Analyzer - Amount Evaluation
// =============================================================================
//
// This file extracts a numeric value from the price formats produced by the
// extraction service and found in historical ledger cells:
//   - Plain numbers:        "3.55", "0,89"
//   - Repeat formulas:      "=4*0,59"
//   - Surcharge formulas:   "=0,89+0,08"
//
// Only "+" and "*" are supported; anything else is a parse error. Arithmetic
// is done with decimal values so that "=4*0.59" comes out as exactly 2.36.
//
// =============================================================================

package bill

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// EvaluateAmount parses a price or total value into a number.
//
// The input may carry a leading "=" formula marker, decimal commas, and a
// simple expression over "+" and "*" ("*" binds tighter than "+").
func EvaluateAmount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	// Strip the formula marker and normalize decimal commas.
	s = strings.TrimPrefix(s, "=")
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, fmt.Errorf("amount %q has no value", raw)
	}

	sum := decimal.Zero
	for _, term := range strings.Split(s, "+") {
		product := decimal.NewFromInt(1)
		for _, factor := range strings.Split(term, "*") {
			d, err := decimal.NewFromString(factor)
			if err != nil {
				return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
			}
			product = product.Mul(d)
		}
		sum = sum.Add(product)
	}

	return sum.InexactFloat64(), nil
}

// IsNumeric reports whether raw evaluates to a number.
func IsNumeric(raw string) bool {
	_, err := EvaluateAmount(raw)
	return err == nil
}
