// =============================================================================
// Bill Analyzer - Bill Validation
// =============================================================================
//
// Arithmetic sanity check on extracted bills: the sum of the item prices
// must equal the declared total. A mismatch does not block processing —
// extraction occasionally misreads a price — but it is surfaced loudly so
// the operator can correct the source data.
//
// =============================================================================

package validation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/juliweber/bill-analyzer/internal/bill"
)

// Tolerance is the maximum accepted difference between the item sum and
// the declared total.
const Tolerance = 0.01

// Result describes the outcome of a bill total validation.
type Result struct {
	// Valid is true when the item sum matches the declared total.
	Valid bool

	// CalculatedSum is the sum of all item prices, rounded to cents.
	CalculatedSum float64

	// DeclaredTotal is the bill's declared total, rounded to cents.
	DeclaredTotal float64

	// Difference is the absolute difference, rounded to cents.
	Difference float64

	// Message is a human-readable summary.
	Message string
}

// ValidateBillTotal checks that the sum of the item prices equals the
// declared total. Formula prices are evaluated before summing.
func ValidateBillTotal(b *bill.Bill) (*Result, error) {
	if len(b.Items) == 0 {
		return nil, fmt.Errorf("bill for %q has no items", b.Store)
	}
	if b.Total.IsZero() {
		return nil, fmt.Errorf("bill for %q has no declared total", b.Store)
	}

	sum := decimal.Zero
	for _, item := range b.Items {
		v, err := item.Price.Value()
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", item.Name, err)
		}
		sum = sum.Add(decimal.NewFromFloat(v))
	}

	declared, err := b.Total.Value()
	if err != nil {
		return nil, fmt.Errorf("declared total: %w", err)
	}

	declaredDec := decimal.NewFromFloat(declared)
	diff := sum.Sub(declaredDec).Abs()

	result := &Result{
		Valid:         diff.LessThan(decimal.NewFromFloat(Tolerance)),
		CalculatedSum: sum.Round(2).InexactFloat64(),
		DeclaredTotal: declaredDec.Round(2).InexactFloat64(),
		Difference:    diff.Round(2).InexactFloat64(),
	}

	if result.Valid {
		result.Message = "✓ Price validation passed"
	} else {
		result.Message = fmt.Sprintf(
			"⚠ Price mismatch: Sum of items (%.2f) != Total (%.2f), difference: %.2f",
			result.CalculatedSum, result.DeclaredTotal, result.Difference)
	}
	return result, nil
}
