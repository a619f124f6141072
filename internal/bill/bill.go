// =============================================================================
// Bill Analyzer - Shared Bill Types
// =============================================================================
//
// This package contains the bill record types shared across multiple modules
// to avoid import cycles. Types defined here are used by:
//   - inserter
//   - dupcheck
//   - validation
//   - extract
//
// A bill record is the contract with the extraction collaborator:
//
//   {
//     "store": "REWE",
//     "date":  "10.12.25",
//     "items": [{"name": "Milch", "price": 1.19},
//               {"name": "Joghurt", "price": "=4*0,59"}],
//     "total": 3.55
//   }
//
// Price and total fields may be plain numbers or simple formula-like strings
// ("=4*0,59", "=0,89+0,08"); the Amount type accepts both.
//
// =============================================================================

package bill

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// BILL TYPES
// =============================================================================

// Bill represents one purchase extracted from a source document.
type Bill struct {
	// Store is the store name without legal form suffixes (e.g. "REWE").
	Store string `json:"store"`

	// Date is the purchase date as delivered by the extraction service.
	// The format is locale-flexible with day-first convention ("10.12.25").
	Date string `json:"date"`

	// Items contains all purchased items in receipt order.
	Items []Item `json:"items"`

	// Total is the declared total of the bill.
	Total Amount `json:"total"`
}

// Item represents a single purchased item on a bill.
type Item struct {
	// Name is the item description, possibly annotated with a weight.
	Name string `json:"name"`

	// Price is the item price. May be a plain number or a formula string
	// ("=4*0,59" for repeated items, "=0,89+0,08" for deposit surcharges).
	Price Amount `json:"price"`
}

// =============================================================================
// AMOUNT TYPE
// =============================================================================

// Amount is a loosely-typed monetary value. In the extraction JSON it can
// appear either as a number or as a string carrying a simple formula. The
// raw text is preserved so the formula can be written into the spreadsheet
// verbatim, while Value() yields the evaluated number.
type Amount struct {
	// Raw is the textual form as received ("3.55", "=4*0,59").
	// Empty for unset amounts.
	Raw string
}

// UnmarshalJSON accepts both JSON numbers and JSON strings.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		a.Raw = ""
		return nil
	}

	if strings.HasPrefix(s, "\"") {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		a.Raw = strings.TrimSpace(str)
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("amount must be a number or a string: %w", err)
	}
	a.Raw = strconv.FormatFloat(num, 'f', -1, 64)
	return nil
}

// MarshalJSON emits a number when the raw text is numeric, a string otherwise.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.Raw == "" {
		return []byte("null"), nil
	}
	if f, err := strconv.ParseFloat(a.Raw, 64); err == nil {
		return json.Marshal(f)
	}
	return json.Marshal(a.Raw)
}

// IsZero reports whether the amount was never set.
func (a Amount) IsZero() bool {
	return a.Raw == ""
}

// IsFormula reports whether the raw text carries a leading formula marker.
func (a Amount) IsFormula() bool {
	return strings.HasPrefix(strings.TrimSpace(a.Raw), "=")
}

// Value evaluates the amount to a number. Formula strings are evaluated
// with EvaluateAmount; plain numbers are parsed directly.
func (a Amount) Value() (float64, error) {
	if a.Raw == "" {
		return 0, fmt.Errorf("empty amount")
	}
	return EvaluateAmount(a.Raw)
}

// Formula returns the spreadsheet formula for this amount with decimal
// commas normalized to dots ("=4*0,59" -> "=4*0.59"). It returns the empty
// string for non-formula amounts.
func (a Amount) Formula() string {
	if !a.IsFormula() {
		return ""
	}
	return strings.ReplaceAll(strings.TrimSpace(a.Raw), ",", ".")
}
