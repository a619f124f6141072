// =============================================================================
// Bill Analyzer - AI Bill Extraction
// =============================================================================
//
// External collaborator: sends a bill PDF to a generative model and parses
// the structured JSON it returns. From the engine's point of view this is a
// black box producing {store, date, items, total} records; nothing in here
// touches the ledger.
//
// The model is asked for strict JSON, but responses wrapped in Markdown
// code fences are tolerated and unwrapped before parsing.
//
// =============================================================================

package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/juliweber/bill-analyzer/internal/bill"
)

// extractionPrompt asks for the bill fields in the shape the inserter
// expects. Items bought multiple times are encoded as repeat formulas,
// deposit surcharges as sums, matching the ledger's historical convention.
const extractionPrompt = `Bitte extrahiere folgende Daten aus der Rechnung:
1. Name des Supermarkts, ohne Gewerbeform o.ä., also nur 'REWE' oder 'Edeka'.
2. Datum ohne Uhrzeit.
3. Alle Artikel inklusive Preis, Artikel in korrekter deutschen Groß- und Kleinschreibung.
4. Gesamtpreis.

Wenn der gleiche Artikel mehrfach gekauft wurde, dann schreibe als Preis für den Artikel: Anzahl * Einzelpreis (z.B. '=4*0,59').
Wenn ein Artikel Pfand hat, dann schreibe als Preis für den Artikel: Artikelpreis + Pfand (z.B. '=0,89+0,08').
Schreibe das Gewicht bei zum Beispiel Gemüse oder Obst, hinten an den Namen des dazugehörigen Gemüse oder Obstes.

Gebe mir die Daten als JSON-Objekt zurück, ohne Markdown, mit folgenden Feldern:
'store' (string), 'date' (string), 'items' (Liste aus Objekten mit 'name' und 'price'), 'total' (number).`

// =============================================================================
// EXTRACTOR
// =============================================================================

// Extractor analyzes bill PDFs with a generative model.
type Extractor struct {
	model     string
	maxTokens int
}

// New creates an Extractor using the given model name and response budget.
func New(model string, maxTokens int) *Extractor {
	return &Extractor{model: model, maxTokens: maxTokens}
}

// ExtractBill reads the PDF at path and returns the extracted bill record.
func (e *Extractor) ExtractBill(ctx context.Context, path string) (*bill.Bill, error) {
	pdfBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: extractionPrompt},
				{
					InlineData: &genai.Blob{
						MIMEType: "application/pdf",
						Data:     pdfBytes,
					},
				},
			},
		},
	}

	maxTokens := int32(e.maxTokens)
	resp, err := client.Models.GenerateContent(ctx, e.model, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	return ParseBillJSON(rawText)
}

// =============================================================================
// RESPONSE PARSING
// =============================================================================

// ParseBillJSON parses a model response into a bill record, stripping
// Markdown code fences when the model ignored the no-Markdown instruction.
func ParseBillJSON(raw string) (*bill.Bill, error) {
	clean := stripCodeFences(raw)

	var b bill.Bill
	if err := json.Unmarshal([]byte(clean), &b); err != nil {
		return nil, fmt.Errorf("unmarshal bill JSON: %w (raw response: %s)", err, raw)
	}
	if b.Store == "" || b.Date == "" {
		return nil, fmt.Errorf("bill JSON is missing store or date (raw response: %s)", raw)
	}
	return &b, nil
}

// stripCodeFences unwraps ```json ... ``` or ``` ... ``` blocks.
func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// Drop the opening fence line (``` or ```json).
	if idx := strings.Index(s, "\n"); idx != -1 {
		s = s[idx+1:]
	} else {
		return s
	}

	// Drop everything from the closing fence on.
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
