package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
  "store": "REWE",
  "date": "10.12.25",
  "items": [
    {"name": "Milch 1,5%", "price": 1.19},
    {"name": "Joghurt", "price": "=4*0,59"}
  ],
  "total": 3.55
}`

func TestParseBillJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "plain JSON",
			raw:  sampleResponse,
		},
		{
			name: "json code fence",
			raw:  "```json\n" + sampleResponse + "\n```",
		},
		{
			name: "bare code fence",
			raw:  "```\n" + sampleResponse + "\n```",
		},
		{
			name: "surrounding whitespace",
			raw:  "\n\n  " + sampleResponse + "  \n",
		},
		{
			name:    "not JSON",
			raw:     "Entschuldigung, das kann ich nicht lesen.",
			wantErr: true,
		},
		{
			name:    "missing store",
			raw:     `{"date": "10.12.25", "items": [], "total": 1.0}`,
			wantErr: true,
		},
		{
			name:    "missing date",
			raw:     `{"store": "REWE", "items": [], "total": 1.0}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ParseBillJSON(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, "REWE", b.Store)
			assert.Equal(t, "10.12.25", b.Date)
			require.Len(t, b.Items, 2)
			assert.Equal(t, "Milch 1,5%", b.Items[0].Name)
			assert.Equal(t, "1.19", b.Items[0].Price.Raw)
			assert.Equal(t, "=4*0,59", b.Items[1].Price.Raw)
			assert.Equal(t, "3.55", b.Total.Raw)
		})
	}
}

func TestStripCodeFences_FenceWithTrailingProse(t *testing.T) {
	raw := "```json\n{\"a\": 1}\n```\nHier ist das Ergebnis."
	assert.Equal(t, `{"a": 1}`, stripCodeFences(raw))
}
