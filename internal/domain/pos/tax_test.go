package pos

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitInclusiveVAT(t *testing.T) {
	tests := []struct {
		name    string
		gross   string
		rate    string
		wantNet string
		wantVAT string
	}{
		{"standard 19 percent", "10000", "0.19", "8403.36", "1596.64"},
		{"small amount", "1190", "0.19", "1000", "190"},
		{"zero gross", "0", "0.19", "0", "0"},
		{"other rate", "1100", "0.10", "1000", "100"},
		{"rounding remainder", "999.99", "0.19", "840.33", "159.66"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gross := decimal.RequireFromString(tt.gross)
			rate := decimal.RequireFromString(tt.rate)

			got := SplitInclusiveVAT(gross, rate)

			assert.True(t, got.Net.Equal(decimal.RequireFromString(tt.wantNet)),
				"net = %s, want %s", got.Net, tt.wantNet)
			assert.True(t, got.VAT.Equal(decimal.RequireFromString(tt.wantVAT)),
				"vat = %s, want %s", got.VAT, tt.wantVAT)
		})
	}
}

func TestSplitInclusiveVAT_PartsSumToGross(t *testing.T) {
	grosses := []string{"10000", "1", "0.01", "123456.78", "999.99"}

	rate := decimal.RequireFromString("0.19")
	for _, g := range grosses {
		gross := decimal.RequireFromString(g)
		got := SplitInclusiveVAT(gross, rate)
		require.True(t, got.Net.Add(got.VAT).Equal(gross),
			"net %s + vat %s must equal gross %s", got.Net, got.VAT, gross)
	}
}
