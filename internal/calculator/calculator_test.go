package calculator

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name  string
		input Input
		want  Result
	}{
		{
			name:  "tax only",
			input: Input{PlatformCharge: 100, TaxPercent: 18},
			want:  Result{SubTotal: 100, DiscountAmount: 0, AmountAfterDiscount: 100, TaxAmount: 18, Total: 118},
		},
		{
			name:  "percentage discount",
			input: Input{PlatformCharge: 150, SetupFee: 50, Discount: 50},
			want:  Result{SubTotal: 200, DiscountAmount: 100, AmountAfterDiscount: 100, TaxAmount: 0, Total: 100},
		},
		{
			name:  "absolute discount clamped to subtotal",
			input: Input{PlatformCharge: 200, Discount: 250, TaxPercent: 18},
			want:  Result{SubTotal: 200, DiscountAmount: 200, AmountAfterDiscount: 0, TaxAmount: 0, Total: 0},
		},
		{
			name:  "absolute discount below subtotal",
			input: Input{PlatformCharge: 1000, WalletRecharge: 500, Discount: 300, TaxPercent: 18},
			want:  Result{SubTotal: 1500, DiscountAmount: 300, AmountAfterDiscount: 1200, TaxAmount: 216, Total: 1416},
		},
		{
			name: "all charges with additional fees",
			input: Input{
				PlatformCharge:   999.99,
				WalletRecharge:   500,
				SetupFee:         250.5,
				CustomizationFee: 100,
				AdditionalFees: []Fee{
					{Description: "Onboarding", Amount: 49.51},
					{Description: "Training", Amount: 100},
				},
				Discount:   10,
				TaxPercent: 18,
			},
			want: Result{SubTotal: 2000, DiscountAmount: 200, AmountAfterDiscount: 1800, TaxAmount: 324, Total: 2124},
		},
		{
			name:  "negative and non-finite inputs count as zero",
			input: Input{PlatformCharge: -50, WalletRecharge: math.NaN(), SetupFee: math.Inf(1), CustomizationFee: 10, Discount: -5, TaxPercent: -18},
			want:  Result{SubTotal: 10, DiscountAmount: 0, AmountAfterDiscount: 10, TaxAmount: 0, Total: 10},
		},
		{
			name:  "discount boundary of exactly 100 is a percentage",
			input: Input{PlatformCharge: 500, Discount: 100},
			want:  Result{SubTotal: 500, DiscountAmount: 500, AmountAfterDiscount: 0, TaxAmount: 0, Total: 0},
		},
		{
			name:  "empty input",
			input: Input{},
			want:  Result{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Calculate(tt.input))
		})
	}
}

func TestCalculateTotalsAreConsistent(t *testing.T) {
	inputs := []Input{
		{PlatformCharge: 333.33, WalletRecharge: 66.67, Discount: 12.5, TaxPercent: 18},
		{PlatformCharge: 0.1, SetupFee: 0.2, TaxPercent: 5},
		{PlatformCharge: 12345.678, Discount: 1234.5, TaxPercent: 28},
		{CustomizationFee: 19.99, AdditionalFees: []Fee{{Amount: 0.01}}, Discount: 33.333, TaxPercent: 12},
	}

	for _, in := range inputs {
		got := Calculate(in)
		assert.InDelta(t, got.Total, got.AmountAfterDiscount+got.TaxAmount, 0.011)
		assert.InDelta(t, got.AmountAfterDiscount, got.SubTotal-got.DiscountAmount, 0.011)
		assert.Equal(t, got, Calculate(in), "deterministic")
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.01, Round2(1.005))
	assert.Equal(t, 118.0, Round2(118))
	assert.Equal(t, 0.0, Round2(0))
}

func TestToNumber(t *testing.T) {
	assert.Equal(t, 0.0, ToNumber(nil))
	assert.Equal(t, 0.0, ToNumber(""))
	assert.Equal(t, 0.0, ToNumber("abc"))
	assert.Equal(t, 42.5, ToNumber(" 42.5 "))
	assert.Equal(t, 7.0, ToNumber(7))
	assert.Equal(t, 3.25, ToNumber(json.Number("3.25")))
	assert.Equal(t, 0.0, ToNumber(math.Inf(-1)))
	assert.Equal(t, 0.0, ToNumber(true))
}

func TestNumberUnmarshalJSON(t *testing.T) {
	var payload struct {
		A Number `json:"a"`
		B Number `json:"b"`
		C Number `json:"c"`
		D Number `json:"d"`
		E Number `json:"e"`
	}
	err := json.Unmarshal([]byte(`{"a": 10.5, "b": "20", "c": "", "d": null, "e": {"x": 1}}`), &payload)
	require.NoError(t, err)
	assert.Equal(t, Number(10.5), payload.A)
	assert.Equal(t, Number(20), payload.B)
	assert.Equal(t, Number(0), payload.C)
	assert.Equal(t, Number(0), payload.D)
	assert.Equal(t, Number(0), payload.E)
}
