// Package calculator derives invoice financials from raw charge inputs.
//
// Every input is coerced rather than rejected: missing, empty, non-numeric,
// non-finite and negative values count as zero. Intermediate steps keep full
// precision and only the reported figures are rounded to two decimals.
package calculator

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// epsilon nudges values such as 1.005 across the rounding boundary.
var epsilon = math.Nextafter(1, 2) - 1

// Number is a lenient JSON number. Numeric strings are accepted and anything
// unparseable decodes to zero instead of failing the request.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		*n = 0
		return nil
	}
	*n = Number(ToNumber(v))
	return nil
}

// Float returns the value as float64.
func (n Number) Float() float64 { return float64(n) }

// Fee is an additional line item on an invoice.
type Fee struct {
	Description string `json:"description"`
	Amount      Number `json:"amount"`
}

// Input holds the raw charge inputs of an invoice.
type Input struct {
	PlatformCharge   float64
	WalletRecharge   float64
	SetupFee         float64
	CustomizationFee float64
	AdditionalFees   []Fee
	// Discount is a percentage when it lies in [0, 100], an absolute amount otherwise.
	Discount   float64
	TaxPercent float64
}

// Result holds the derived, rounded monetary fields.
type Result struct {
	SubTotal            float64 `json:"sub_total"`
	DiscountAmount      float64 `json:"discount_amount"`
	AmountAfterDiscount float64 `json:"amount_after_discount"`
	TaxAmount           float64 `json:"GST_amount"`
	Total               float64 `json:"total"`
}

// Calculate computes subtotal, discount, tax and total. It is pure and never fails.
func Calculate(in Input) Result {
	platform := sanitize(in.PlatformCharge)
	wallet := sanitize(in.WalletRecharge)
	setup := sanitize(in.SetupFee)
	customization := sanitize(in.CustomizationFee)
	discountInput := sanitize(in.Discount)
	taxPercent := sanitize(in.TaxPercent)

	var additional float64
	for _, fee := range in.AdditionalFees {
		additional += sanitize(fee.Amount.Float())
	}

	subTotal := platform + wallet + setup + customization + additional

	var discount float64
	if discountInput >= 0 && discountInput <= 100 {
		discount = subTotal * (discountInput / 100)
	} else {
		discount = discountInput
	}
	discount = math.Max(0, math.Min(discount, subTotal))

	afterDiscount := subTotal - discount
	tax := afterDiscount * (taxPercent / 100)
	total := afterDiscount + tax

	return Result{
		SubTotal:            Round2(subTotal),
		DiscountAmount:      Round2(discount),
		AmountAfterDiscount: Round2(afterDiscount),
		TaxAmount:           Round2(tax),
		Total:               Round2(total),
	}
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round((v+epsilon)*100) / 100
}

// ToNumber coerces an arbitrary decoded value to a finite float64, using 0 for
// anything that is missing or not numeric.
func ToNumber(v any) float64 {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case Number:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
