package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

// GSTRate is the flat Goods and Services Tax rate.
var GSTRate = decimal.RequireFromString("0.18")

const (
	base36            = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	suffixLength      = 4
	poNumberPrefix    = "EBA"
	orderNumberPrefix = "ORD"
)

// ComputeGST returns the rate, the GST amount rounded to a whole rupee, and the
// after-GST total. When GST does not apply rate and amount are zero.
func ComputeGST(beforeGST decimal.Decimal, applicable bool) (rate, amount, after decimal.Decimal) {
	if !applicable {
		return decimal.Zero, decimal.Zero, beforeGST
	}
	amount = beforeGST.Mul(GSTRate).Round(0)
	return GSTRate, amount, beforeGST.Add(amount)
}

// lineTotal is pieces × pricePerPiece + sets × pricePerSet.
func lineTotal(item model.LineItem) decimal.Decimal {
	pieces := item.PricePerPiece.Mul(decimal.NewFromInt(int64(item.Pieces)))
	sets := item.PricePerSet.Mul(decimal.NewFromInt(int64(item.Sets)))
	return pieces.Add(sets).Round(2)
}

// summarize aggregates line items into an order summary.
func summarize(items []model.LineItem, gstApplicable bool) model.Summary {
	var sum model.Summary
	before := decimal.Zero
	for _, it := range items {
		sum.TotalPieces += it.Pieces
		sum.TotalSets += it.Sets
		before = before.Add(it.LineTotal)
	}
	sum.TotalAmountBeforeGST = decimal.NewNullDecimal(before)
	sum.GSTRate, sum.GSTAmount, sum.TotalAmountAfterGST = ComputeGST(before, gstApplicable)
	return sum
}

// newDocumentNumber formats <prefix>-<YYMMDD>-<4 uppercase base36 chars>.
func newDocumentNumber(prefix string, now time.Time) (string, error) {
	suffix := make([]byte, suffixLength)
	radix := big.NewInt(int64(len(base36)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, radix)
		if err != nil {
			return "", fmt.Errorf("generate document suffix: %w", err)
		}
		suffix[i] = base36[n.Int64()]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("060102"), suffix), nil
}
