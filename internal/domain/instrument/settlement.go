package instrument

import (
	"github.com/gestion/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Settlement holds the computed figures for a discount sale. Every figure
// is rounded half-up to 2 places before being combined, so the identity
// GrossAmount - TotalDeduction = NetProceeds holds exactly at 2 places.
type Settlement struct {
	GrossAmount     decimal.Decimal `json:"gross_amount"`
	DiscountRate    decimal.Decimal `json:"discount_rate"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	GrossCommission decimal.Decimal `json:"gross_commission"`
	TaxOnCommission decimal.Decimal `json:"tax_on_commission"`
	TotalDeduction  decimal.Decimal `json:"total_deduction"`
	NetProceeds     decimal.Decimal `json:"net_proceeds"`
}

// SettlementShare is one instrument's slice of a lot settlement, derived by
// pro-rating the lot figures over face amounts.
type SettlementShare struct {
	GrossCommission decimal.Decimal
	TaxOnCommission decimal.Decimal
	TotalDeduction  decimal.Decimal
	NetProceeds     decimal.Decimal
}

// ComputeSettlement derives the discount sale figures for a gross face
// amount:
//
//	grossCommission = round2(gross * discountRate / 100)
//	taxOnCommission = round2(grossCommission * taxRate / 100)
//	totalDeduction  = grossCommission + taxOnCommission
//	netProceeds     = gross - totalDeduction
//
// The discount rate must be in (0, 100]; the tax rate in [0, 100].
func ComputeSettlement(gross, discountRate, taxRate decimal.Decimal) (*Settlement, error) {
	if gross.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Gross amount must be positive")
	}
	if discountRate.LessThanOrEqual(decimal.Zero) || discountRate.GreaterThan(hundred) {
		return nil, shared.NewDomainError("INVALID_RATE", "Discount rate must be greater than 0 and at most 100")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(hundred) {
		return nil, shared.NewDomainError("INVALID_RATE", "Tax rate must be between 0 and 100")
	}

	grossCommission := gross.Mul(discountRate).Div(hundred).Round(2)
	taxOnCommission := grossCommission.Mul(taxRate).Div(hundred).Round(2)
	totalDeduction := grossCommission.Add(taxOnCommission)
	netProceeds := gross.Sub(totalDeduction)

	return &Settlement{
		GrossAmount:     gross,
		DiscountRate:    discountRate,
		TaxRate:         taxRate,
		GrossCommission: grossCommission,
		TaxOnCommission: taxOnCommission,
		TotalDeduction:  totalDeduction,
		NetProceeds:     netProceeds,
	}, nil
}

// AllocateShares pro-rates a lot settlement over the member face amounts so
// that the per-instrument figures sum exactly to the lot figures. Each
// component (commission, tax, net) is allocated independently by the
// largest remainder method: truncate every raw share to the cent, then hand
// the leftover cents one at a time to the members with the largest
// fractional remainders, ties going to the larger face amount (then the
// earlier position for equal amounts).
func AllocateShares(s *Settlement, faceAmounts []decimal.Decimal) ([]SettlementShare, error) {
	if len(faceAmounts) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Lot must contain at least one instrument")
	}

	total := decimal.Zero
	for _, fa := range faceAmounts {
		if fa.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Face amounts must be positive")
		}
		total = total.Add(fa)
	}
	if !total.Equal(s.GrossAmount) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Face amounts do not sum to the settlement gross amount")
	}

	commissions := allocate(s.GrossCommission, faceAmounts, total)
	taxes := allocate(s.TaxOnCommission, faceAmounts, total)
	nets := allocate(s.NetProceeds, faceAmounts, total)

	shares := make([]SettlementShare, len(faceAmounts))
	for idx := range faceAmounts {
		shares[idx] = SettlementShare{
			GrossCommission: commissions[idx],
			TaxOnCommission: taxes[idx],
			TotalDeduction:  commissions[idx].Add(taxes[idx]),
			NetProceeds:     nets[idx],
		}
	}
	return shares, nil
}

// allocate splits amount proportionally to weights (which sum to total),
// in whole cents, using the largest remainder method.
func allocate(amount decimal.Decimal, weights []decimal.Decimal, total decimal.Decimal) []decimal.Decimal {
	n := len(weights)
	parts := make([]decimal.Decimal, n)
	remainders := make([]decimal.Decimal, n)
	allocated := decimal.Zero

	for idx, w := range weights {
		raw := amount.Mul(w).Div(total)
		truncated := raw.Truncate(2)
		parts[idx] = truncated
		remainders[idx] = raw.Sub(truncated)
		allocated = allocated.Add(truncated)
	}

	cent := decimal.New(1, -2)
	leftoverCents := amount.Sub(allocated).Div(cent).Round(0).IntPart()

	// Rank by remainder desc, then face amount desc, then position asc.
	order := make([]int, n)
	for idx := range order {
		order[idx] = idx
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			ia, ib := order[a], order[b]
			if remainders[ib].GreaterThan(remainders[ia]) ||
				(remainders[ib].Equal(remainders[ia]) && weights[ib].GreaterThan(weights[ia])) {
				order[a], order[b] = order[b], order[a]
			}
		}
	}

	for c := int64(0); c < leftoverCents; c++ {
		idx := order[c%int64(n)]
		parts[idx] = parts[idx].Add(cent)
	}
	return parts
}
