package payroll

import "github.com/shopspring/decimal"

// =============================================================================
// INCOME TAX - Progressive annual slabs (illustrative, not statutory)
// =============================================================================

// StandardDeduction is subtracted from annual CTC before slabs apply.
var StandardDeduction = decimal.NewFromInt(50000)

// TaxSlab taxes income above Floor at Rate, on top of Base. UpTo is the
// inclusive upper bound; nil marks the open top slab.
type TaxSlab struct {
	UpTo  *decimal.Decimal
	Floor decimal.Decimal
	Base  decimal.Decimal
	Rate  decimal.Decimal // fraction, 0.05 = 5%
}

// TaxSlabs must be sorted by UpTo ascending with the open slab last.
type TaxSlabs []TaxSlab

func bound(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func slab(upTo *decimal.Decimal, floor, base int64, rate string) TaxSlab {
	return TaxSlab{
		UpTo:  upTo,
		Floor: decimal.NewFromInt(floor),
		Base:  decimal.NewFromInt(base),
		Rate:  decimal.RequireFromString(rate),
	}
}

// DefaultTaxSlabs:
//
//	<= 3,00,000   0
//	<= 6,00,000   5% above 3,00,000
//	<= 9,00,000   15,000 + 10% above 6,00,000
//	<= 12,00,000  45,000 + 15% above 9,00,000
//	<= 15,00,000  90,000 + 20% above 12,00,000
//	>  15,00,000  1,50,000 + 30% above 15,00,000
var DefaultTaxSlabs = TaxSlabs{
	slab(bound(300000), 0, 0, "0"),
	slab(bound(600000), 300000, 0, "0.05"),
	slab(bound(900000), 600000, 15000, "0.10"),
	slab(bound(1200000), 900000, 45000, "0.15"),
	slab(bound(1500000), 1200000, 90000, "0.20"),
	slab(nil, 1500000, 150000, "0.30"),
}

// AnnualTax applies the slab table to an annual taxable income.
// Non-positive income is taxed at zero.
func (s TaxSlabs) AnnualTax(income decimal.Decimal) decimal.Decimal {
	if !income.IsPositive() {
		return decimal.Zero
	}
	for _, sl := range s {
		if sl.UpTo == nil || income.LessThanOrEqual(*sl.UpTo) {
			return sl.Base.Add(income.Sub(sl.Floor).Mul(sl.Rate))
		}
	}
	return decimal.Zero
}

// CalculateAnnualTax applies DefaultTaxSlabs.
func CalculateAnnualTax(income decimal.Decimal) decimal.Decimal {
	return DefaultTaxSlabs.AnnualTax(income)
}

// AnnualTaxableIncome is max(0, ctc - standard deduction - 12 * monthly
// professional tax - approved declarations).
func AnnualTaxableIncome(annualCTC, standardDeduction, monthlyProfessionalTax, declared decimal.Decimal) decimal.Decimal {
	taxable := annualCTC.
		Sub(standardDeduction).
		Sub(monthlyProfessionalTax.Mul(decimal.NewFromInt(12))).
		Sub(declared)
	return decimal.Max(taxable, decimal.Zero)
}

// ApprovedDeclarations sums approved declarations of one employee for the
// given financial year.
func ApprovedDeclarations(employeeID EmployeeID, financialYear string, declarations []InvestmentDeclaration) decimal.Decimal {
	total := decimal.Zero
	for _, d := range declarations {
		if d.EmployeeID == employeeID && d.FinancialYear == financialYear && d.Status == DeclarationApproved {
			total = total.Add(d.Amount)
		}
	}
	return total
}
