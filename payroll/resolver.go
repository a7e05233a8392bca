/*
resolver.go - Salary structure resolution

PURPOSE:
  Turns a monthly gross figure and an ordered component set into absolute
  monthly amounts for every earning and deduction, with one balance
  component absorbing the residual so total earnings hit the gross.

ALGORITHM (three passes over components sorted by Order):
  1. Basic pass:    the anchor earning (IsBasicAnchor, or the earning named
                    "Basic" when no component is flagged)
  2. Standard pass: percentage_of_gross, percentage_of_basic, fixed_amount
  3. Balance pass:  max(0, gross - earnings so far)

  If fixed or percentage earnings already exceed the gross, the balance
  floors at zero and the realized gross exceeds the target. This is accepted.

DEGENERATE SETS:
  Resolve never fails. No anchor means basic = 0. Several balance components
  means the first by order absorbs the residual and the rest resolve to 0.
  A balance component typed as a deduction resolves to 0. ValidateComponentSet
  rejects all of these before they are persisted.

SEE ALSO:
  - validate.go: Rules enforced at configuration time
  - engine.go: Feeds the pro-rata gross into Resolve
*/
package payroll

import (
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// BreakdownLine is the resolved amount of one component.
type BreakdownLine struct {
	ComponentID ComponentID
	Name        string
	Type        ComponentType
	Role        ComponentRole
	Amount      decimal.Decimal
}

// Breakdown is the output of Resolve. Lines follow component order.
type Breakdown struct {
	Lines      []BreakdownLine
	AnchorID   ComponentID // empty when the set has no Basic anchor
	Basic      decimal.Decimal
	Gross      decimal.Decimal
	Deductions decimal.Decimal
	Net        decimal.Decimal
}

// Resolve computes the absolute monthly value of every component.
// Negative gross is treated as zero. The components slice is not modified.
func Resolve(monthlyGross decimal.Decimal, components []SalaryComponent) Breakdown {
	gross := decimal.Max(monthlyGross, decimal.Zero)
	sorted := sortByOrder(components)

	amounts := make([]decimal.Decimal, len(sorted))
	resolved := make([]bool, len(sorted))

	// Pass 1: basic
	basic := decimal.Zero
	anchor := anchorIndex(sorted)
	if anchor >= 0 {
		switch c := sorted[anchor]; c.CalculationType {
		case PercentageOfGross:
			basic = percentOf(gross, c.Value)
			amounts[anchor], resolved[anchor] = basic, true
		case FixedAmount:
			basic = c.Value
			amounts[anchor], resolved[anchor] = basic, true
		case BalanceComponent:
			// resolved in the balance pass
		default:
			amounts[anchor], resolved[anchor] = decimal.Zero, true
		}
	}

	// Pass 2: everything that is neither the anchor nor a balance component
	for i, c := range sorted {
		if i == anchor || c.IsBalance() {
			continue
		}
		switch c.CalculationType {
		case PercentageOfGross:
			amounts[i] = percentOf(gross, c.Value)
		case PercentageOfBasic:
			amounts[i] = percentOf(basic, c.Value)
		case FixedAmount:
			amounts[i] = c.Value
		default:
			amounts[i] = decimal.Zero
		}
		resolved[i] = true
	}

	// Pass 3: balance
	currentEarnings := decimal.Zero
	for i, c := range sorted {
		if resolved[i] && c.Type == Earning {
			currentEarnings = currentEarnings.Add(amounts[i])
		}
	}
	for i, c := range sorted {
		if !c.IsBalance() {
			continue
		}
		if c.Type != Earning {
			amounts[i] = decimal.Zero
			continue
		}
		balance := decimal.Max(gross.Sub(currentEarnings), decimal.Zero)
		amounts[i] = balance
		currentEarnings = currentEarnings.Add(balance)
		if i == anchor {
			basic = balance
		}
	}

	b := Breakdown{
		Lines:      make([]BreakdownLine, len(sorted)),
		Basic:      basic,
		Gross:      decimal.Zero,
		Deductions: decimal.Zero,
	}
	if anchor >= 0 {
		b.AnchorID = sorted[anchor].ID
	}
	for i, c := range sorted {
		role := c.EffectiveRole()
		if i == anchor {
			role = RoleBasic
		} else if role == RoleBasic {
			role = RoleNone
		}
		b.Lines[i] = BreakdownLine{
			ComponentID: c.ID,
			Name:        c.Name,
			Type:        c.Type,
			Role:        role,
			Amount:      amounts[i],
		}
		switch c.Type {
		case Earning:
			b.Gross = b.Gross.Add(amounts[i])
		case Deduction:
			b.Deductions = b.Deductions.Add(amounts[i])
		}
	}
	b.Net = b.Gross.Sub(b.Deductions)
	return b
}

// ByName projects the breakdown into a name-keyed map. Later lines with a
// duplicate name overwrite earlier ones.
func (b Breakdown) ByName() map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal, len(b.Lines))
	for _, l := range b.Lines {
		m[l.Name] = l.Amount
	}
	return m
}

// LineForRole returns the index of the first line with the given role, or -1.
func (b Breakdown) LineForRole(role ComponentRole) int {
	for i, l := range b.Lines {
		if l.Role == role {
			return i
		}
	}
	return -1
}

// RoleAmount returns the amount of the first line with the given role, or zero.
func (b Breakdown) RoleAmount(role ComponentRole) decimal.Decimal {
	if i := b.LineForRole(role); i >= 0 {
		return b.Lines[i].Amount
	}
	return decimal.Zero
}

// =============================================================================
// HELPERS
// =============================================================================

func percentOf(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred)
}

// sortByOrder returns a stably sorted copy.
func sortByOrder(components []SalaryComponent) []SalaryComponent {
	sorted := make([]SalaryComponent, len(components))
	copy(sorted, components)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})
	return sorted
}

// anchorIndex locates the Basic anchor: the first flagged earning, or when no
// component is flagged, the first earning named "Basic". Returns -1 if none.
func anchorIndex(components []SalaryComponent) int {
	flagged := false
	for _, c := range components {
		if c.IsBasicAnchor {
			flagged = true
			break
		}
	}
	best := -1
	for i, c := range components {
		if c.Type != Earning {
			continue
		}
		match := c.IsBasicAnchor
		if !flagged {
			match = normalizeName(c.Name) == "basic"
		}
		if match && (best < 0 || c.Order < components[best].Order) {
			best = i
		}
	}
	return best
}
