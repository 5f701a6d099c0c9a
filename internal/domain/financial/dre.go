package financial

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CategoryTotal is one DRE line.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Entries  int             `json:"entries"`
}

// IncomeStatement is the DRE view: totals per income and expense category.
type IncomeStatement struct {
	Revenue       []CategoryTotal `json:"revenue"`
	Expenses      []CategoryTotal `json:"expenses"`
	GrossRevenue  decimal.Decimal `json:"gross_revenue"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetResult     decimal.Decimal `json:"net_result"`
}

// BuildIncomeStatement groups entries by category. Lines are ordered by
// total, largest first, then by name.
func BuildIncomeStatement(entries []Entry) IncomeStatement {
	revenue := map[string]*CategoryTotal{}
	expenses := map[string]*CategoryTotal{}

	var st IncomeStatement
	for _, e := range entries {
		var lines map[string]*CategoryTotal
		switch e.Type {
		case EntryIncome:
			lines = revenue
			st.GrossRevenue = st.GrossRevenue.Add(e.Amount)
		case EntryExpense:
			lines = expenses
			st.TotalExpenses = st.TotalExpenses.Add(e.Amount)
		default:
			continue
		}
		line, ok := lines[e.Category]
		if !ok {
			line = &CategoryTotal{Category: e.Category}
			lines[e.Category] = line
		}
		line.Total = line.Total.Add(e.Amount)
		line.Entries++
	}

	st.Revenue = sortedTotals(revenue)
	st.Expenses = sortedTotals(expenses)
	st.NetResult = st.GrossRevenue.Sub(st.TotalExpenses)
	return st
}

func sortedTotals(lines map[string]*CategoryTotal) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(lines))
	for _, l := range lines {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}
