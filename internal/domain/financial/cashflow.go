package financial

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Activity is a DFC (cash-flow statement) section.
type Activity string

const (
	ActivityOperational  Activity = "operational"
	ActivityInvestment   Activity = "investment"
	ActivityFinancing    Activity = "financing"
	ActivityUnclassified Activity = "unclassified"
)

type activityCategories struct {
	Activity Activity
	Income   []string
	Expense  []string
}

// classificationTable is the fixed category allowlist of each activity.
var classificationTable = []activityCategories{
	{
		Activity: ActivityOperational,
		Income:   []string{"Consultas", "Procedimentos", "Exames", "Convênios", "Particular"},
		Expense: []string{
			"Salários", "Encargos", "Materiais Médicos", "Medicamentos", "Aluguel",
			"Energia Elétrica", "Telefone/Internet", "Contabilidade", "Marketing",
			"Seguros", "Impostos",
		},
	},
	{
		Activity: ActivityInvestment,
		Income:   []string{"Venda de Equipamentos", "Venda de Móveis"},
		Expense:  []string{"Equipamentos Médicos", "Móveis e Utensílios", "Tecnologia", "Reformas"},
	},
	{
		Activity: ActivityFinancing,
		Income:   []string{"Empréstimos", "Aporte de Sócios", "Financiamentos"},
		Expense:  []string{"Pagamento de Empréstimos", "Dividendos", "Amortização de Financiamentos"},
	},
}

var activityIndex = buildActivityIndex()

func buildActivityIndex() map[EntryType]map[string]Activity {
	idx := map[EntryType]map[string]Activity{
		EntryIncome:  {},
		EntryExpense: {},
	}
	for _, group := range classificationTable {
		for _, c := range group.Income {
			idx[EntryIncome][c] = group.Activity
		}
		for _, c := range group.Expense {
			idx[EntryExpense][c] = group.Activity
		}
	}
	return idx
}

// ActivityOf returns the cash-flow section of e, or ActivityUnclassified
// when its category is outside the allowlist.
func ActivityOf(e Entry) Activity {
	if a, ok := activityIndex[e.Type][e.Category]; ok {
		return a
	}
	return ActivityUnclassified
}

// Bucket accumulates the flows of one activity.
type Bucket struct {
	Inflows  decimal.Decimal `json:"inflows"`
	Outflows decimal.Decimal `json:"outflows"`
	Net      decimal.Decimal `json:"net"`
	Entries  int             `json:"entries"`
}

func (b *Bucket) add(e Entry) {
	if e.IsIncome() {
		b.Inflows = b.Inflows.Add(e.Amount)
	} else {
		b.Outflows = b.Outflows.Add(e.Amount)
	}
	b.Net = b.Inflows.Sub(b.Outflows)
	b.Entries++
}

// CashFlowStatement is the DFC over a set of entries.
//
// Unclassified entries are reported for auditing but take no part in
// NetCashFlow or ClosingBalance.
type CashFlowStatement struct {
	Operational            Bucket          `json:"operational"`
	Investment             Bucket          `json:"investment"`
	Financing              Bucket          `json:"financing"`
	Unclassified           Bucket          `json:"unclassified"`
	UnclassifiedCategories []string        `json:"unclassified_categories"`
	Skipped                int             `json:"skipped"`
	NetCashFlow            decimal.Decimal `json:"net_cash_flow"`
	OpeningBalance         decimal.Decimal `json:"opening_balance"`
	ClosingBalance         decimal.Decimal `json:"closing_balance"`
}

// Classify partitions entries into activities and computes the net flow and
// the closing balance. Entries with an unknown type are only counted in
// Skipped.
func Classify(entries []Entry, openingBalance decimal.Decimal) CashFlowStatement {
	st := CashFlowStatement{
		OpeningBalance:         openingBalance,
		UnclassifiedCategories: []string{},
	}
	seen := map[string]bool{}

	for _, e := range entries {
		if !e.Type.Valid() {
			st.Skipped++
			continue
		}
		switch ActivityOf(e) {
		case ActivityOperational:
			st.Operational.add(e)
		case ActivityInvestment:
			st.Investment.add(e)
		case ActivityFinancing:
			st.Financing.add(e)
		default:
			st.Unclassified.add(e)
			if !seen[e.Category] {
				seen[e.Category] = true
				st.UnclassifiedCategories = append(st.UnclassifiedCategories, e.Category)
			}
		}
	}
	sort.Strings(st.UnclassifiedCategories)

	st.NetCashFlow = st.Operational.Net.Add(st.Investment.Net).Add(st.Financing.Net)
	st.ClosingBalance = st.OpeningBalance.Add(st.NetCashFlow)
	return st
}
