package financial

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestClassify_OperationalScenario(t *testing.T) {
	entries := []Entry{
		entry(EntryIncome, "Consultas", 280),
		entry(EntryExpense, "Aluguel", 3500),
	}
	st := Classify(entries, dec("15000"))

	if !st.Operational.Net.Equal(dec("-3220")) {
		t.Errorf("expected operational net -3220, got %s", st.Operational.Net)
	}
	if !st.NetCashFlow.Equal(dec("-3220")) {
		t.Errorf("expected net cash flow -3220, got %s", st.NetCashFlow)
	}
	if !st.ClosingBalance.Equal(dec("11780")) {
		t.Errorf("expected closing balance 11780, got %s", st.ClosingBalance)
	}
	if st.Operational.Entries != 2 {
		t.Errorf("expected 2 operational entries, got %d", st.Operational.Entries)
	}
}

func TestClassify_Activities(t *testing.T) {
	entries := []Entry{
		entry(EntryIncome, "Venda de Equipamentos", 1200),
		entry(EntryExpense, "Equipamentos Médicos", 5000),
		entry(EntryIncome, "Empréstimos", 20000),
		entry(EntryExpense, "Dividendos", 1000),
	}
	st := Classify(entries, decimal.Zero)

	if !st.Investment.Inflows.Equal(dec("1200")) || !st.Investment.Outflows.Equal(dec("5000")) {
		t.Errorf("unexpected investment bucket %+v", st.Investment)
	}
	if !st.Financing.Net.Equal(dec("19000")) {
		t.Errorf("expected financing net 19000, got %s", st.Financing.Net)
	}
	if !st.NetCashFlow.Equal(dec("15200")) {
		t.Errorf("expected net cash flow 15200, got %s", st.NetCashFlow)
	}
}

func TestClassify_CategoryMatchesPerType(t *testing.T) {
	// "Consultas" is only an operational income category.
	st := Classify([]Entry{entry(EntryExpense, "Consultas", 50)}, decimal.Zero)
	if st.Operational.Entries != 0 {
		t.Error("expected an expense named Consultas not to be operational")
	}
	if st.Unclassified.Entries != 1 {
		t.Errorf("expected it in the unclassified bucket, got %+v", st.Unclassified)
	}
}

func TestClassify_UnclassifiedExcludedFromNet(t *testing.T) {
	entries := []Entry{
		entry(EntryIncome, "Consultas", 100),
		entry(EntryIncome, "Outros", 999),
		entry(EntryExpense, "Café", 30),
		entry(EntryExpense, "Outros", 5),
	}
	st := Classify(entries, dec("10"))

	if !st.NetCashFlow.Equal(dec("100")) {
		t.Errorf("expected unclassified entries outside the net, got %s", st.NetCashFlow)
	}
	if st.Unclassified.Entries != 3 {
		t.Errorf("expected 3 unclassified entries, got %d", st.Unclassified.Entries)
	}
	if !st.Unclassified.Net.Equal(dec("964")) {
		t.Errorf("expected unclassified net 964, got %s", st.Unclassified.Net)
	}
	want := []string{"Café", "Outros"}
	if len(st.UnclassifiedCategories) != 2 || st.UnclassifiedCategories[0] != want[0] || st.UnclassifiedCategories[1] != want[1] {
		t.Errorf("expected categories %v, got %v", want, st.UnclassifiedCategories)
	}
}

func TestClassify_SkipsUnknownType(t *testing.T) {
	st := Classify([]Entry{{Type: "transfer", Category: "Consultas", Amount: dec("10")}}, decimal.Zero)
	if st.Skipped != 1 {
		t.Errorf("expected 1 skipped entry, got %d", st.Skipped)
	}
	if !st.NetCashFlow.IsZero() {
		t.Errorf("expected zero net, got %s", st.NetCashFlow)
	}
}

func TestClassify_Empty(t *testing.T) {
	st := Classify(nil, dec("500.50"))
	if !st.ClosingBalance.Equal(dec("500.50")) {
		t.Errorf("expected closing equal to opening, got %s", st.ClosingBalance)
	}
	if st.UnclassifiedCategories == nil {
		t.Error("expected an empty, non-nil category list")
	}
}

func TestClassify_BalanceIdentity(t *testing.T) {
	entries := []Entry{
		entry(EntryIncome, "Consultas", 280),
		entry(EntryIncome, "Procedimentos", 1500),
		entry(EntryExpense, "Salários", 4000),
		entry(EntryExpense, "Tecnologia", 800),
		entry(EntryIncome, "Aporte de Sócios", 10000),
		entry(EntryExpense, "Outros", 70),
	}
	opening := dec("2500.25")
	st := Classify(entries, opening)

	sum := st.Operational.Net.Add(st.Investment.Net).Add(st.Financing.Net)
	if !st.ClosingBalance.Sub(opening).Equal(st.NetCashFlow) {
		t.Errorf("closing - opening = %s, net = %s", st.ClosingBalance.Sub(opening), st.NetCashFlow)
	}
	if !st.NetCashFlow.Equal(sum) {
		t.Errorf("net %s != sum of bucket nets %s", st.NetCashFlow, sum)
	}
}

func TestClassificationTable_NoOverlap(t *testing.T) {
	seen := map[EntryType]map[string]Activity{EntryIncome: {}, EntryExpense: {}}
	for _, group := range classificationTable {
		for _, c := range group.Income {
			if a, dup := seen[EntryIncome][c]; dup {
				t.Errorf("income category %q in both %s and %s", c, a, group.Activity)
			}
			seen[EntryIncome][c] = group.Activity
		}
		for _, c := range group.Expense {
			if a, dup := seen[EntryExpense][c]; dup {
				t.Errorf("expense category %q in both %s and %s", c, a, group.Activity)
			}
			seen[EntryExpense][c] = group.Activity
		}
	}
}
