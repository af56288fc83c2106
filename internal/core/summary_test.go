package core

import (
	"testing"
	"time"
)

func tx(cat Category, cents int64) Transaction {
	return Transaction{
		OccurredOn:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Description: "t",
		Category:    cat,
		Amount:      Money{Cents: cents},
	}
}

func TestComputeSummary(t *testing.T) {
	// Scenario from the club books: one membership income, two court rentals.
	txs := []Transaction{
		tx(Income, 5000000),   // 50000
		tx(Expense, 7500000),  // 75000
		tx(Expense, 20000000), // 200000
	}
	s := ComputeSummary(txs)
	if s.TotalIncome.Cents != 5000000 {
		t.Fatalf("TotalIncome = %d", s.TotalIncome.Cents)
	}
	if s.TotalExpense.Cents != 27500000 {
		t.Fatalf("TotalExpense = %d", s.TotalExpense.Cents)
	}
	if s.Balance.Cents != -22500000 {
		t.Fatalf("Balance = %d", s.Balance.Cents)
	}
}

func TestComputeSummaryBalanceIdentity(t *testing.T) {
	cases := [][]Transaction{
		nil,
		{},
		{tx(Income, 1)},
		{tx(Expense, 1)},
		{tx(Income, 123456), tx(Expense, 654321), tx(Income, 99)},
	}
	for i, txs := range cases {
		s := ComputeSummary(txs)
		if s.Balance.Cents != s.TotalIncome.Cents-s.TotalExpense.Cents {
			t.Fatalf("case %d: balance identity broken: %d != %d - %d",
				i, s.Balance.Cents, s.TotalIncome.Cents, s.TotalExpense.Cents)
		}
	}
}

func TestComputeSummaryIgnoresUnknownCategory(t *testing.T) {
	txs := []Transaction{
		tx(Income, 1000),
		tx(Category("transfer"), 999999),
		tx(Expense, 400),
	}
	s := ComputeSummary(txs)
	if s.TotalIncome.Cents != 1000 || s.TotalExpense.Cents != 400 {
		t.Fatalf("unknown category leaked into totals: %+v", s)
	}
}

func TestComputeSummaryEmpty(t *testing.T) {
	s := ComputeSummary(nil)
	if s.TotalIncome.Cents != 0 || s.TotalExpense.Cents != 0 || s.Balance.Cents != 0 {
		t.Fatalf("empty ledger should produce zero summary: %+v", s)
	}
}
