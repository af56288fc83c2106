package core

// Summary is a derived view over the full ledger; it is never persisted and
// is recomputed from scratch on every request.
type Summary struct {
	TotalIncome  Money
	TotalExpense Money
	Balance      Money
}

// ComputeSummary folds the transaction set into per-category totals.
// Transactions whose category is neither income nor expense contribute to
// neither accumulator; insert-time validation keeps such rows out of new
// data, but the reducer stays tolerant of anything already stored.
func ComputeSummary(txs []Transaction) Summary {
	var income, expense int64
	for _, t := range txs {
		switch t.Category {
		case Income:
			income += t.Amount.Cents
		case Expense:
			expense += t.Amount.Cents
		}
	}
	return Summary{
		TotalIncome:  Money{Cents: income},
		TotalExpense: Money{Cents: expense},
		Balance:      Money{Cents: income - expense},
	}
}
