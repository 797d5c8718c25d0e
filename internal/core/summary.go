package core

import "sort"

// Classify resolves how a single transaction contributes to totals: the
// absolute amount, and whether it lands on the income side. Everything
// that is not income is an expense (see ParseTxType).
func Classify(tx Transaction) (isIncome bool, amount Money) {
	return tx.Type == TypeIncome, tx.Amount.Abs()
}

// AggregateJob folds a job's transactions into income and expense totals
// for the given period. Missing transaction lists and malformed fields
// contribute nothing; both totals are always non-negative.
func AggregateJob(job Job, p Period) Aggregate {
	var agg Aggregate
	for _, tx := range job.Transactions {
		if !p.Matches(tx) {
			continue
		}
		income, amount := Classify(tx)
		if income {
			agg.Income.Cents += amount.Cents
		} else {
			agg.Expenses.Cents += amount.Cents
		}
	}
	return agg
}

// GroupClients partitions jobs into one bucket per client name in a
// single pass. Bucket order is the first-seen order of each distinct
// client in the input, which downstream ranking relies on for stable
// ties. Totals are all-time, ungated by any period selection.
func GroupClients(jobs []Job) []Client {
	index := make(map[string]int, len(jobs))
	clients := make([]Client, 0, len(jobs))

	for _, job := range jobs {
		name := job.ClientName()
		i, ok := index[name]
		if !ok {
			i = len(clients)
			index[name] = i
			clients = append(clients, Client{Name: name})
		}
		clients[i].Jobs = append(clients[i].Jobs, job)
	}

	for i := range clients {
		for _, job := range clients[i].Jobs {
			agg := AggregateJob(job, AllTime())
			clients[i].TotalIncome.Cents += agg.Income.Cents
			clients[i].TotalExpenses.Cents += agg.Expenses.Cents
		}
	}
	return clients
}

// RankByRevenue orders clients by ascending all-time net revenue. The
// sort is stable: clients with equal revenue keep their GroupClients
// order. The input slice is not modified.
func RankByRevenue(clients []Client) []Client {
	ranked := make([]Client, len(clients))
	copy(ranked, clients)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Revenue() < ranked[j].Revenue()
	})
	return ranked
}

// FilterTransactions returns the job's transactions that fall inside the
// period, preserving feed order.
func FilterTransactions(job Job, p Period) []Transaction {
	if p.IsAllTime() {
		out := make([]Transaction, len(job.Transactions))
		copy(out, job.Transactions)
		return out
	}
	var out []Transaction
	for _, tx := range job.Transactions {
		if p.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// SplitColumns separates transactions into the income and expense
// columns of the job detail view, each sorted by date descending.
func SplitColumns(txs []Transaction) (income, expenses []Transaction) {
	for _, tx := range txs {
		if isIncome, _ := Classify(tx); isIncome {
			income = append(income, tx)
		} else {
			expenses = append(expenses, tx)
		}
	}
	byDateDesc := func(s []Transaction) {
		sort.SliceStable(s, func(i, j int) bool {
			return s[i].Date.After(s[j].Date)
		})
	}
	byDateDesc(income)
	byDateDesc(expenses)
	return income, expenses
}
