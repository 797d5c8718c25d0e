package core

import "time"

// UnknownClient is the bucket for jobs that carry no client name.
const UnknownClient = "Unknown Client"

type (
	// TxType is the closed classification tag for a transaction. The feed
	// is string-typed; ParseTxType maps anything that is not exactly
	// "income" to TypeExpense.
	TxType string

	// Transaction is a single dated money movement on a job. Amount is
	// always non-negative; whether it counts as income or expense comes
	// from Type alone, never from the sign of the amount. A zero Date
	// means the feed value was missing or unparseable.
	Transaction struct {
		ID     string
		Date   time.Time
		Type   TxType
		Amount Money
		Note   string
	}

	// Job is one unit of work belonging to a client, as delivered by the
	// feed. Read-only within this package.
	Job struct {
		ID           string
		Name         string
		Client       string
		Transactions []Transaction
	}

	// Client is a derived grouping of jobs under one client name with
	// all-time totals. It is never persisted.
	Client struct {
		Name          string
		Jobs          []Job
		TotalIncome   Money
		TotalExpenses Money
	}

	// Aggregate holds income and expense totals for some job set and
	// period. Both are non-negative; revenue may not be.
	Aggregate struct {
		Income   Money
		Expenses Money
	}
)

const (
	TypeIncome  TxType = "income"
	TypeExpense TxType = "expense"
)

// ParseTxType normalizes a feed type string. Only the exact literal
// "income" classifies as income; every other value, including empty and
// unknown strings, is treated as an expense. That mirrors the upstream
// feed contract, where type is a duck-typed string.
func ParseTxType(s string) TxType {
	if s == string(TypeIncome) {
		return TypeIncome
	}
	return TypeExpense
}

// ClientName resolves the grouping key for a job, substituting the
// UnknownClient sentinel when the feed omitted the client.
func (j Job) ClientName() string {
	if j.Client == "" {
		return UnknownClient
	}
	return j.Client
}

// Revenue is income minus expenses in cents. Negative when the client
// cost more than it earned.
func (c Client) Revenue() int64 {
	return c.TotalIncome.Cents - c.TotalExpenses.Cents
}

// Revenue is income minus expenses in cents.
func (a Aggregate) Revenue() int64 {
	return a.Income.Cents - a.Expenses.Cents
}
