// Package reports turns feed snapshots into the view payloads the API
// serves: the ranked client overview, the period catalog and the
// per-client job detail. Every payload is recomputed from a fresh
// snapshot; short-lived memoization sits in front purely as a
// performance option.
package reports

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"clientledger/internal/cache"
	"clientledger/internal/core"
	"clientledger/internal/feed"
)

type (
	// Overview is the ranked client list for one user and period.
	// Order is always ascending all-time net revenue — the period
	// selection scopes the displayed totals, not the ranking.
	Overview struct {
		Period  core.Period     `json:"period"`
		Clients []ClientSummary `json:"clients"`
	}

	ClientSummary struct {
		Name     string  `json:"name"`
		JobCount int     `json:"jobCount"`
		Income   float64 `json:"income"`
		Expenses float64 `json:"expenses"`
		Revenue  float64 `json:"revenue"`
	}

	// ClientDetail is the modal view: whole-client totals plus income
	// and expense columns per job, date-descending.
	ClientDetail struct {
		Name     string      `json:"name"`
		Period   core.Period `json:"period"`
		Income   float64     `json:"income"`
		Expenses float64     `json:"expenses"`
		Revenue  float64     `json:"revenue"`
		Jobs     []JobDetail `json:"jobs"`
	}

	JobDetail struct {
		Name                string            `json:"name"`
		Income              float64           `json:"income"`
		Expenses            float64           `json:"expenses"`
		IncomeTransactions  []TransactionView `json:"incomeTransactions"`
		ExpenseTransactions []TransactionView `json:"expenseTransactions"`
	}

	TransactionView struct {
		Date   string  `json:"date,omitempty"` // M/DD display label
		Amount float64 `json:"amount"`
		Note   string  `json:"note,omitempty"`
	}
)

type Service struct {
	source feed.JobSource

	overviews *cache.Cache[Overview]
	details   *cache.Cache[ClientDetail]
	periods   *cache.Cache[[]core.Period]

	now func() time.Time
}

func NewService(source feed.JobSource, cacheSize int, cacheTTL time.Duration) *Service {
	return &Service{
		source:    source,
		overviews: cache.New[Overview](cacheSize, cacheTTL),
		details:   cache.New[ClientDetail](cacheSize, cacheTTL),
		periods:   cache.New[[]core.Period](cacheSize, cacheTTL),
		now:       time.Now,
	}
}

// Overview returns the ranked client list for a user and period.
func (s *Service) Overview(ctx context.Context, userID string, p core.Period) (Overview, error) {
	key := userID + "|" + p.String()
	if ov, ok := s.overviews.Get(key); ok {
		slog.DebugContext(ctx, "Overview cache hit", "user_id", userID, "period", p.String())
		return ov, nil
	}

	jobs, err := s.source.ListJobs(ctx, userID)
	if err != nil {
		return Overview{}, fmt.Errorf("list jobs for overview: %w", err)
	}

	ranked := core.RankByRevenue(core.GroupClients(jobs))
	ov := Overview{Period: p, Clients: make([]ClientSummary, 0, len(ranked))}
	for _, c := range ranked {
		agg := clientAggregate(c, p)
		ov.Clients = append(ov.Clients, ClientSummary{
			Name:     c.Name,
			JobCount: len(c.Jobs),
			Income:   agg.Income.Units(),
			Expenses: agg.Expenses.Units(),
			Revenue:  core.Money{Cents: agg.Revenue()}.Units(),
		})
	}

	s.overviews.Set(key, ov)
	return ov, nil
}

// Periods returns the selectable-period catalog for a user.
func (s *Service) Periods(ctx context.Context, userID string) ([]core.Period, error) {
	if ps, ok := s.periods.Get(userID + "|"); ok {
		return ps, nil
	}

	jobs, err := s.source.ListJobs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list jobs for periods: %w", err)
	}

	ps := core.Periods(jobs, s.now())
	s.periods.Set(userID+"|", ps)
	return ps, nil
}

// ClientDetail returns the job breakdown for one client. The second
// return is false when the user has no client with that name.
func (s *Service) ClientDetail(ctx context.Context, userID, name string, p core.Period) (ClientDetail, bool, error) {
	key := userID + "|" + p.String() + "|" + name
	if d, ok := s.details.Get(key); ok {
		return d, true, nil
	}

	jobs, err := s.source.ListJobs(ctx, userID)
	if err != nil {
		return ClientDetail{}, false, fmt.Errorf("list jobs for client detail: %w", err)
	}

	for _, c := range core.GroupClients(jobs) {
		if c.Name != name {
			continue
		}
		d := buildClientDetail(c, p)
		s.details.Set(key, d)
		return d, true, nil
	}
	return ClientDetail{}, false, nil
}

// Invalidate drops every cached payload for a user and returns how many
// entries were removed. Called when a jobs-changed message arrives or a
// refresh is requested.
func (s *Service) Invalidate(userID string) int {
	prefix := userID + "|"
	n := s.overviews.PurgePrefix(prefix)
	n += s.details.PurgePrefix(prefix)
	n += s.periods.PurgePrefix(prefix)
	return n
}

// CleanExpired sweeps TTL-expired entries from all three caches.
func (s *Service) CleanExpired() int {
	return s.overviews.CleanExpired() + s.details.CleanExpired() + s.periods.CleanExpired()
}

func clientAggregate(c core.Client, p core.Period) core.Aggregate {
	var agg core.Aggregate
	for _, job := range c.Jobs {
		ja := core.AggregateJob(job, p)
		agg.Income.Cents += ja.Income.Cents
		agg.Expenses.Cents += ja.Expenses.Cents
	}
	return agg
}

func buildClientDetail(c core.Client, p core.Period) ClientDetail {
	agg := clientAggregate(c, p)
	d := ClientDetail{
		Name:     c.Name,
		Period:   p,
		Income:   agg.Income.Units(),
		Expenses: agg.Expenses.Units(),
		Revenue:  core.Money{Cents: agg.Revenue()}.Units(),
		Jobs:     make([]JobDetail, 0, len(c.Jobs)),
	}
	for _, job := range c.Jobs {
		ja := core.AggregateJob(job, p)
		income, expenses := core.SplitColumns(core.FilterTransactions(job, p))
		d.Jobs = append(d.Jobs, JobDetail{
			Name:                job.Name,
			Income:              ja.Income.Units(),
			Expenses:            ja.Expenses.Units(),
			IncomeTransactions:  transactionViews(income),
			ExpenseTransactions: transactionViews(expenses),
		})
	}
	return d
}

func transactionViews(txs []core.Transaction) []TransactionView {
	views := make([]TransactionView, 0, len(txs))
	for _, tx := range txs {
		views = append(views, TransactionView{
			Date:   dateLabel(tx.Date),
			Amount: tx.Amount.Abs().Units(),
			Note:   tx.Note,
		})
	}
	return views
}

// dateLabel renders the short M/DD form the client list shows, or empty
// for a missing date.
func dateLabel(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d/%02d", int(t.Month()), t.Day())
}
