package reports

import (
	"context"
	"testing"
	"time"

	"clientledger/internal/core"
	"clientledger/internal/feed/memory"
)

func seedStore() *memory.Store {
	tx := func(year int, month time.Month, day int, typ core.TxType, cents int64) core.Transaction {
		return core.Transaction{
			Date:   time.Date(year, month, day, 12, 0, 0, 0, time.Local),
			Type:   typ,
			Amount: core.Money{Cents: cents},
		}
	}
	return memory.New(map[string][]core.Job{
		"u1": {
			{Name: "deck", Client: "A", Transactions: []core.Transaction{tx(2023, 1, 1, core.TypeIncome, 10000)}},
			{Name: "fence", Client: "A", Transactions: []core.Transaction{tx(2024, 6, 1, core.TypeExpense, 4000)}},
			{Name: "patio", Client: "B", Transactions: []core.Transaction{tx(2024, 1, 1, core.TypeIncome, 5000)}},
		},
	})
}

func newTestService(store *memory.Store) *Service {
	s := NewService(store, 16, time.Minute)
	s.now = func() time.Time { return time.Date(2026, 8, 30, 0, 0, 0, 0, time.Local) }
	return s
}

func TestOverviewAllTime(t *testing.T) {
	s := newTestService(seedStore())

	ov, err := s.Overview(context.Background(), "u1", core.AllTime())
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if len(ov.Clients) != 2 {
		t.Fatalf("got %d clients, want 2", len(ov.Clients))
	}
	// Ascending all-time revenue: B (50.00) before A (60.00).
	if ov.Clients[0].Name != "B" || ov.Clients[1].Name != "A" {
		t.Fatalf("order = %q, %q", ov.Clients[0].Name, ov.Clients[1].Name)
	}
	a := ov.Clients[1]
	if a.Income != 100 || a.Expenses != 40 || a.Revenue != 60 || a.JobCount != 2 {
		t.Fatalf("A summary = %+v", a)
	}
}

func TestOverviewYearScopedTotalsKeepAllTimeOrder(t *testing.T) {
	s := newTestService(seedStore())

	ov, err := s.Overview(context.Background(), "u1", core.YearOf(2024))
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	// Ranking stays all-time even under a year selection.
	if ov.Clients[0].Name != "B" || ov.Clients[1].Name != "A" {
		t.Fatalf("order = %q, %q", ov.Clients[0].Name, ov.Clients[1].Name)
	}
	a := ov.Clients[1]
	if a.Income != 0 || a.Expenses != 40 {
		t.Fatalf("A 2024 = %+v", a)
	}
	b := ov.Clients[0]
	if b.Income != 50 || b.Expenses != 0 {
		t.Fatalf("B 2024 = %+v", b)
	}
}

func TestOverviewEmptyFeed(t *testing.T) {
	s := newTestService(memory.New(nil))

	ov, err := s.Overview(context.Background(), "nobody", core.AllTime())
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if len(ov.Clients) != 0 {
		t.Fatalf("empty feed produced %d clients", len(ov.Clients))
	}

	ps, err := s.Periods(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Periods: %v", err)
	}
	if len(ps) != 2 || !ps[0].IsAllTime() || ps[1].Year() != 2026 {
		t.Fatalf("empty catalog = %v", ps)
	}
}

func TestPeriodsCatalog(t *testing.T) {
	s := newTestService(seedStore())

	ps, err := s.Periods(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Periods: %v", err)
	}
	want := []core.Period{core.AllTime(), core.YearOf(2026), core.YearOf(2024), core.YearOf(2023)}
	if len(ps) != len(want) {
		t.Fatalf("Periods = %v, want %v", ps, want)
	}
	for i := range want {
		if ps[i] != want[i] {
			t.Fatalf("Periods[%d] = %v, want %v", i, ps[i], want[i])
		}
	}
}

func TestClientDetail(t *testing.T) {
	s := newTestService(seedStore())

	d, ok, err := s.ClientDetail(context.Background(), "u1", "A", core.AllTime())
	if err != nil || !ok {
		t.Fatalf("ClientDetail: ok=%v err=%v", ok, err)
	}
	if d.Income != 100 || d.Expenses != 40 || d.Revenue != 60 {
		t.Fatalf("detail totals = %+v", d)
	}
	if len(d.Jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(d.Jobs))
	}
	deck := d.Jobs[0]
	if len(deck.IncomeTransactions) != 1 || len(deck.ExpenseTransactions) != 0 {
		t.Fatalf("deck columns = %+v", deck)
	}
	if deck.IncomeTransactions[0].Date != "1/01" || deck.IncomeTransactions[0].Amount != 100 {
		t.Fatalf("deck tx = %+v", deck.IncomeTransactions[0])
	}

	_, ok, err = s.ClientDetail(context.Background(), "u1", "missing", core.AllTime())
	if err != nil {
		t.Fatalf("ClientDetail(missing): %v", err)
	}
	if ok {
		t.Fatal("expected not found for unknown client")
	}
}

func TestMemoizationAndInvalidate(t *testing.T) {
	store := seedStore()
	s := newTestService(store)
	ctx := context.Background()

	before, err := s.Overview(ctx, "u1", core.AllTime())
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}

	// Change the underlying feed; the memoized payload still serves.
	store.Replace("u1", nil)
	cached, err := s.Overview(ctx, "u1", core.AllTime())
	if err != nil {
		t.Fatalf("Overview (cached): %v", err)
	}
	if len(cached.Clients) != len(before.Clients) {
		t.Fatal("expected cached overview before invalidation")
	}

	if n := s.Invalidate("u1"); n == 0 {
		t.Fatal("Invalidate removed nothing")
	}
	after, err := s.Overview(ctx, "u1", core.AllTime())
	if err != nil {
		t.Fatalf("Overview (fresh): %v", err)
	}
	if len(after.Clients) != 0 {
		t.Fatalf("expected fresh recomputation, got %d clients", len(after.Clients))
	}
}
