package sheets

import (
	"testing"

	"clientledger/internal/core"
	"clientledger/internal/reports"
)

func TestOverviewRows(t *testing.T) {
	ov := reports.Overview{
		Period: core.YearOf(2024),
		Clients: []reports.ClientSummary{
			{Name: "B", Income: 50, Expenses: 0, Revenue: 50},
			{Name: "A", Income: 100, Expenses: 40, Revenue: 60},
		},
	}

	rows := overviewRows(ov)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0][0] != "2024" || rows[0][1] != "B" || rows[0][4] != 50.0 {
		t.Fatalf("first row = %v", rows[0])
	}
	if rows[1][1] != "A" || rows[1][2] != 100.0 {
		t.Fatalf("second row = %v", rows[1])
	}
}

func TestOverviewRowsEmpty(t *testing.T) {
	if rows := overviewRows(reports.Overview{Period: core.AllTime()}); len(rows) != 0 {
		t.Fatalf("rows = %v, want none", rows)
	}
}
