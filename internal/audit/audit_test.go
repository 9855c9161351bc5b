package audit_test

import (
	"testing"

	"rsm/internal/audit"
	"rsm/internal/events"
	"rsm/internal/store"
	"rsm/internal/testutil"
)

func seedLog(t *testing.T, l *audit.Logger) {
	t.Helper()
	l.Log(audit.ActionCreate, "customer", "1", "created customer Alice Nguyen")
	l.Log(audit.ActionCreate, "part", "1", "created part SSD-1TB")
	l.Log(audit.ActionConsume, "workorder", "3", "consumed 2 x SSD-1TB")
	l.Log(audit.ActionClose, "workorder", "3", "closed work order")
	l.Log(audit.ActionIssue, "invoice", "1", "issued invoice INV-2026-00001")
}

func TestLog_WritesRow(t *testing.T) {
	s := testutil.OpenTestStore(t)
	l := &audit.Logger{DB: s.DB, Operator: "dana"}

	l.Log(audit.ActionCreate, "customer", "12", "created customer Alice Nguyen")

	entries, err := l.List(audit.Filter{})
	if err != nil {
		t.Fatalf("Failed to list change log: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Operator != "dana" {
		t.Errorf("Expected operator dana, got %q", e.Operator)
	}
	if e.Action != audit.ActionCreate || e.Entity != "customer" || e.RecordID != "12" {
		t.Errorf("Unexpected entry: %+v", e)
	}
	if e.Summary != "created customer Alice Nguyen" {
		t.Errorf("Unexpected summary: %q", e.Summary)
	}
	if e.CreatedAt == "" {
		t.Error("Expected created_at to be stamped")
	}
}

func TestLog_OperatorDefaultsToSystem(t *testing.T) {
	s := testutil.OpenTestStore(t)
	l := &audit.Logger{DB: s.DB}

	l.Log(audit.ActionSeed, "database", "0", "seeded demo data")

	entries, err := l.List(audit.Filter{})
	if err != nil {
		t.Fatalf("Failed to list change log: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].Operator != "system" {
		t.Errorf("Expected operator system, got %q", entries[0].Operator)
	}
}

func TestLog_NilLoggerIsNoOp(t *testing.T) {
	var l *audit.Logger
	l.Log(audit.ActionCreate, "customer", "1", "ignored")

	detached := &audit.Logger{}
	detached.Log(audit.ActionCreate, "customer", "1", "ignored")
}

func TestLog_BroadcastsChange(t *testing.T) {
	s := testutil.OpenTestStore(t)
	hub := events.NewHub()
	ch := hub.Subscribe()
	l := &audit.Logger{DB: s.DB, Operator: "dana", Hub: hub}

	l.Log(audit.ActionClose, "workorder", "9", "closed work order")

	e := <-ch
	if e.Entity != "workorder" || e.Action != audit.ActionClose || e.RecordID != "9" {
		t.Errorf("Unexpected event: %+v", e)
	}
}

func TestList_NewestFirst(t *testing.T) {
	s := testutil.OpenTestStore(t)
	l := &audit.Logger{DB: s.DB, Operator: "dana"}
	seedLog(t, l)

	entries, err := l.List(audit.Filter{})
	if err != nil {
		t.Fatalf("Failed to list change log: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("Expected 5 entries, got %d", len(entries))
	}
	if entries[0].Action != audit.ActionIssue {
		t.Errorf("Expected the latest entry first, got %s", entries[0].Action)
	}
	if entries[4].Summary != "created customer Alice Nguyen" {
		t.Errorf("Expected the oldest entry last, got %q", entries[4].Summary)
	}
}

func TestList_Filters(t *testing.T) {
	s := testutil.OpenTestStore(t)
	l := &audit.Logger{DB: s.DB, Operator: "dana"}
	seedLog(t, l)

	cases := []struct {
		name   string
		filter audit.Filter
		want   int
	}{
		{"by entity", audit.Filter{Entity: "workorder"}, 2},
		{"by action", audit.Filter{Action: audit.ActionCreate}, 2},
		{"entity and action", audit.Filter{Entity: "workorder", Action: audit.ActionClose}, 1},
		{"search matches summary", audit.Filter{Search: "SSD-1TB"}, 2},
		{"search matches record id", audit.Filter{Search: "3"}, 2},
		{"search is substring", audit.Filter{Search: "invoice INV"}, 1},
		{"from bound includes all", audit.Filter{From: "2000-01-01"}, 5},
		{"from bound excludes all", audit.Filter{From: "2999-01-01"}, 0},
		{"to bound includes all", audit.Filter{To: "2999-12-31"}, 5},
		{"to bound excludes all", audit.Filter{To: "2000-01-01"}, 0},
		{"limit", audit.Filter{Limit: 2}, 2},
		{"no match", audit.Filter{Entity: "equipment"}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entries, err := l.List(tc.filter)
			if err != nil {
				t.Fatalf("Failed to list change log: %v", err)
			}
			if len(entries) != tc.want {
				t.Errorf("Expected %d entries, got %d", tc.want, len(entries))
			}
		})
	}
}

func TestList_LimitKeepsNewest(t *testing.T) {
	s := testutil.OpenTestStore(t)
	l := &audit.Logger{DB: s.DB, Operator: "dana"}
	seedLog(t, l)

	entries, err := l.List(audit.Filter{Limit: 1})
	if err != nil {
		t.Fatalf("Failed to list change log: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].Entity != "invoice" {
		t.Errorf("Expected the newest entry, got %+v", entries[0])
	}
}

func TestList_StoreFailureIsPersistenceError(t *testing.T) {
	s := testutil.OpenTestStore(t)
	l := &audit.Logger{DB: s.DB, Operator: "dana"}
	seedLog(t, l)
	s.Close()

	_, err := l.List(audit.Filter{})
	if !store.IsPersistence(err) {
		t.Errorf("Expected persistence error, got %v", err)
	}
}
