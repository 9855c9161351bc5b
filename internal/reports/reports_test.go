package reports_test

import (
	"testing"

	"rsm/internal/ledger"
	"rsm/internal/models"
	"rsm/internal/reports"
	"rsm/internal/store"
	"rsm/internal/testutil"
)

func setupReports(t *testing.T) (*store.Store, *reports.Reports) {
	t.Helper()
	s := testutil.OpenTestStore(t)
	return s, reports.New(s)
}

func TestOpenWorkOrders_OldestFirst(t *testing.T) {
	s, rep := setupReports(t)
	c := testutil.MakeCustomer(t, s, "Alice", "Nguyen")
	e := testutil.MakeEquipment(t, s, c.ID, "Dell", "DL-1")

	newest := testutil.MakeWorkOrder(t, s, e.ID, "screen flicker")
	oldest := testutil.MakeWorkOrder(t, s, e.ID, "no boot")
	middle := testutil.MakeWorkOrder(t, s, e.ID, "fan noise")
	closed := testutil.MakeWorkOrder(t, s, e.ID, "done already")

	testutil.SetDateOpened(t, s, newest.ID, "2026-03-01")
	testutil.SetDateOpened(t, s, oldest.ID, "2026-01-05")
	testutil.SetDateOpened(t, s, middle.ID, "2026-02-10")
	testutil.SetDateOpened(t, s, closed.ID, "2026-01-01")
	if _, err := s.DB.Exec("UPDATE work_orders SET status='closed', date_closed='2026-01-02' WHERE id=?", closed.ID); err != nil {
		t.Fatalf("Failed to close work order: %v", err)
	}

	open, err := rep.OpenWorkOrders()
	if err != nil {
		t.Fatalf("Failed to list open work orders: %v", err)
	}
	if len(open) != 3 {
		t.Fatalf("Expected 3 open work orders, got %d", len(open))
	}
	wantOrder := []int64{oldest.ID, middle.ID, newest.ID}
	for i, want := range wantOrder {
		if open[i].ID != want {
			t.Errorf("Position %d: expected work order %d, got %d", i, want, open[i].ID)
		}
	}
	if open[0].CustomerName != "Alice Nguyen" {
		t.Errorf("Expected joined customer name, got %q", open[0].CustomerName)
	}
	if open[0].EquipmentMake != "Dell" {
		t.Errorf("Expected joined equipment make, got %q", open[0].EquipmentMake)
	}
}

func TestWorkOrderHistory_NewestFirst(t *testing.T) {
	s, rep := setupReports(t)
	alice := testutil.MakeCustomer(t, s, "Alice", "Nguyen")
	marcus := testutil.MakeCustomer(t, s, "Marcus", "Webb")
	laptop := testutil.MakeEquipment(t, s, alice.ID, "Dell", "DL-1")
	desktop := testutil.MakeEquipment(t, s, alice.ID, "HP", "HP-1")
	other := testutil.MakeEquipment(t, s, marcus.ID, "Lenovo", "LN-1")

	first := testutil.MakeWorkOrder(t, s, laptop.ID, "no boot")
	second := testutil.MakeWorkOrder(t, s, desktop.ID, "fan noise")
	third := testutil.MakeWorkOrder(t, s, laptop.ID, "screen flicker")
	theirs := testutil.MakeWorkOrder(t, s, other.ID, "keyboard sticky")

	testutil.SetDateOpened(t, s, first.ID, "2026-01-05")
	testutil.SetDateOpened(t, s, second.ID, "2026-02-10")
	testutil.SetDateOpened(t, s, third.ID, "2026-03-01")
	testutil.SetDateOpened(t, s, theirs.ID, "2026-03-15")

	history, err := rep.WorkOrderHistory(alice.ID)
	if err != nil {
		t.Fatalf("Failed to get history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("Expected 3 work orders across both machines, got %d", len(history))
	}
	wantOrder := []int64{third.ID, second.ID, first.ID}
	for i, want := range wantOrder {
		if history[i].ID != want {
			t.Errorf("Position %d: expected work order %d, got %d", i, want, history[i].ID)
		}
	}
	for _, h := range history {
		if h.CustomerID != alice.ID {
			t.Errorf("Expected only the customer's own orders, got one for customer %d", h.CustomerID)
		}
	}
}

func TestWorkOrderHistory_UnknownCustomer(t *testing.T) {
	_, rep := setupReports(t)

	_, err := rep.WorkOrderHistory(404)
	if !store.IsNotFound(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}
}

func TestWorkOrderHistory_EmptyForNewCustomer(t *testing.T) {
	s, rep := setupReports(t)
	c := testutil.MakeCustomer(t, s, "Priya", "Shah")

	history, err := rep.WorkOrderHistory(c.ID)
	if err != nil {
		t.Fatalf("Failed to get history: %v", err)
	}
	if history == nil {
		t.Error("Expected empty slice, got nil")
	}
	if len(history) != 0 {
		t.Errorf("Expected no history, got %d orders", len(history))
	}
}

func TestWorkDetails_ChronologicalOrder(t *testing.T) {
	s, rep := setupReports(t)
	c := testutil.MakeCustomer(t, s, "Alice", "Nguyen")
	e := testutil.MakeEquipment(t, s, c.ID, "Dell", "DL-1")
	w := testutil.MakeWorkOrder(t, s, e.ID, "no boot")

	// Inserted out of date order on purpose.
	_, err := s.DB.Exec(
		"INSERT INTO work_details (workorder_id, date, description) VALUES (?, ?, ?), (?, ?, ?)",
		w.ID, "2026-02-05", "replaced drive", w.ID, "2026-02-01", "ran diagnostics")
	if err != nil {
		t.Fatalf("Failed to insert details: %v", err)
	}

	details, err := rep.WorkDetails(w.ID)
	if err != nil {
		t.Fatalf("Failed to get details: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("Expected 2 details, got %d", len(details))
	}
	if details[0].Date != "2026-02-01" || details[1].Date != "2026-02-05" {
		t.Errorf("Expected details oldest first, got %s then %s", details[0].Date, details[1].Date)
	}

	if _, err := rep.WorkDetails(404); !store.IsNotFound(err) {
		t.Errorf("Expected not-found error for unknown order, got %v", err)
	}
}

func TestPartUsages(t *testing.T) {
	s, rep := setupReports(t)
	c := testutil.MakeCustomer(t, s, "Alice", "Nguyen")
	e := testutil.MakeEquipment(t, s, c.ID, "Dell", "DL-1")
	w := testutil.MakeWorkOrder(t, s, e.ID, "no boot")
	p := testutil.MakePart(t, s, "SSD-512", 10)

	l := ledger.New(s)
	if _, err := l.ConsumePart(w.ID, p.ID, 2); err != nil {
		t.Fatalf("Failed to consume part: %v", err)
	}

	usages, err := rep.PartUsages(w.ID)
	if err != nil {
		t.Fatalf("Failed to get usages: %v", err)
	}
	if len(usages) != 1 {
		t.Fatalf("Expected 1 usage, got %d", len(usages))
	}
	if usages[0].SKU != "SSD-512" || usages[0].Quantity != 2 {
		t.Errorf("Expected 2 x SSD-512, got %d x %s", usages[0].Quantity, usages[0].SKU)
	}

	if _, err := rep.PartUsages(404); !store.IsNotFound(err) {
		t.Errorf("Expected not-found error for unknown order, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	s, rep := setupReports(t)
	alice := testutil.MakeCustomer(t, s, "Alice", "Nguyen")
	testutil.MakeCustomer(t, s, "Marcus", "Webb")
	e := testutil.MakeEquipment(t, s, alice.ID, "Dell", "DL-7080-4431")
	w := testutil.MakeWorkOrder(t, s, e.ID, "Will Not Boot after update")

	t.Run("customer by partial name, case-insensitive", func(t *testing.T) {
		results, err := rep.Search("NGU")
		if err != nil {
			t.Fatalf("Failed to search: %v", err)
		}
		if len(results.Customers) != 1 || results.Customers[0].ID != alice.ID {
			t.Errorf("Expected to find Alice Nguyen, got %d customers", len(results.Customers))
		}
	})

	t.Run("customer by full name", func(t *testing.T) {
		results, err := rep.Search("alice nguyen")
		if err != nil {
			t.Fatalf("Failed to search: %v", err)
		}
		if len(results.Customers) != 1 {
			t.Errorf("Expected 1 customer for full-name search, got %d", len(results.Customers))
		}
	})

	t.Run("customer by phone", func(t *testing.T) {
		results, err := rep.Search("555-0000")
		if err != nil {
			t.Fatalf("Failed to search: %v", err)
		}
		if len(results.Customers) != 2 {
			t.Errorf("Expected both fixture customers by shared phone, got %d", len(results.Customers))
		}
	})

	t.Run("work order by description, case-insensitive", func(t *testing.T) {
		results, err := rep.Search("not boot")
		if err != nil {
			t.Fatalf("Failed to search: %v", err)
		}
		if len(results.WorkOrders) != 1 || results.WorkOrders[0].ID != w.ID {
			t.Errorf("Expected to find the work order, got %d", len(results.WorkOrders))
		}
		if len(results.Customers) != 0 {
			t.Errorf("Expected no customer matches, got %d", len(results.Customers))
		}
	})

	t.Run("work order by equipment serial", func(t *testing.T) {
		results, err := rep.Search("7080-4431")
		if err != nil {
			t.Fatalf("Failed to search: %v", err)
		}
		if len(results.WorkOrders) != 1 {
			t.Errorf("Expected to find the order by serial, got %d", len(results.WorkOrders))
		}
	})

	t.Run("blank term returns empty lists", func(t *testing.T) {
		results, err := rep.Search("   ")
		if err != nil {
			t.Fatalf("Failed to search: %v", err)
		}
		if results.Customers == nil || results.WorkOrders == nil {
			t.Error("Expected empty slices, got nil")
		}
		if len(results.Customers) != 0 || len(results.WorkOrders) != 0 {
			t.Errorf("Expected no matches for blank term, got %d customers and %d orders",
				len(results.Customers), len(results.WorkOrders))
		}
	})

	t.Run("no matches", func(t *testing.T) {
		results, err := rep.Search("zzz-does-not-exist")
		if err != nil {
			t.Fatalf("Failed to search: %v", err)
		}
		if len(results.Customers) != 0 || len(results.WorkOrders) != 0 {
			t.Errorf("Expected nothing, got %d customers and %d orders",
				len(results.Customers), len(results.WorkOrders))
		}
	})
}

func TestDashboard(t *testing.T) {
	s, rep := setupReports(t)
	c := testutil.MakeCustomer(t, s, "Alice", "Nguyen")
	e := testutil.MakeEquipment(t, s, c.ID, "Dell", "DL-1")
	testutil.MakeTechnician(t, s, "Dana Ortiz")
	testutil.MakePart(t, s, "SSD-512", 8)
	testutil.MakePart(t, s, "PSU-450", 2)

	var orders []*models.WorkOrder
	for _, desc := range []string{"a", "b", "c", "d", "e", "f"} {
		orders = append(orders, testutil.MakeWorkOrder(t, s, e.ID, desc))
	}
	if _, err := s.DB.Exec("UPDATE work_orders SET status='closed', date_closed='2026-02-01' WHERE id=?", orders[0].ID); err != nil {
		t.Fatalf("Failed to close work order: %v", err)
	}

	stats, err := rep.Dashboard(5)
	if err != nil {
		t.Fatalf("Failed to build dashboard: %v", err)
	}

	if stats.Customers != 1 || stats.Equipment != 1 || stats.Technicians != 1 || stats.Parts != 2 {
		t.Errorf("Expected counts 1/1/1/2, got %d/%d/%d/%d",
			stats.Customers, stats.Equipment, stats.Technicians, stats.Parts)
	}
	if stats.WorkOrdersByStatus[models.WorkOrderOpen] != 5 {
		t.Errorf("Expected 5 open orders, got %d", stats.WorkOrdersByStatus[models.WorkOrderOpen])
	}
	if stats.WorkOrdersByStatus[models.WorkOrderClosed] != 1 {
		t.Errorf("Expected 1 closed order, got %d", stats.WorkOrdersByStatus[models.WorkOrderClosed])
	}
	if len(stats.LowStock) != 1 || stats.LowStock[0].SKU != "PSU-450" {
		t.Errorf("Expected PSU-450 as the only low-stock part, got %d parts", len(stats.LowStock))
	}
	if len(stats.RecentWorkOrders) != 5 {
		t.Fatalf("Expected recent list capped at 5, got %d", len(stats.RecentWorkOrders))
	}
	if stats.RecentWorkOrders[0].ID != orders[5].ID {
		t.Errorf("Expected newest order %d first, got %d", orders[5].ID, stats.RecentWorkOrders[0].ID)
	}
}

func TestReports_StoreFailureIsPersistenceError(t *testing.T) {
	s, rep := setupReports(t)
	c := testutil.MakeCustomer(t, s, "Alice", "Nguyen")
	s.Close()

	cases := []struct {
		name string
		call func() error
	}{
		{"OpenWorkOrders", func() error { _, err := rep.OpenWorkOrders(); return err }},
		{"WorkOrderHistory", func() error { _, err := rep.WorkOrderHistory(c.ID); return err }},
		{"WorkDetails", func() error { _, err := rep.WorkDetails(1); return err }},
		{"PartUsages", func() error { _, err := rep.PartUsages(1); return err }},
		{"Search", func() error { _, err := rep.Search("alice"); return err }},
		{"Dashboard", func() error { _, err := rep.Dashboard(5); return err }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.call(); !store.IsPersistence(err) {
				t.Errorf("Expected persistence error, got %v", err)
			}
		})
	}
}
