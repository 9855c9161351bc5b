// Package testutil holds shared test fixtures: an in-memory migrated
// store and factories for the records most tests need.
package testutil

import (
	"fmt"
	"testing"

	"rsm/internal/models"
	"rsm/internal/store"
)

// OpenTestStore opens a fully migrated in-memory store that closes with
// the test.
func OpenTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// MakeCustomer inserts a customer and returns it.
func MakeCustomer(t *testing.T, s *store.Store, first, last string) *models.Customer {
	t.Helper()
	c := &models.Customer{
		FirstName: first,
		LastName:  last,
		Phone:     "555-0000",
		Email:     fmt.Sprintf("%s.%s@example.com", first, last),
	}
	if _, err := s.CreateCustomer(c); err != nil {
		t.Fatalf("Failed to create test customer: %v", err)
	}
	return c
}

// MakeEquipment inserts an equipment record for a customer and returns it.
func MakeEquipment(t *testing.T, s *store.Store, customerID int64, brand, serial string) *models.Equipment {
	t.Helper()
	e := &models.Equipment{
		CustomerID: customerID,
		Make:       brand,
		Model:      "Test Model",
		Serial:     serial,
	}
	if _, err := s.CreateEquipment(e); err != nil {
		t.Fatalf("Failed to create test equipment: %v", err)
	}
	return e
}

// MakeTechnician inserts a technician and returns it.
func MakeTechnician(t *testing.T, s *store.Store, name string) *models.Technician {
	t.Helper()
	tech := &models.Technician{Name: name}
	if _, err := s.CreateTechnician(tech); err != nil {
		t.Fatalf("Failed to create test technician: %v", err)
	}
	return tech
}

// MakePart inserts a part and returns it.
func MakePart(t *testing.T, s *store.Store, sku string, qty int) *models.Part {
	t.Helper()
	p := &models.Part{
		SKU:         sku,
		Description: "Test part " + sku,
		Quantity:    qty,
		UnitCost:    9.99,
	}
	if _, err := s.CreatePart(p); err != nil {
		t.Fatalf("Failed to create test part: %v", err)
	}
	return p
}

// MakeWorkOrder inserts an open work order for the equipment and returns
// it.
func MakeWorkOrder(t *testing.T, s *store.Store, equipmentID int64, description string) *models.WorkOrder {
	t.Helper()
	w := &models.WorkOrder{EquipmentID: equipmentID, Description: description}
	if _, err := s.CreateWorkOrder(w); err != nil {
		t.Fatalf("Failed to create test work order: %v", err)
	}
	return w
}

// SetDateOpened rewrites a work order's opening date, for tests that need
// a known chronology.
func SetDateOpened(t *testing.T, s *store.Store, workorderID int64, date string) {
	t.Helper()
	if _, err := s.DB.Exec("UPDATE work_orders SET date_opened = ? WHERE id = ?", date, workorderID); err != nil {
		t.Fatalf("Failed to set date_opened: %v", err)
	}
}
