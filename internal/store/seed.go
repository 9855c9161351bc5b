package store

import (
	"log"

	"rsm/internal/models"
)

// Seed populates an empty database with a small demo dataset. It is a
// no-op when customers already exist.
func (s *Store) Seed() error {
	n, err := s.CountCustomers()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	customers := []models.Customer{
		{FirstName: "Alice", LastName: "Nguyen", Phone: "555-0101", Address: "14 Birch Lane", Email: "alice.nguyen@example.com"},
		{FirstName: "Marcus", LastName: "Webb", Phone: "555-0102", Address: "982 Harbor Rd", Email: "mwebb@example.com"},
		{FirstName: "Priya", LastName: "Shah", Phone: "555-0103", Address: "7 Quarry St", Email: "priya.shah@example.com"},
	}
	for i := range customers {
		if _, err := s.CreateCustomer(&customers[i]); err != nil {
			return err
		}
	}

	equipment := []models.Equipment{
		{CustomerID: customers[0].ID, Make: "Dell", Model: "OptiPlex 7080", CPU: "i7-10700", RAM: "16GB", Storage: "512GB NVMe", OS: "Windows 11", Serial: "DL-7080-4431"},
		{CustomerID: customers[0].ID, Make: "Lenovo", Model: "ThinkPad T14", CPU: "Ryzen 5 PRO", RAM: "8GB", Storage: "256GB NVMe", OS: "Windows 10", Serial: "LN-T14-0092"},
		{CustomerID: customers[1].ID, Make: "Apple", Model: "MacBook Air M1", CPU: "M1", RAM: "8GB", Storage: "256GB", OS: "macOS", Serial: "AP-M1-7754"},
		{CustomerID: customers[2].ID, Make: "HP", Model: "Pavilion 15", CPU: "i5-1135G7", RAM: "12GB", Storage: "1TB HDD", OS: "Windows 11", Serial: "HP-P15-2210"},
	}
	for i := range equipment {
		if _, err := s.CreateEquipment(&equipment[i]); err != nil {
			return err
		}
	}

	techs := []models.Technician{{Name: "Dana Ortiz"}, {Name: "Sam Kowalski"}}
	for i := range techs {
		if _, err := s.CreateTechnician(&techs[i]); err != nil {
			return err
		}
	}

	parts := []models.Part{
		{SKU: "SSD-512-NVME", Description: "512GB NVMe SSD", Quantity: 8, UnitCost: 54.90},
		{SKU: "RAM-8G-DDR4", Description: "8GB DDR4-3200 SODIMM", Quantity: 14, UnitCost: 21.50},
		{SKU: "FAN-92MM", Description: "92mm case fan", Quantity: 5, UnitCost: 7.25},
		{SKU: "PSU-450W", Description: "450W ATX power supply", Quantity: 3, UnitCost: 38.00},
		{SKU: "THERMAL-PASTE", Description: "Thermal compound 4g", Quantity: 20, UnitCost: 4.10},
	}
	for i := range parts {
		if _, err := s.CreatePart(&parts[i]); err != nil {
			return err
		}
	}

	wo1 := models.WorkOrder{EquipmentID: equipment[0].ID, TechnicianID: &techs[0].ID,
		Description: "No boot, suspected failed drive"}
	if _, err := s.CreateWorkOrder(&wo1); err != nil {
		return err
	}
	wo2 := models.WorkOrder{EquipmentID: equipment[2].ID,
		Description: "Intermittent shutdowns under load"}
	if _, err := s.CreateWorkOrder(&wo2); err != nil {
		return err
	}

	if _, err := s.DB.Exec(`INSERT INTO work_details (workorder_id, date, description)
		VALUES (?, ?, ?)`, wo1.ID, wo1.DateOpened, "Ran diagnostics, drive reports reallocated sectors"); err != nil {
		return persistErr("seed work detail", err)
	}

	log.Printf("seeded demo data: %d customers, %d equipment, %d technicians, %d parts, 2 work orders",
		len(customers), len(equipment), len(techs), len(parts))
	return nil
}
