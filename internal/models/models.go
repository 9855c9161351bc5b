package models

// Customer owns zero or more pieces of equipment.
type Customer struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// Name returns the display name in "First Last" form.
func (c Customer) Name() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

type Equipment struct {
	ID         int64  `json:"id"`
	CustomerID int64  `json:"customer_id"`
	Make       string `json:"make"`
	Model      string `json:"model"`
	CPU        string `json:"cpu"`
	RAM        string `json:"ram"`
	Storage    string `json:"storage"`
	OS         string `json:"os"`
	Serial     string `json:"serial"`
	CreatedAt  string `json:"created_at"`
}

type Technician struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type Part struct {
	ID          int64   `json:"id"`
	SKU         string  `json:"sku"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitCost    float64 `json:"unit_cost"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// WorkOrder statuses. Status transitions are one-way: open -> closed.
const (
	WorkOrderOpen   = "open"
	WorkOrderClosed = "closed"
)

type WorkOrder struct {
	ID           int64        `json:"id"`
	EquipmentID  int64        `json:"equipment_id"`
	TechnicianID *int64       `json:"technician_id"`
	DateOpened   string       `json:"date_opened"`
	DateClosed   *string      `json:"date_closed"`
	Status       string       `json:"status"`
	Description  string       `json:"description"`
	Details      []WorkDetail `json:"details,omitempty"`
	Usages       []PartUsage  `json:"usages,omitempty"`
}

// WorkDetail is an append-only log entry against a work order.
type WorkDetail struct {
	ID          int64  `json:"id"`
	WorkOrderID int64  `json:"workorder_id"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// PartUsage records that Quantity units of a part were consumed by a work
// order. Creating one decrements the part's on-hand quantity by the same
// amount. SKU and PartDescription are filled on joined reads only.
type PartUsage struct {
	ID              int64  `json:"id"`
	WorkOrderID     int64  `json:"workorder_id"`
	PartID          int64  `json:"part_id"`
	Quantity        int    `json:"quantity"`
	CreatedAt       string `json:"created_at"`
	SKU             string `json:"sku,omitempty"`
	PartDescription string `json:"part_description,omitempty"`
}

// WorkOrderSummary is a work order joined with its equipment, owning
// customer, and assigned technician, as returned by the report layer.
type WorkOrderSummary struct {
	ID              int64   `json:"id"`
	Status          string  `json:"status"`
	DateOpened      string  `json:"date_opened"`
	DateClosed      *string `json:"date_closed"`
	Description     string  `json:"description"`
	EquipmentID     int64   `json:"equipment_id"`
	EquipmentMake   string  `json:"equipment_make"`
	EquipmentModel  string  `json:"equipment_model"`
	EquipmentSerial string  `json:"equipment_serial"`
	CustomerID      int64   `json:"customer_id"`
	CustomerName    string  `json:"customer_name"`
	TechnicianName  *string `json:"technician_name"`
}

// SearchResults holds the two result lists of a global search, unmerged and
// unranked.
type SearchResults struct {
	Customers  []Customer         `json:"customers"`
	WorkOrders []WorkOrderSummary `json:"work_orders"`
}

type DashboardStats struct {
	Customers          int                `json:"customers"`
	Equipment          int                `json:"equipment"`
	Technicians        int                `json:"technicians"`
	Parts              int                `json:"parts"`
	WorkOrdersByStatus map[string]int     `json:"work_orders_by_status"`
	LowStock           []Part             `json:"low_stock"`
	RecentWorkOrders   []WorkOrderSummary `json:"recent_work_orders"`
}

// Invoice statuses. draft -> issued -> paid; cancelled is reachable from
// draft and issued. paid and cancelled are terminal.
const (
	InvoiceDraft     = "draft"
	InvoiceIssued    = "issued"
	InvoicePaid      = "paid"
	InvoiceCancelled = "cancelled"
)

type Invoice struct {
	ID          int64         `json:"id"`
	Number      string        `json:"number"`
	CustomerID  int64         `json:"customer_id"`
	WorkOrderID *int64        `json:"workorder_id"`
	DateIssued  string        `json:"date_issued"`
	Status      string        `json:"status"`
	Total       float64       `json:"total"`
	Notes       string        `json:"notes"`
	CreatedAt   string        `json:"created_at"`
	PaidAt      *string       `json:"paid_at"`
	Lines       []InvoiceLine `json:"lines,omitempty"`
}

type InvoiceLine struct {
	ID          int64   `json:"id"`
	InvoiceID   int64   `json:"invoice_id"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
}

// ChangeEntry is one row of the change log.
type ChangeEntry struct {
	ID        int64  `json:"id"`
	Operator  string `json:"operator"`
	Action    string `json:"action"`
	Entity    string `json:"entity"`
	RecordID  string `json:"record_id"`
	Summary   string `json:"summary"`
	CreatedAt string `json:"created_at"`
}

// BackupInfo describes one backup file on disk.
type BackupInfo struct {
	Filename  string `json:"filename"`
	Size      int64  `json:"size"`
	CreatedAt string `json:"created_at"`
	Checksum  string `json:"checksum,omitempty"`
}
