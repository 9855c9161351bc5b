package document

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"rsm/internal/models"
)

func sampleWorkOrder() (*models.WorkOrder, *models.Customer, *models.Equipment) {
	closed := "2026-02-12"
	w := &models.WorkOrder{
		ID:          7,
		EquipmentID: 3,
		DateOpened:  "2026-02-01",
		DateClosed:  &closed,
		Status:      models.WorkOrderClosed,
		Description: "no boot after update",
		Details: []models.WorkDetail{
			{Date: "2026-02-02", Description: "ran diagnostics"},
			{Date: "2026-02-10", Description: "replaced drive"},
		},
		Usages: []models.PartUsage{
			{SKU: "SSD-512", PartDescription: "512GB NVMe drive", Quantity: 1},
		},
	}
	c := &models.Customer{FirstName: "Alice", LastName: "Nguyen", Phone: "555-0134", Email: "alice@example.com"}
	e := &models.Equipment{Make: "Dell", Model: "Latitude 7080", Serial: "DL-7080-4431"}
	return w, c, e
}

func TestRender_WellFormedPDF(t *testing.T) {
	w, c, e := sampleWorkOrder()
	pdf := WorkOrderSlip("Main St Repair", w, c, e, "Dana Ortiz").Render()

	if !bytes.HasPrefix(pdf, []byte("%PDF-1.4\n")) {
		t.Error("Expected PDF header")
	}
	if !bytes.HasSuffix(pdf, []byte("%%EOF\n")) {
		t.Error("Expected EOF marker")
	}
	for i := 1; i <= 4; i++ {
		if !bytes.Contains(pdf, []byte(fmt.Sprintf("%d 0 obj", i))) {
			t.Errorf("Expected object %d", i)
		}
	}
	for _, marker := range []string{"xref", "trailer", "startxref", "/Helvetica", "stream"} {
		if !bytes.Contains(pdf, []byte(marker)) {
			t.Errorf("Expected %s in output", marker)
		}
	}
}

func TestRender_StreamLengthIsExact(t *testing.T) {
	w, c, e := sampleWorkOrder()
	pdf := WorkOrderSlip("Main St Repair", w, c, e, "").Render()

	k := bytes.Index(pdf, []byte("/Length "))
	if k < 0 {
		t.Fatal("No /Length entry in output")
	}
	var declared int
	if _, err := fmt.Sscanf(string(pdf[k:]), "/Length %d", &declared); err != nil {
		t.Fatalf("Failed to parse /Length: %v", err)
	}

	start := bytes.Index(pdf, []byte("stream\n"))
	end := bytes.Index(pdf, []byte("endstream"))
	if start < 0 || end < 0 {
		t.Fatal("No stream section in output")
	}
	actual := end - (start + len("stream\n"))
	if declared != actual {
		t.Errorf("Expected declared length %d to match stream size %d", declared, actual)
	}
}

func TestRender_XrefOffsetsResolve(t *testing.T) {
	w, c, e := sampleWorkOrder()
	pdf := WorkOrderSlip("Main St Repair", w, c, e, "").Render()

	x := bytes.Index(pdf, []byte("xref\n"))
	if x < 0 {
		t.Fatal("No xref table in output")
	}

	lines := strings.Split(string(pdf[x:]), "\n")
	// lines: xref, "0 5", free entry, then one offset per object.
	if len(lines) < 7 {
		t.Fatalf("Unexpectedly short xref section: %d lines", len(lines))
	}
	for i := 1; i <= 4; i++ {
		var off int
		if _, err := fmt.Sscanf(lines[2+i], "%d", &off); err != nil {
			t.Fatalf("Failed to parse xref entry %d: %v", i, err)
		}
		want := fmt.Sprintf("%d 0 obj", i)
		if !bytes.HasPrefix(pdf[off:], []byte(want)) {
			t.Errorf("Xref entry %d points at %q, expected %q", i, string(pdf[off:off+8]), want)
		}
	}

	s := bytes.LastIndex(pdf, []byte("startxref\n"))
	var pos int
	if _, err := fmt.Sscanf(string(pdf[s+len("startxref\n"):]), "%d", &pos); err != nil {
		t.Fatalf("Failed to parse startxref: %v", err)
	}
	if pos != x {
		t.Errorf("Expected startxref %d to point at the xref table at %d", pos, x)
	}
}

func TestRender_EscapesParentheses(t *testing.T) {
	doc := &Document{
		Title: `Cracked hinge (left) and \ stuck key`,
	}
	pdf := doc.Render()

	if !bytes.Contains(pdf, []byte(`\(left\)`)) {
		t.Error("Expected parentheses to be escaped")
	}
	if !bytes.Contains(pdf, []byte(`\\`)) {
		t.Error("Expected backslash to be escaped")
	}
}

func TestRender_NewlinesFlattened(t *testing.T) {
	doc := &Document{Title: "line one\nline two"}
	pdf := doc.Render()

	if !bytes.Contains(pdf, []byte("(line one line two)")) {
		t.Error("Expected newlines replaced with spaces inside text")
	}
}

func TestWorkOrderSlip_Content(t *testing.T) {
	w, c, e := sampleWorkOrder()
	pdf := WorkOrderSlip("Main St Repair", w, c, e, "Dana Ortiz").Render()

	for _, want := range []string{
		"Work Order #7",
		"Main St Repair",
		"Alice Nguyen",
		"Dell Latitude 7080",
		"DL-7080-4431",
		"no boot after update",
		"ran diagnostics",
		"SSD-512",
		"Closed: 2026-02-12",
		"Technician: Dana Ortiz",
	} {
		if !bytes.Contains(pdf, []byte(want)) {
			t.Errorf("Expected %q in the slip", want)
		}
	}
}

func TestWorkOrderSlip_OptionalFields(t *testing.T) {
	w, c, e := sampleWorkOrder()
	w.DateClosed = nil
	w.Status = models.WorkOrderOpen
	pdf := WorkOrderSlip("Main St Repair", w, c, e, "").Render()

	if bytes.Contains(pdf, []byte("Closed:")) {
		t.Error("Expected no Closed line on an open order")
	}
	if bytes.Contains(pdf, []byte("Technician:")) {
		t.Error("Expected no Technician line when unassigned")
	}
}

func TestCustomerHistory_Content(t *testing.T) {
	c := &models.Customer{FirstName: "Alice", LastName: "Nguyen", Phone: "555-0134"}
	closed := "2026-01-20"
	orders := []models.WorkOrderSummary{
		{ID: 9, DateOpened: "2026-01-05", DateClosed: &closed, Status: "closed",
			EquipmentMake: "Dell", EquipmentModel: "Latitude", Description: "no boot"},
		{ID: 12, DateOpened: "2026-02-10", Status: "open",
			EquipmentMake: "HP", EquipmentModel: "ProBook", Description: "fan noise"},
	}
	pdf := CustomerHistory("Main St Repair", c, orders).Render()

	for _, want := range []string{
		"Service History: Alice Nguyen",
		"Work orders: 2",
		"Dell Latitude",
		"fan noise",
	} {
		if !bytes.Contains(pdf, []byte(want)) {
			t.Errorf("Expected %q in the history", want)
		}
	}
}

func TestInvoiceDocument_PaidStamp(t *testing.T) {
	c := &models.Customer{FirstName: "Alice", LastName: "Nguyen"}
	inv := &models.Invoice{
		Number: "INV-2026-00004", DateIssued: "2026-02-15", Status: models.InvoicePaid,
		Total: 209.99,
		Lines: []models.InvoiceLine{
			{Description: "Labor", Quantity: 2, UnitPrice: 60, LineTotal: 120},
		},
	}

	pdf := InvoiceDocument("Main St Repair", inv, c).Render()
	if !bytes.Contains(pdf, []byte("(PAID)")) {
		t.Error("Expected PAID stamp on a paid invoice")
	}
	for _, want := range []string{"Invoice INV-2026-00004", "$60.00", "Total: $209.99"} {
		if !bytes.Contains(pdf, []byte(want)) {
			t.Errorf("Expected %q in the invoice", want)
		}
	}

	inv.Status = models.InvoiceDraft
	pdf = InvoiceDocument("Main St Repair", inv, c).Render()
	if bytes.Contains(pdf, []byte("(PAID)")) {
		t.Error("Expected no PAID stamp on a draft")
	}
}

func TestRenderTo(t *testing.T) {
	w, c, e := sampleWorkOrder()
	doc := WorkOrderSlip("Main St Repair", w, c, e, "")

	var buf bytes.Buffer
	if err := doc.RenderTo(&buf); err != nil {
		t.Fatalf("Failed to render: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), doc.Render()) {
		t.Error("Expected RenderTo to write the same bytes as Render")
	}
}

func TestTable_TruncatesLongRuns(t *testing.T) {
	rows := [][]string{}
	for i := 0; i < 80; i++ {
		rows = append(rows, []string{fmt.Sprintf("2026-01-%02d", i%28+1), "entry"})
	}
	doc := &Document{
		Title: "Long log",
		Sections: []Section{{
			Headers: []string{"Date", "Work Performed"},
			Rows:    rows,
		}},
	}
	pdf := doc.Render()

	if !bytes.Contains(pdf, []byte("(list truncated)")) {
		t.Error("Expected overflow marker when rows run off the page")
	}
}
