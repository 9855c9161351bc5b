// Package document renders printable shop paperwork as single-page PDF
// files. The writer emits PDF 1.4 by hand: four objects (catalog, pages,
// page, content stream), Helvetica text operators, and a real xref table.
// No drawing beyond positioned text is needed for a repair slip.
package document

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"rsm/internal/models"
)

// Field is one labelled value in a document header.
type Field struct {
	Label string
	Value string
}

// Section is a titled block: either labelled fields or a table with
// headers and rows. A section with Headers renders as a table.
type Section struct {
	Title   string
	Fields  []Field
	Headers []string
	Rows    [][]string
}

// Document is a renderable page.
type Document struct {
	Title    string
	Meta     []Field
	Sections []Section
	Stamp    string // oversized overlay text, e.g. PAID
}

const (
	pageWidth  = 612
	pageHeight = 792
	marginX    = 50
	bottomY    = 50
)

// escapeText makes a string safe inside PDF parentheses.
func escapeText(s string) string {
	s = strings.NewReplacer("\\", "\\\\", "(", "\\(", ")", "\\)").Replace(s)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

// truncate keeps text within a column, assuming roughly half-point glyph
// width for Helvetica.
func truncate(s string, width, size int) string {
	max := width * 2 / size
	if max < 4 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// writer accumulates content-stream text operators and tracks the cursor.
type writer struct {
	ops bytes.Buffer
	y   int
}

func (w *writer) text(x, size int, s string) {
	if w.y < bottomY {
		return
	}
	fmt.Fprintf(&w.ops, "BT\n/F1 %d Tf\n%d %d Td\n(%s) Tj\nET\n", size, x, w.y, escapeText(s))
}

func (w *writer) line(size int, s string) {
	w.text(marginX, size, s)
	w.y -= size + 6
}

func (w *writer) gap(n int) {
	w.y -= n
}

func (w *writer) rule() {
	if w.y < bottomY {
		return
	}
	fmt.Fprintf(&w.ops, "%d %d m %d %d l S\n", marginX, w.y, pageWidth-marginX, w.y)
	w.y -= 12
}

func (w *writer) table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}
	colWidth := (pageWidth - 2*marginX) / len(headers)
	x := marginX
	for _, h := range headers {
		w.text(x, 10, truncate(h, colWidth-6, 10))
		x += colWidth
	}
	w.y -= 14
	w.rule()
	for _, row := range rows {
		if w.y < bottomY {
			w.y = bottomY
			w.text(marginX, 9, "list truncated")
			return
		}
		x = marginX
		for i, cell := range row {
			if i >= len(headers) {
				break
			}
			w.text(x, 9, truncate(cell, colWidth-6, 9))
			x += colWidth
		}
		w.y -= 14
	}
}

// Render produces the finished PDF.
func (d *Document) Render() []byte {
	w := &writer{y: pageHeight - 60}

	w.line(18, d.Title)
	w.gap(6)
	for _, f := range d.Meta {
		w.line(11, f.Label+": "+f.Value)
	}
	for _, sec := range d.Sections {
		w.gap(10)
		if sec.Title != "" {
			w.line(13, sec.Title)
		}
		if len(sec.Headers) > 0 {
			w.table(sec.Headers, sec.Rows)
		} else {
			for _, f := range sec.Fields {
				w.line(10, f.Label+": "+f.Value)
			}
		}
	}
	if d.Stamp != "" {
		fmt.Fprintf(&w.ops, "BT\n/F1 48 Tf\n180 380 Td\n(%s) Tj\nET\n", escapeText(d.Stamp))
	}

	stream := w.ops.String()

	var b bytes.Buffer
	offsets := []int{}
	obj := func(body string) {
		offsets = append(offsets, b.Len())
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	b.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Contents 4 0 R "+
		"/Resources << /Font << /F1 << /Type /Font /Subtype /Type1 /BaseFont /Helvetica >> >> >> >>",
		pageWidth, pageHeight))
	obj(fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(stream), stream))

	xrefPos := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(offsets)+1)
	b.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xrefPos)
	return b.Bytes()
}

// RenderTo writes the PDF to w.
func (d *Document) RenderTo(w io.Writer) error {
	_, err := w.Write(d.Render())
	return err
}

func orEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// WorkOrderSlip lays out the printable slip for one work order: customer
// and equipment header, the repair log, and the parts used.
func WorkOrderSlip(shop string, w *models.WorkOrder, c *models.Customer, e *models.Equipment, techName string) *Document {
	doc := &Document{
		Title: fmt.Sprintf("Work Order #%d", w.ID),
		Meta: []Field{
			{"Shop", shop},
			{"Status", w.Status},
			{"Opened", w.DateOpened},
		},
	}
	if w.DateClosed != nil {
		doc.Meta = append(doc.Meta, Field{"Closed", *w.DateClosed})
	}
	if techName != "" {
		doc.Meta = append(doc.Meta, Field{"Technician", techName})
	}

	doc.Sections = append(doc.Sections, Section{
		Title: "Customer",
		Fields: []Field{
			{"Name", c.Name()},
			{"Phone", c.Phone},
			{"Email", c.Email},
		},
	})
	doc.Sections = append(doc.Sections, Section{
		Title: "Equipment",
		Fields: []Field{
			{"Unit", strings.TrimSpace(e.Make + " " + e.Model)},
			{"Serial", e.Serial},
			{"Reported problem", w.Description},
		},
	})

	logRows := [][]string{}
	for _, d := range w.Details {
		logRows = append(logRows, []string{d.Date, d.Description})
	}
	doc.Sections = append(doc.Sections, Section{
		Title:   "Repair Log",
		Headers: []string{"Date", "Work Performed"},
		Rows:    logRows,
	})

	partRows := [][]string{}
	for _, u := range w.Usages {
		partRows = append(partRows, []string{u.SKU, u.PartDescription, fmt.Sprintf("%d", u.Quantity)})
	}
	doc.Sections = append(doc.Sections, Section{
		Title:   "Parts Used",
		Headers: []string{"SKU", "Description", "Qty"},
		Rows:    partRows,
	})
	return doc
}

// CustomerHistory lays out a customer's full work-order history.
func CustomerHistory(shop string, c *models.Customer, orders []models.WorkOrderSummary) *Document {
	rows := [][]string{}
	for _, o := range orders {
		rows = append(rows, []string{
			fmt.Sprintf("%d", o.ID),
			o.DateOpened,
			orEmpty(o.DateClosed),
			o.Status,
			strings.TrimSpace(o.EquipmentMake + " " + o.EquipmentModel),
			o.Description,
		})
	}
	return &Document{
		Title: "Service History: " + c.Name(),
		Meta: []Field{
			{"Shop", shop},
			{"Phone", c.Phone},
			{"Email", c.Email},
			{"Work orders", fmt.Sprintf("%d", len(orders))},
		},
		Sections: []Section{{
			Headers: []string{"#", "Opened", "Closed", "Status", "Equipment", "Problem"},
			Rows:    rows,
		}},
	}
}

// InvoiceDocument lays out an invoice with its line items and total. Paid
// invoices get a PAID stamp.
func InvoiceDocument(shop string, inv *models.Invoice, c *models.Customer) *Document {
	rows := [][]string{}
	for _, l := range inv.Lines {
		rows = append(rows, []string{
			l.Description,
			fmt.Sprintf("%d", l.Quantity),
			fmt.Sprintf("$%.2f", l.UnitPrice),
			fmt.Sprintf("$%.2f", l.LineTotal),
		})
	}
	doc := &Document{
		Title: "Invoice " + inv.Number,
		Meta: []Field{
			{"Shop", shop},
			{"Billed to", c.Name()},
			{"Date", inv.DateIssued},
			{"Status", inv.Status},
		},
		Sections: []Section{
			{
				Headers: []string{"Description", "Qty", "Unit", "Amount"},
				Rows:    rows,
			},
			{
				Fields: []Field{{"Total", fmt.Sprintf("$%.2f", inv.Total)}},
			},
		},
	}
	if inv.Notes != "" {
		doc.Sections = append(doc.Sections, Section{Fields: []Field{{"Notes", inv.Notes}}})
	}
	if inv.Status == models.InvoicePaid {
		doc.Stamp = "PAID"
	}
	return doc
}
