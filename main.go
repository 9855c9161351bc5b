package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"rsm/internal/audit"
	"rsm/internal/backup"
	"rsm/internal/billing"
	"rsm/internal/config"
	"rsm/internal/document"
	"rsm/internal/events"
	"rsm/internal/export"
	"rsm/internal/ledger"
	"rsm/internal/models"
	"rsm/internal/reports"
	"rsm/internal/store"
	"rsm/internal/workorder"
)

// app bundles the wired components for the command handlers.
type app struct {
	cfg    *config.Config
	store  *store.Store
	audit  *audit.Logger
	ledger *ledger.Ledger
	flow   *workorder.Lifecycle
	rep    *reports.Reports
	bill   *billing.Billing
	exp    *export.Exporter
	backup *backup.Manager
}

func main() {
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	configPath := flag.String("config", "", "config file (default rsm.yml when present)")
	operator := flag.String("operator", "", "operator name recorded in the change log")
	techID := flag.Int64("tech", 0, "technician id for 'open'")
	format := flag.String("format", "csv", "export format: csv or xlsx")
	status := flag.String("status", "", "work order status filter for 'export workorders'")
	seed := flag.Bool("seed", false, "seed demo data into an empty database")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *dbPath != "" {
		cfg.DB = *dbPath
	}
	if *operator != "" {
		cfg.Operator = *operator
	}

	a, err := wire(cfg)
	if err != nil {
		log.Fatalf("open %s: %v", cfg.DB, err)
	}
	defer a.store.Close()

	if *seed {
		if err := a.store.Seed(); err != nil {
			log.Fatalf("seed: %v", err)
		}
		a.audit.Log(audit.ActionSeed, "database", cfg.DB, "demo data")
	}

	args := flag.Args()
	if len(args) == 0 {
		args = []string{"migrate"}
	}

	switch args[0] {
	case "migrate":
		a.cmdMigrate()
	case "seed":
		a.cmdSeed()
	case "add":
		a.cmdAdd(args[1:])
	case "open":
		a.cmdOpen(args[1:], *techID)
	case "log":
		a.cmdLog(args[1:])
	case "close":
		a.cmdClose(args[1:])
	case "consume":
		a.cmdConsume(args[1:])
	case "invoice":
		a.cmdInvoice(args[1:])
	case "report":
		a.cmdReport(args[1:])
	case "dashboard":
		a.cmdDashboard()
	case "doc":
		a.cmdDoc(args[1:])
	case "export":
		a.cmdExport(args[1:], *format, *status)
	case "import":
		a.cmdImport(args[1:])
	case "backup":
		a.cmdBackup()
	case "backups":
		a.cmdBackups()
	case "verify":
		a.cmdVerify(args[1:])
	case "restore":
		a.cmdRestore(args[1:])
	case "clean-backups":
		a.cmdCleanBackups()
	case "changes":
		a.cmdChanges(args[1:])
	case "setting":
		a.cmdSetting(args[1:])
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		usage()
		os.Exit(2)
	}
}

func wire(cfg *config.Config) (*app, error) {
	hub := events.NewHub()
	mkBackup := func(db *sql.DB, from, to int) error {
		mgr := backup.NewManager(db, cfg.DB, cfg.Backups.Dir, cfg.Backups.RetentionDays)
		name, err := mgr.Create()
		if err != nil {
			return err
		}
		log.Printf("pre-migration backup: %s (schema %d -> %d)", name, from, to)
		return nil
	}

	st, err := store.OpenOptions(cfg.DB, store.Options{PreMigrate: mkBackup})
	if err != nil {
		return nil, err
	}

	aud := &audit.Logger{DB: st.DB, Operator: cfg.Operator, Hub: hub}
	led := &ledger.Ledger{Store: st, AllowNegative: cfg.Inventory.AllowNegative, Audit: aud}
	return &app{
		cfg:    cfg,
		store:  st,
		audit:  aud,
		ledger: led,
		flow:   &workorder.Lifecycle{Store: st, Ledger: led, Audit: aud},
		rep:    reports.New(st),
		bill:   &billing.Billing{Store: st, Audit: aud},
		exp:    &export.Exporter{Store: st, Audit: aud},
		backup: backup.NewManager(st.DB, cfg.DB, cfg.Backups.Dir, cfg.Backups.RetentionDays),
	}, nil
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: rsm [flags] <command>

commands:
  migrate                                  open the database and apply pending migrations (default)
  seed                                     load demo data into an empty database
  add customer <first> <last> [phone] [email]
  add equipment <customerID> <make> <model> [serial]
  add technician <name>
  add part <sku> <description> <qty> <unitCost>
  open <equipmentID> <description...>      open a work order (-tech assigns a technician)
  log <workorderID> <description...>       append a repair-log entry
  close <workorderID>                      close a work order
  consume <workorderID> <partID> <qty>     use parts on a work order
  invoice create <workorderID>             draft an invoice from a work order's parts
  invoice issue|pay|cancel <invoiceID>
  invoice show <invoiceID> | invoice list
  report open                              open work orders, oldest first
  report history <customerID>              customer work-order history, newest first
  report details <workorderID>             repair log for a work order
  report parts <workorderID>               parts used on a work order
  report search <term...>                  find customers and work orders
  dashboard                                counts, low stock, recent work orders
  doc workorder|invoice|history <id> <out.pdf>
  export customers|parts|workorders <path>   (-format csv|xlsx, -status filter)
  import customers|parts <path>
  backup | backups | verify <file> | restore <file> | clean-backups
  changes [n]                              last n change-log entries (default 20)
  setting get <key> | setting set <key> <value>
`)
}

func parseID(arg, name string) int64 {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		log.Fatalf("%s must be a positive integer, got %q", name, arg)
	}
	return id
}

func need(args []string, n int, what string) {
	if len(args) < n {
		log.Fatalf("usage: rsm %s", what)
	}
}

func fail(err error) {
	log.Fatalf("%v", err)
}

func (a *app) cmdMigrate() {
	v, err := a.store.SchemaVersion()
	if err != nil {
		fail(err)
	}
	fmt.Printf("database %s ready, schema version %d\n", a.cfg.DB, v)
}

func (a *app) cmdSeed() {
	n, err := a.store.CountCustomers()
	if err != nil {
		fail(err)
	}
	if n > 0 {
		fmt.Println("database already has customers, not seeding")
		return
	}
	if err := a.store.Seed(); err != nil {
		fail(err)
	}
	a.audit.Log(audit.ActionSeed, "database", a.cfg.DB, "demo data")
	fmt.Println("seeded demo data")
}

func (a *app) cmdAdd(args []string) {
	need(args, 1, "add customer|equipment|technician|part ...")
	switch args[0] {
	case "customer":
		need(args, 3, "add customer <first> <last> [phone] [email]")
		c := models.Customer{FirstName: args[1], LastName: args[2]}
		if len(args) > 3 {
			c.Phone = args[3]
		}
		if len(args) > 4 {
			c.Email = args[4]
		}
		id, err := a.store.CreateCustomer(&c)
		if err != nil {
			fail(err)
		}
		a.audit.Log(audit.ActionCreate, "customer", audit.ID(id), c.Name())
		fmt.Printf("customer %d: %s\n", id, c.Name())
	case "equipment":
		need(args, 4, "add equipment <customerID> <make> <model> [serial]")
		e := models.Equipment{
			CustomerID: parseID(args[1], "customerID"),
			Make:       args[2],
			Model:      args[3],
		}
		if len(args) > 4 {
			e.Serial = args[4]
		}
		id, err := a.store.CreateEquipment(&e)
		if err != nil {
			fail(err)
		}
		a.audit.Log(audit.ActionCreate, "equipment", audit.ID(id), e.Make+" "+e.Model)
		fmt.Printf("equipment %d: %s %s\n", id, e.Make, e.Model)
	case "technician":
		need(args, 2, "add technician <name>")
		tech := models.Technician{Name: strings.Join(args[1:], " ")}
		id, err := a.store.CreateTechnician(&tech)
		if err != nil {
			fail(err)
		}
		a.audit.Log(audit.ActionCreate, "technician", audit.ID(id), tech.Name)
		fmt.Printf("technician %d: %s\n", id, tech.Name)
	case "part":
		need(args, 5, "add part <sku> <description> <qty> <unitCost>")
		qty, err := strconv.Atoi(args[3])
		if err != nil {
			log.Fatalf("qty must be an integer, got %q", args[3])
		}
		cost, err := strconv.ParseFloat(args[4], 64)
		if err != nil {
			log.Fatalf("unitCost must be a number, got %q", args[4])
		}
		p := models.Part{SKU: args[1], Description: args[2], Quantity: qty, UnitCost: cost}
		id, err := a.store.CreatePart(&p)
		if err != nil {
			fail(err)
		}
		a.audit.Log(audit.ActionCreate, "part", audit.ID(id), p.SKU)
		fmt.Printf("part %d: %s (qty %d)\n", id, p.SKU, p.Quantity)
	default:
		log.Fatalf("unknown entity %q (want customer, equipment, technician, or part)", args[0])
	}
}

func (a *app) cmdOpen(args []string, techID int64) {
	need(args, 2, "open <equipmentID> <description...>")
	equipmentID := parseID(args[0], "equipmentID")
	var tech *int64
	if techID > 0 {
		tech = &techID
	}
	id, err := a.flow.Open(equipmentID, tech, strings.Join(args[1:], " "))
	if err != nil {
		fail(err)
	}
	fmt.Printf("work order %d opened\n", id)
}

func (a *app) cmdLog(args []string) {
	need(args, 2, "log <workorderID> <description...>")
	id := parseID(args[0], "workorderID")
	if _, err := a.flow.LogDetail(id, strings.Join(args[1:], " ")); err != nil {
		fail(err)
	}
	fmt.Printf("logged detail on work order %d\n", id)
}

func (a *app) cmdClose(args []string) {
	need(args, 1, "close <workorderID>")
	id := parseID(args[0], "workorderID")
	if err := a.flow.Close(id); err != nil {
		fail(err)
	}
	fmt.Printf("work order %d closed\n", id)
}

func (a *app) cmdConsume(args []string) {
	need(args, 3, "consume <workorderID> <partID> <qty>")
	woID := parseID(args[0], "workorderID")
	partID := parseID(args[1], "partID")
	qty, err := strconv.Atoi(args[2])
	if err != nil {
		log.Fatalf("qty must be an integer, got %q", args[2])
	}
	if _, err := a.flow.RecordPartUsage(woID, partID, qty); err != nil {
		fail(err)
	}
	p, err := a.store.GetPart(partID)
	if err != nil {
		fail(err)
	}
	fmt.Printf("consumed %d x %s on work order %d (%d left)\n", qty, p.SKU, woID, p.Quantity)
}

func (a *app) cmdInvoice(args []string) {
	need(args, 1, "invoice create|issue|pay|cancel|show|list ...")
	switch args[0] {
	case "create":
		need(args, 2, "invoice create <workorderID>")
		woID := parseID(args[1], "workorderID")
		inv, err := a.invoiceFromWorkOrder(woID)
		if err != nil {
			fail(err)
		}
		fmt.Printf("invoice %s (id %d) drafted, total $%.2f\n", inv.Number, inv.ID, inv.Total)
	case "issue":
		need(args, 2, "invoice issue <invoiceID>")
		if err := a.bill.Issue(parseID(args[1], "invoiceID")); err != nil {
			fail(err)
		}
		fmt.Println("invoice issued")
	case "pay":
		need(args, 2, "invoice pay <invoiceID>")
		if err := a.bill.MarkPaid(parseID(args[1], "invoiceID")); err != nil {
			fail(err)
		}
		fmt.Println("invoice paid")
	case "cancel":
		need(args, 2, "invoice cancel <invoiceID>")
		if err := a.bill.Cancel(parseID(args[1], "invoiceID")); err != nil {
			fail(err)
		}
		fmt.Println("invoice cancelled")
	case "show":
		need(args, 2, "invoice show <invoiceID>")
		inv, err := a.bill.Get(parseID(args[1], "invoiceID"))
		if err != nil {
			fail(err)
		}
		printInvoice(inv)
	case "list":
		invoices, err := a.bill.List("")
		if err != nil {
			fail(err)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNUMBER\tDATE\tSTATUS\tTOTAL")
		for _, inv := range invoices {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t$%.2f\n", inv.ID, inv.Number, inv.DateIssued, inv.Status, inv.Total)
		}
		w.Flush()
	default:
		log.Fatalf("unknown invoice action %q", args[0])
	}
}

// invoiceFromWorkOrder drafts an invoice billing the parts consumed on a
// work order at their current unit cost.
func (a *app) invoiceFromWorkOrder(workorderID int64) (*models.Invoice, error) {
	wo, err := a.store.GetWorkOrder(workorderID)
	if err != nil {
		return nil, err
	}
	equip, err := a.store.GetEquipment(wo.EquipmentID)
	if err != nil {
		return nil, err
	}

	lines := []models.InvoiceLine{}
	for _, u := range wo.Usages {
		p, err := a.store.GetPart(u.PartID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, models.InvoiceLine{
			Description: u.SKU + " " + u.PartDescription,
			Quantity:    u.Quantity,
			UnitPrice:   p.UnitCost,
		})
	}
	notes := fmt.Sprintf("Work order #%d: %s", wo.ID, wo.Description)
	return a.bill.Create(equip.CustomerID, &workorderID, notes, lines)
}

func (a *app) cmdReport(args []string) {
	need(args, 1, "report open|history|details|parts|search ...")
	switch args[0] {
	case "open":
		summaries, err := a.rep.OpenWorkOrders()
		if err != nil {
			fail(err)
		}
		printSummaries(summaries)
	case "history":
		need(args, 2, "report history <customerID>")
		summaries, err := a.rep.WorkOrderHistory(parseID(args[1], "customerID"))
		if err != nil {
			fail(err)
		}
		printSummaries(summaries)
	case "details":
		need(args, 2, "report details <workorderID>")
		details, err := a.rep.WorkDetails(parseID(args[1], "workorderID"))
		if err != nil {
			fail(err)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tWORK PERFORMED")
		for _, d := range details {
			fmt.Fprintf(w, "%s\t%s\n", d.Date, d.Description)
		}
		w.Flush()
	case "parts":
		need(args, 2, "report parts <workorderID>")
		usages, err := a.rep.PartUsages(parseID(args[1], "workorderID"))
		if err != nil {
			fail(err)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SKU\tDESCRIPTION\tQTY")
		for _, u := range usages {
			fmt.Fprintf(w, "%s\t%s\t%d\n", u.SKU, u.PartDescription, u.Quantity)
		}
		w.Flush()
	case "search":
		need(args, 2, "report search <term...>")
		results, err := a.rep.Search(strings.Join(args[1:], " "))
		if err != nil {
			fail(err)
		}
		fmt.Printf("customers (%d):\n", len(results.Customers))
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, c := range results.Customers {
			fmt.Fprintf(w, "  %d\t%s\t%s\t%s\n", c.ID, c.Name(), c.Phone, c.Email)
		}
		w.Flush()
		fmt.Printf("work orders (%d):\n", len(results.WorkOrders))
		printSummaries(results.WorkOrders)
	default:
		log.Fatalf("unknown report %q", args[0])
	}
}

func (a *app) cmdDashboard() {
	stats, err := a.rep.Dashboard(a.cfg.Inventory.LowStockThreshold)
	if err != nil {
		fail(err)
	}
	fmt.Printf("customers: %d   equipment: %d   technicians: %d   parts: %d\n",
		stats.Customers, stats.Equipment, stats.Technicians, stats.Parts)
	fmt.Printf("work orders: open %d, closed %d\n",
		stats.WorkOrdersByStatus[models.WorkOrderOpen], stats.WorkOrdersByStatus[models.WorkOrderClosed])
	if len(stats.LowStock) > 0 {
		fmt.Printf("low stock (<= %d):\n", a.cfg.Inventory.LowStockThreshold)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, p := range stats.LowStock {
			fmt.Fprintf(w, "  %s\t%s\t%d\n", p.SKU, p.Description, p.Quantity)
		}
		w.Flush()
	}
	if len(stats.RecentWorkOrders) > 0 {
		fmt.Println("recent work orders:")
		printSummaries(stats.RecentWorkOrders)
	}
}

func (a *app) cmdDoc(args []string) {
	need(args, 3, "doc workorder|invoice|history <id> <out.pdf>")
	id := parseID(args[1], "id")
	out := args[2]

	var doc *document.Document
	switch args[0] {
	case "workorder":
		wo, err := a.store.GetWorkOrder(id)
		if err != nil {
			fail(err)
		}
		equip, err := a.store.GetEquipment(wo.EquipmentID)
		if err != nil {
			fail(err)
		}
		cust, err := a.store.GetCustomer(equip.CustomerID)
		if err != nil {
			fail(err)
		}
		techName := ""
		if wo.TechnicianID != nil {
			if tech, err := a.store.GetTechnician(*wo.TechnicianID); err == nil {
				techName = tech.Name
			}
		}
		doc = document.WorkOrderSlip(a.cfg.Shop.Name, wo, cust, equip, techName)
	case "invoice":
		inv, err := a.bill.Get(id)
		if err != nil {
			fail(err)
		}
		cust, err := a.store.GetCustomer(inv.CustomerID)
		if err != nil {
			fail(err)
		}
		doc = document.InvoiceDocument(a.cfg.Shop.Name, inv, cust)
	case "history":
		cust, err := a.store.GetCustomer(id)
		if err != nil {
			fail(err)
		}
		orders, err := a.rep.WorkOrderHistory(id)
		if err != nil {
			fail(err)
		}
		doc = document.CustomerHistory(a.cfg.Shop.Name, cust, orders)
	default:
		log.Fatalf("unknown document type %q", args[0])
	}

	f, err := os.Create(out)
	if err != nil {
		fail(err)
	}
	defer f.Close()
	if err := doc.RenderTo(f); err != nil {
		fail(err)
	}
	fmt.Printf("wrote %s\n", out)
}

func (a *app) cmdExport(args []string, format, status string) {
	need(args, 2, "export customers|parts|workorders <path>")
	f, err := os.Create(args[1])
	if err != nil {
		fail(err)
	}
	defer f.Close()

	var n int
	switch args[0] {
	case "customers":
		n, err = a.exp.Customers(f, format)
	case "parts":
		n, err = a.exp.Parts(f, format)
	case "workorders":
		n, err = a.exp.WorkOrders(f, format, status)
	default:
		log.Fatalf("unknown export entity %q", args[0])
	}
	if err != nil {
		fail(err)
	}
	fmt.Printf("exported %d rows to %s\n", n, args[1])
}

func (a *app) cmdImport(args []string) {
	need(args, 2, "import customers|parts <path>")
	f, err := os.Open(args[1])
	if err != nil {
		fail(err)
	}
	defer f.Close()

	var inserted, updated int
	switch args[0] {
	case "customers":
		inserted, updated, err = a.exp.ImportCustomers(f)
	case "parts":
		inserted, updated, err = a.exp.ImportParts(f)
	default:
		log.Fatalf("unknown import entity %q", args[0])
	}
	if err != nil {
		fail(err)
	}
	fmt.Printf("imported %s: %d inserted, %d updated\n", args[0], inserted, updated)
}

func (a *app) cmdBackup() {
	name, err := a.backup.Create()
	if err != nil {
		fail(err)
	}
	a.audit.Log(audit.ActionBackup, "database", name, "")
	fmt.Printf("backup created: %s\n", name)
}

func (a *app) cmdBackups() {
	backups, err := a.backup.List()
	if err != nil {
		fail(err)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tSIZE\tCREATED")
	for _, b := range backups {
		fmt.Fprintf(w, "%s\t%d\t%s\n", b.Filename, b.Size, b.CreatedAt)
	}
	w.Flush()
}

func (a *app) cmdVerify(args []string) {
	need(args, 1, "verify <file>")
	if err := a.backup.Verify(args[0]); err != nil {
		fail(err)
	}
	fmt.Printf("%s: checksum ok\n", args[0])
}

func (a *app) cmdRestore(args []string) {
	need(args, 1, "restore <file>")
	if err := a.backup.Restore(args[0]); err != nil {
		fail(err)
	}
	a.audit.Log(audit.ActionRestore, "database", args[0], "")
	fmt.Printf("restored %s; reopen the database to use it\n", args[0])
}

func (a *app) cmdCleanBackups() {
	n, err := a.backup.CleanOld()
	if err != nil {
		fail(err)
	}
	fmt.Printf("removed %d backups older than %d days\n", n, a.cfg.Backups.RetentionDays)
}

func (a *app) cmdChanges(args []string) {
	limit := 20
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			log.Fatalf("n must be a positive integer, got %q", args[0])
		}
		limit = n
	}
	entries, err := a.audit.List(audit.Filter{Limit: limit})
	if err != nil {
		fail(err)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tOPERATOR\tACTION\tENTITY\tID\tSUMMARY")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", e.CreatedAt, e.Operator, e.Action, e.Entity, e.RecordID, e.Summary)
	}
	w.Flush()
}

func (a *app) cmdSetting(args []string) {
	need(args, 2, "setting get <key> | setting set <key> <value>")
	switch args[0] {
	case "get":
		fmt.Println(a.store.Setting(args[1], ""))
	case "set":
		need(args, 3, "setting set <key> <value>")
		if err := a.store.SetSetting(args[1], args[2]); err != nil {
			fail(err)
		}
		fmt.Printf("%s = %s\n", args[1], args[2])
	default:
		log.Fatalf("unknown setting action %q", args[0])
	}
}

func printSummaries(summaries []models.WorkOrderSummary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tOPENED\tCLOSED\tCUSTOMER\tEQUIPMENT\tTECH\tPROBLEM")
	for _, s := range summaries {
		closed, tech := "", ""
		if s.DateClosed != nil {
			closed = *s.DateClosed
		}
		if s.TechnicianName != nil {
			tech = *s.TechnicianName
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s %s\t%s\t%s\n",
			s.ID, s.Status, s.DateOpened, closed, s.CustomerName,
			s.EquipmentMake, s.EquipmentModel, tech, s.Description)
	}
	w.Flush()
}

func printInvoice(inv *models.Invoice) {
	fmt.Printf("%s  (%s)\n", inv.Number, inv.Status)
	fmt.Printf("issued %s", inv.DateIssued)
	if inv.PaidAt != nil {
		fmt.Printf(", paid %s", *inv.PaidAt)
	}
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DESCRIPTION\tQTY\tUNIT\tAMOUNT")
	for _, l := range inv.Lines {
		fmt.Fprintf(w, "%s\t%d\t$%.2f\t$%.2f\n", l.Description, l.Quantity, l.UnitPrice, l.LineTotal)
	}
	fmt.Fprintf(w, "TOTAL\t\t\t$%.2f\n", inv.Total)
	w.Flush()
	if inv.Notes != "" {
		fmt.Println(inv.Notes)
	}
}
