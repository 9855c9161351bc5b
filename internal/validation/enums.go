package validation

// Status enumerations. These MUST match the CHECK constraints in the
// store's schema.

// ValidWorkOrderStatuses are allowed work order states.
var ValidWorkOrderStatuses = []string{"open", "closed"}

// ValidInvoiceStatuses are allowed invoice states.
var ValidInvoiceStatuses = []string{"draft", "issued", "paid", "cancelled"}
