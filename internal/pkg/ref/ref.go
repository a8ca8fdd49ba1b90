// Package ref generates unique business references (customer numbers,
// invoice numbers, payment references). References embed a ULID so
// uniqueness holds under concurrent generation without coordinating
// through the database; the store's unique constraint is the backstop.
package ref

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

const (
	PrefixCustomer = "CUS"
	PrefixPayment  = "PAY"
	PrefixEmployee = "EMP"
	PrefixInvoice  = "INV"
)

// New returns a reference of the form PREFIX-ULID, e.g. CUS-01J8ZK....
func New(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, ulid.Make().String())
}

// Invoice returns an invoice number carrying a type marker between the
// prefix and the ULID, e.g. INV-REG-01J8ZK....
func Invoice(typeMarker string) string {
	return fmt.Sprintf("%s-%s-%s", PrefixInvoice, typeMarker, ulid.Make().String())
}
