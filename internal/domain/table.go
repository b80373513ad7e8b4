package domain

import (
	"errors"
	"strconv"
)

type TableStatus string

const (
	TableFree     TableStatus = "free"
	TableOrdering TableStatus = "ordering"
	TableUnpaid   TableStatus = "unpaid"
	TablePaid     TableStatus = "paid"
)

var (
	ErrTableNotFree    = errors.New("table is not free")
	ErrInvalidTableRef = errors.New("table has no current order")
)

// Table is a physical table on the floor. A table carries at most one
// current order; status free implies no current order.
type Table struct {
	ID           string      `json:"_id"`
	Number       int         `json:"number"`
	Name         string      `json:"name,omitempty"`
	Capacity     int         `json:"capacity"`
	Status       TableStatus `json:"status"`
	CurrentOrder string      `json:"currentOrder,omitempty"`
}

func (t Table) EntityID() string { return t.ID }

func ValidTableStatus(s TableStatus) bool {
	switch s {
	case TableFree, TableOrdering, TableUnpaid, TablePaid:
		return true
	}
	return false
}

// ChangeStatus moves the table to any status. The only structural rule
// is that a free table never references an order.
func (t *Table) ChangeStatus(s TableStatus) error {
	if !ValidTableStatus(s) {
		return ErrInvalidStatusTransition
	}
	t.Status = s
	if s == TableFree {
		t.CurrentOrder = ""
	}
	return nil
}

// Deletable reports whether the table may be removed. Only free tables
// can be deleted.
func (t Table) Deletable() bool {
	return t.Status == TableFree
}

// Label combines number and optional display name, e.g. "5 - Terrace".
func (t Table) Label() string {
	if t.Name != "" {
		return strconv.Itoa(t.Number) + " - " + t.Name
	}
	return strconv.Itoa(t.Number)
}

// NextTableNumber suggests the number for a new table: one past the
// highest existing number, starting at 1.
func NextTableNumber(tables []Table) int {
	max := 0
	for _, t := range tables {
		if t.Number > max {
			max = t.Number
		}
	}
	return max + 1
}
