package neworder

import (
	"errors"
	"sync"

	"github.com/vilafalo/tableside/internal/domain"
	"github.com/vilafalo/tableside/internal/interfaces"
)

var (
	ErrEmptyOrder      = errors.New("order has no items")
	ErrItemUnavailable = errors.New("menu item is not available")
	ErrInvalidLine     = errors.New("invalid order line")
	ErrLineNotFound    = errors.New("order line not found")
)

// Line is one entry of an order in progress. MenuID is empty for
// custom free-text items. Price is captured when the line is added and
// stays fixed from then on.
type Line struct {
	MenuID   string
	Name     string
	Price    int
	Quantity int
	Notes    string
}

// Builder accumulates the lines of a not-yet-submitted order. Adding
// the same menu item twice merges into one line; custom items always
// get their own line.
type Builder struct {
	mu    sync.Mutex
	lines []Line
}

func NewBuilder() *Builder {
	return &Builder{}
}

// AddMenuItem adds one unit of a menu item, merging with an existing
// line for the same item. Unavailable items are rejected.
func (b *Builder) AddMenuItem(item domain.MenuItem) error {
	if !item.Available {
		return ErrItemUnavailable
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.lines {
		if b.lines[i].MenuID == item.ID {
			b.lines[i].Quantity++
			return nil
		}
	}
	b.lines = append(b.lines, Line{
		MenuID:   item.ID,
		Name:     item.DisplayName(),
		Price:    item.Price,
		Quantity: 1,
	})
	return nil
}

// AddCustom adds a free-text line for something not on the menu.
func (b *Builder) AddCustom(name string, price, quantity int) error {
	if name == "" || price < 0 || quantity < 1 {
		return ErrInvalidLine
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, Line{
		Name:     name,
		Price:    price,
		Quantity: quantity,
	})
	return nil
}

// SetQuantity changes a line's quantity; zero or less removes the line.
func (b *Builder) SetQuantity(index, quantity int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if index < 0 || index >= len(b.lines) {
		return ErrLineNotFound
	}
	if quantity < 1 {
		b.lines = append(b.lines[:index], b.lines[index+1:]...)
		return nil
	}
	b.lines[index].Quantity = quantity
	return nil
}

func (b *Builder) SetNotes(index int, notes string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if index < 0 || index >= len(b.lines) {
		return ErrLineNotFound
	}
	b.lines[index].Notes = notes
	return nil
}

func (b *Builder) Remove(index int) error {
	return b.SetQuantity(index, 0)
}

// Lines returns a copy of the current lines in insertion order.
func (b *Builder) Lines() []Line {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Line(nil), b.lines...)
}

func (b *Builder) Empty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines) == 0
}

// Total is the running sum of price times quantity over all lines.
func (b *Builder) Total() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	total := 0
	for _, l := range b.lines {
		total += l.Price * l.Quantity
	}
	return total
}

// Command produces the creation payload for one table. An empty
// builder cannot be submitted.
func (b *Builder) Command(tableID string) (interfaces.CreateOrderCommand, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.lines) == 0 {
		return interfaces.CreateOrderCommand{}, ErrEmptyOrder
	}

	items := make([]interfaces.CreateOrderItemCommand, 0, len(b.lines))
	for _, l := range b.lines {
		cmd := interfaces.CreateOrderItemCommand{
			Name:     l.Name,
			Price:    l.Price,
			Quantity: l.Quantity,
			Notes:    l.Notes,
		}
		if l.MenuID != "" {
			id := l.MenuID
			cmd.MenuItemID = &id
		}
		items = append(items, cmd)
	}
	return interfaces.CreateOrderCommand{TableID: tableID, Items: items}, nil
}

// Reset drops all lines so the builder can start the next order.
func (b *Builder) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = nil
}
