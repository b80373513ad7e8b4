package domain

import (
	"bytes"
	"encoding/json"
)

// The API reports an order item's menu reference in three shapes:
// a populated MenuItem object, a bare id string, or nothing at all for
// free-text custom items. ItemRef is the tagged union the shape is
// resolved into once, at decode time; nothing downstream re-sniffs the
// payload.
type ItemRefKind string

const (
	RefMenu   ItemRefKind = "menu"    // embedded MenuItem
	RefMenuID ItemRefKind = "menuRef" // bare id, resolve via menu index
	RefCustom ItemRefKind = "custom"  // free-text item, name on the line
)

type ItemRef struct {
	Kind   ItemRefKind
	Item   *MenuItem // set when Kind == RefMenu
	MenuID string    // set when Kind == RefMenuID
}

func nullOrEmpty(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func decodeItemRef(raw json.RawMessage) (ItemRef, error) {
	if nullOrEmpty(raw) {
		return ItemRef{Kind: RefCustom}, nil
	}
	if raw[0] == '"' {
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return ItemRef{}, err
		}
		if id == "" {
			return ItemRef{Kind: RefCustom}, nil
		}
		return ItemRef{Kind: RefMenuID, MenuID: id}, nil
	}
	var item MenuItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return ItemRef{}, err
	}
	return ItemRef{Kind: RefMenu, Item: &item}, nil
}

func (r ItemRef) encode() (json.RawMessage, error) {
	switch r.Kind {
	case RefMenu:
		return json.Marshal(r.Item)
	case RefMenuID:
		return json.Marshal(r.MenuID)
	default:
		return json.RawMessage("null"), nil
	}
}

type orderItemJSON struct {
	ID       string          `json:"_id,omitempty"`
	MenuItem json.RawMessage `json:"menuItem,omitempty"`
	Name     string          `json:"name,omitempty"`
	Quantity int             `json:"quantity"`
	Price    int             `json:"price"`
	Notes    string          `json:"notes,omitempty"`
	Status   ItemStatus      `json:"status,omitempty"`
	Prepared bool            `json:"prepared"`
}

func (it *OrderItem) UnmarshalJSON(data []byte) error {
	var aux orderItemJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	ref, err := decodeItemRef(aux.MenuItem)
	if err != nil {
		return err
	}
	*it = OrderItem{
		ID:       aux.ID,
		Ref:      ref,
		Name:     aux.Name,
		Quantity: aux.Quantity,
		Price:    aux.Price,
		Notes:    aux.Notes,
		Status:   aux.Status,
		Prepared: aux.Prepared,
	}
	return nil
}

func (it OrderItem) MarshalJSON() ([]byte, error) {
	raw, err := it.Ref.encode()
	if err != nil {
		return nil, err
	}
	return json.Marshal(orderItemJSON{
		ID:       it.ID,
		MenuItem: raw,
		Name:     it.Name,
		Quantity: it.Quantity,
		Price:    it.Price,
		Notes:    it.Notes,
		Status:   it.Status,
		Prepared: it.Prepared,
	})
}

// ResolveName picks the display name for an order line: the name
// captured at order time, the embedded menu item, then a lookup in the
// local menu index for bare ids.
func (it OrderItem) ResolveName(lookup func(id string) (MenuItem, bool)) string {
	if it.Name != "" {
		return it.Name
	}
	switch it.Ref.Kind {
	case RefMenu:
		return it.Ref.Item.DisplayName()
	case RefMenuID:
		if lookup != nil {
			if m, ok := lookup(it.Ref.MenuID); ok {
				return m.DisplayName()
			}
		}
	}
	return "unnamed item"
}

// ResolveCategory works the same way for kitchen grouping; unknown
// lines fall into the empty category.
func (it OrderItem) ResolveCategory(lookup func(id string) (MenuItem, bool)) Category {
	switch it.Ref.Kind {
	case RefMenu:
		return it.Ref.Item.Category
	case RefMenuID:
		if lookup != nil {
			if m, ok := lookup(it.Ref.MenuID); ok {
				return m.Category
			}
		}
	}
	return ""
}

// TableRef is an order's table, either embedded or as a bare id.
type TableRef struct {
	ID     string `json:"_id"`
	Number int    `json:"number,omitempty"`
	Name   string `json:"name,omitempty"`
}

func (r *TableRef) UnmarshalJSON(data []byte) error {
	if nullOrEmpty(data) {
		*r = TableRef{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = TableRef{ID: id}
		return nil
	}
	type alias TableRef
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = TableRef(a)
	return nil
}

// WaiterRef is the order's creator, either embedded or as a bare id.
type WaiterRef struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

func (r *WaiterRef) UnmarshalJSON(data []byte) error {
	if nullOrEmpty(data) {
		*r = WaiterRef{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = WaiterRef{ID: id}
		return nil
	}
	type alias WaiterRef
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = WaiterRef(a)
	return nil
}
