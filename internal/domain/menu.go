package domain

import "sort"

type Category string

const (
	CategoryFood    Category = "food"
	CategoryDrink   Category = "drink"
	CategoryDessert Category = "dessert"
)

// CategoryRank orders categories the way the floor lists them:
// food first, then drinks, then desserts, unknown categories last.
func CategoryRank(c Category) int {
	switch c {
	case CategoryFood:
		return 1
	case CategoryDrink:
		return 2
	case CategoryDessert:
		return 3
	default:
		return 99
	}
}

// MenuItem is a sellable item. The identity is server-assigned and
// immutable; price, availability and descriptions change over time.
// Price is in minor currency units.
type MenuItem struct {
	ID               string   `json:"_id"`
	Name             string   `json:"name"`
	LocalName        string   `json:"albanianName"`
	Category         Category `json:"category"`
	Price            int      `json:"price"`
	Available        bool     `json:"available"`
	Description      string   `json:"description,omitempty"`
	LocalDescription string   `json:"albanianDescription,omitempty"`
}

func (m MenuItem) EntityID() string { return m.ID }

// DisplayName prefers the localized name the dashboards render.
func (m MenuItem) DisplayName() string {
	if m.LocalName != "" {
		return m.LocalName
	}
	return m.Name
}

// SortMenu orders items by category rank, then display name.
func SortMenu(items []MenuItem) {
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := CategoryRank(items[i].Category), CategoryRank(items[j].Category)
		if ri != rj {
			return ri < rj
		}
		return items[i].DisplayName() < items[j].DisplayName()
	})
}
