package manager

import (
	"context"
	"fmt"

	"github.com/vilafalo/tableside/internal/adapter/logger"
	"github.com/vilafalo/tableside/internal/domain"
	"github.com/vilafalo/tableside/internal/interfaces"
	"github.com/vilafalo/tableside/internal/state"
)

// MenuAdmin manages the menu catalogue.
type MenuAdmin struct {
	items *state.Collection[domain.MenuItem]
	api   interfaces.MenuAPI
	log   logger.Logger
}

func NewMenuAdmin(api interfaces.MenuAPI, log logger.Logger) *MenuAdmin {
	if log == nil {
		log = logger.Nop()
	}
	return &MenuAdmin{
		items: state.New[domain.MenuItem](nil),
		api:   api,
		log:   log,
	}
}

func (a *MenuAdmin) Load(ctx context.Context) error {
	items, err := a.api.ListMenu(ctx)
	if err != nil {
		return fmt.Errorf("failed to load menu: %w", err)
	}
	a.items.Load(items)
	return nil
}

// Items lists the catalogue in category display order.
func (a *MenuAdmin) Items() []domain.MenuItem {
	out := a.items.List()
	domain.SortMenu(out)
	return out
}

// Lookup resolves a menu id against the cached catalogue.
func (a *MenuAdmin) Lookup(id string) (domain.MenuItem, bool) {
	return a.items.Get(id)
}

// ByCategory filters the cached catalogue.
func (a *MenuAdmin) ByCategory(c domain.Category) []domain.MenuItem {
	var out []domain.MenuItem
	for _, it := range a.Items() {
		if it.Category == c {
			out = append(out, it)
		}
	}
	return out
}

func (a *MenuAdmin) Create(ctx context.Context, cmd interfaces.MenuItemCommand) (domain.MenuItem, error) {
	item, err := a.api.CreateMenuItem(ctx, cmd)
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("failed to create menu item: %w", err)
	}
	a.items.Apply(item)
	return item, nil
}

func (a *MenuAdmin) Update(ctx context.Context, id string, cmd interfaces.MenuItemCommand) (domain.MenuItem, error) {
	item, err := a.api.UpdateMenuItem(ctx, id, cmd)
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("failed to update menu item: %w", err)
	}
	a.items.Apply(item)
	return item, nil
}

// ToggleAvailability flips one item's availability, resending the full
// item as the update payload.
func (a *MenuAdmin) ToggleAvailability(ctx context.Context, id string) (domain.MenuItem, error) {
	item, ok := a.items.Get(id)
	if !ok {
		var err error
		item, err = a.fetch(ctx, id)
		if err != nil {
			return domain.MenuItem{}, err
		}
	}
	return a.Update(ctx, id, interfaces.MenuItemCommand{
		Name:             item.Name,
		LocalName:        item.LocalName,
		Category:         item.Category,
		Price:            item.Price,
		Available:        !item.Available,
		Description:      item.Description,
		LocalDescription: item.LocalDescription,
	})
}

func (a *MenuAdmin) fetch(ctx context.Context, id string) (domain.MenuItem, error) {
	items, err := a.api.ListMenu(ctx)
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("failed to load menu: %w", err)
	}
	a.items.Load(items)
	item, ok := a.items.Get(id)
	if !ok {
		return domain.MenuItem{}, fmt.Errorf("menu item %s not found", id)
	}
	return item, nil
}

func (a *MenuAdmin) Delete(ctx context.Context, id string) error {
	if err := a.api.DeleteMenuItem(ctx, id); err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	a.items.Remove(id)
	return nil
}
