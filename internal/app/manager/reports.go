package manager

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vilafalo/tableside/internal/domain"
	"github.com/vilafalo/tableside/internal/interfaces"
)

// DaySales is one day's totals in a report range.
type DaySales struct {
	Day    string // "2006-01-02"
	Orders int
	Sales  int
}

// ItemSales aggregates one sold line item across the range.
type ItemSales struct {
	Name     string
	Category domain.Category
	Quantity int
	Sales    int
}

// Report is the aggregated view of an order range. Sales figures count
// paid orders only; completed and canceled are counted regardless of
// payment.
type Report struct {
	From, To   time.Time
	Orders     int
	Completed  int
	Canceled   int
	PaidOrders int
	TotalSales int
	ByDay      []DaySales
	ByItem     []ItemSales
	ByCategory map[domain.Category]int
}

// Reporter fetches order ranges and reduces them.
type Reporter struct {
	api    interfaces.OrderAPI
	lookup func(id string) (domain.MenuItem, bool)
}

// NewReporter builds a reporter. lookup resolves bare menu references
// for the per-item breakdown; nil is allowed.
func NewReporter(api interfaces.OrderAPI, lookup func(id string) (domain.MenuItem, bool)) *Reporter {
	return &Reporter{api: api, lookup: lookup}
}

func (r *Reporter) Daily(ctx context.Context) (Report, error) {
	orders, err := r.api.DailyReport(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load daily report: %w", err)
	}
	now := time.Now()
	return Aggregate(orders, now, now, r.lookup), nil
}

func (r *Reporter) Range(ctx context.Context, from, to time.Time) (Report, error) {
	orders, err := r.api.CustomReport(ctx, from, to)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load report range: %w", err)
	}
	return Aggregate(orders, from, to, r.lookup), nil
}

// Aggregate reduces a fetched order range to the report figures. Pure;
// it never calls the server.
func Aggregate(orders []domain.Order, from, to time.Time, lookup func(id string) (domain.MenuItem, bool)) Report {
	rep := Report{
		From:       from,
		To:         to,
		Orders:     len(orders),
		ByCategory: make(map[domain.Category]int),
	}

	days := make(map[string]*DaySales)
	items := make(map[string]*ItemSales)

	for _, o := range orders {
		switch o.Status {
		case domain.StatusCompleted:
			rep.Completed++
		case domain.StatusCanceled:
			rep.Canceled++
		}

		day := o.CreatedAt.Local().Format("2006-01-02")
		d := days[day]
		if d == nil {
			d = &DaySales{Day: day}
			days[day] = d
		}
		d.Orders++

		if o.PaymentStatus != domain.PaymentPaid {
			continue
		}
		rep.PaidOrders++
		rep.TotalSales += o.TotalAmount
		d.Sales += o.TotalAmount

		for _, it := range o.Items {
			name := it.ResolveName(lookup)
			cat := it.ResolveCategory(lookup)
			amount := it.Price * it.Quantity

			s := items[name]
			if s == nil {
				s = &ItemSales{Name: name, Category: cat}
				items[name] = s
			}
			s.Quantity += it.Quantity
			s.Sales += amount
			rep.ByCategory[cat] += amount
		}
	}

	for _, d := range days {
		rep.ByDay = append(rep.ByDay, *d)
	}
	sort.Slice(rep.ByDay, func(i, j int) bool { return rep.ByDay[i].Day < rep.ByDay[j].Day })

	for _, s := range items {
		rep.ByItem = append(rep.ByItem, *s)
	}
	sort.Slice(rep.ByItem, func(i, j int) bool {
		if rep.ByItem[i].Sales != rep.ByItem[j].Sales {
			return rep.ByItem[i].Sales > rep.ByItem[j].Sales
		}
		return rep.ByItem[i].Name < rep.ByItem[j].Name
	})
	return rep
}
