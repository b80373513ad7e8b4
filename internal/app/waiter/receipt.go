package waiter

import (
	"fmt"
	"strings"

	"github.com/vilafalo/tableside/internal/domain"
)

const receiptWidth = 38

// FormatPrice renders a minor-unit amount, e.g. 1250 as "12.50".
func FormatPrice(p int) string {
	sign := ""
	if p < 0 {
		sign = "-"
		p = -p
	}
	return fmt.Sprintf("%s%d.%02d", sign, p/100, p%100)
}

// Receipt renders a printable text bill for one order. lookup resolves
// bare menu references to names; nil is allowed.
func Receipt(table domain.Table, order domain.Order, lookup func(id string) (domain.MenuItem, bool)) string {
	var b strings.Builder

	line := strings.Repeat("-", receiptWidth)
	b.WriteString(line + "\n")
	b.WriteString(center("RECEIPT") + "\n")
	b.WriteString(line + "\n")
	fmt.Fprintf(&b, "Table: %s\n", table.Label())
	fmt.Fprintf(&b, "Order: %s\n", order.ID)
	fmt.Fprintf(&b, "Date:  %s\n", order.CreatedAt.Local().Format("02 Jan 2006 15:04"))
	b.WriteString(line + "\n")

	for _, it := range order.Items {
		name := it.ResolveName(lookup)
		label := fmt.Sprintf("%dx %s", it.Quantity, name)
		amount := FormatPrice(it.Price * it.Quantity)
		b.WriteString(padLine(label, amount) + "\n")
		if it.Notes != "" {
			fmt.Fprintf(&b, "   %s\n", it.Notes)
		}
	}

	b.WriteString(line + "\n")
	b.WriteString(padLine("TOTAL", FormatPrice(order.TotalAmount)) + "\n")
	if order.PaymentStatus == domain.PaymentPaid {
		b.WriteString(center("PAID") + "\n")
	}
	b.WriteString(line + "\n")
	return b.String()
}

func center(s string) string {
	if len(s) >= receiptWidth {
		return s
	}
	pad := (receiptWidth - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

// padLine right-aligns the amount, wrapping if the label is too long.
func padLine(label, amount string) string {
	gap := receiptWidth - len(label) - len(amount)
	if gap < 1 {
		return label + "\n" + strings.Repeat(" ", receiptWidth-len(amount)) + amount
	}
	return label + strings.Repeat(" ", gap) + amount
}
