package invoicing

import (
	"sort"
	"strings"
	"time"

	"github.com/matthewbaird/intake/internal/types"
)

// PaymentRow is one line of the payment details modal.
type PaymentRow struct {
	PaymentID   string    `json:"paymentId"`
	PaymentDate time.Time `json:"paymentDate"`
	MethodRef   string    `json:"methodRef"`
	Amount      float64   `json:"amount"`
	CreditNote  bool      `json:"creditNote"`
}

// PaymentDetails is everything applied to one invoice.
type PaymentDetails struct {
	Title            string       `json:"title"`
	Rows             []PaymentRow `json:"paymentDetails"`
	PaymentsTotal    float64      `json:"paymentsTotal"`
	CreditNotesTotal float64      `json:"creditNotesTotal"`
	CombinedApplied  float64      `json:"combinedApplied"`
}

// PaymentTitle is the payment modal title for an invoice number.
func PaymentTitle(number string) string { return "Payment Details - " + number }

// Payments lists what was applied to inv, oldest first.
func Payments(l Ledger, inv types.Invoice) PaymentDetails {
	d := PaymentDetails{Title: PaymentTitle(inv.Number)}
	var payments, credits types.Money
	for _, p := range l.Payments {
		if p.InvoiceID != inv.ID {
			continue
		}
		d.Rows = append(d.Rows, PaymentRow{
			PaymentID:   p.ID,
			PaymentDate: p.ReceivedOn,
			MethodRef:   methodRef(p),
			Amount:      p.Amount.Float(),
			CreditNote:  p.CreditNote,
		})
		if p.CreditNote {
			credits = credits.Add(p.Amount)
		} else {
			payments = payments.Add(p.Amount)
		}
	}
	sort.SliceStable(d.Rows, func(i, j int) bool { return d.Rows[i].PaymentDate.Before(d.Rows[j].PaymentDate) })
	d.PaymentsTotal = payments.Float()
	d.CreditNotesTotal = credits.Float()
	d.CombinedApplied = payments.Add(credits).Float()
	return d
}

func methodRef(p types.Payment) string {
	var parts []string
	for _, s := range []string{p.Method, p.Reference} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " / ")
}
