package records

import "vet-records/internal/domain/schema"

type InvoiceInput struct {
	AppointmentID int64   `json:"appointment_id"`
	Amount        Decimal `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
}

type Invoice struct {
	ID            int64   `json:"id"`
	AppointmentID int64   `json:"appointment_id"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
	PaidAt        string  `json:"paid_at"`
}

// InvoiceService no tiene update: Update devuelve failure.ErrUnsupported.
type InvoiceService = Service[InvoiceInput, Invoice]

var invoiceEntity = schema.MustBind(schema.InvoiceMeta, map[string]schema.Accessor[InvoiceInput]{
	"amount":         {Text: func(in InvoiceInput) string { return in.Amount.String() }, Arg: func(in InvoiceInput) any { return in.Amount.arg() }},
	"payment_method": {Text: func(in InvoiceInput) string { return text(in.PaymentMethod) }, Arg: func(in InvoiceInput) any { return text(in.PaymentMethod) }},
	"appointment_id": {Text: func(in InvoiceInput) string { return idText(in.AppointmentID) }, Arg: func(in InvoiceInput) any { return in.AppointmentID }},
})

var invoiceView = view[Invoice]{
	columns: "i.invoice_id, i.appointment_id, i.amount, i.payment_method, i.paid_at",
	from:    "invoice i",
	idExpr:  "i.invoice_id",
	filter:  []string{"i.payment_method"},
	order:   "i.paid_at DESC, i.invoice_id DESC",
	scan: func(row scanner) (Invoice, error) {
		var (
			inv  Invoice
			paid = timestampCol()
		)
		err := row.Scan(&inv.ID, &inv.AppointmentID, &inv.Amount, &inv.PaymentMethod, paid)
		inv.PaidAt = paid.value
		return inv, err
	},
}

func NewInvoiceService(deps Deps) *InvoiceService {
	return newService(deps, invoiceEntity, invoiceView)
}
