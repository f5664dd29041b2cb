package schema

// Tablas y vistas del esquema relacional (ver migrations).
const (
	TableOwner       = "owner"
	TablePet         = "pet"
	TableAppointment = "appointment"
	TableInvoice     = "invoice"
	TableSex         = "sex"

	ViewOwnerActive = "vw_owner_active"
	ViewPetActive   = "vw_pet_active"
	ViewVetActive   = "vw_vet_active"
)

var OwnerMeta = &Meta{
	Type:     Owner,
	Table:    TableOwner,
	IDColumn: "owner_id",
	Fields: []Field{
		{Name: "name", Column: "name", Rule: Rule{Required: true}},
		{Name: "phone", Column: "phone", Rule: Rule{Required: true, Format: FormatDigits}},
		{Name: "email", Column: "email", Rule: Rule{Required: true, Format: FormatEmail}},
		{Name: "address", Column: "address", Rule: Rule{Required: true}},
		{Name: "document", Column: "document_id", Rule: Rule{Required: true}},
	},
	Unique: []Unique{
		{Field: "document", Column: "document_id", Constraint: "uq_owner_document"},
	},
	SoftDelete: true,
	Updatable:  true,
	Identity:   []string{"document"},
}

var PetMeta = &Meta{
	Type:     Pet,
	Table:    TablePet,
	IDColumn: "pet_id",
	Fields: []Field{
		{Name: "name", Column: "name", Rule: Rule{Required: true}},
		{Name: "species", Column: "species", Rule: Rule{Required: true}},
		{Name: "breed", Column: "breed"},
		{Name: "birth_date", Column: "birth_date", Rule: Rule{Format: FormatDate}},
		{Name: "weight", Column: "weight_kg", Rule: Rule{Required: true, Number: true}},
		{Name: "color", Column: "color"},
		{Name: "microchip", Column: "microchip", Rule: Rule{Format: FormatCode}},
		{Name: "sex_id", Column: "sex_id", Rule: Rule{Ref: &Reference{Source: TableSex, Column: "sex_id"}}},
		{Name: "owner_id", Column: "owner_id", Rule: Rule{Ref: &Reference{Source: ViewOwnerActive, Column: "owner_id", ActiveOnly: true}}},
	},
	Unique: []Unique{
		{Field: "microchip", Column: "microchip", Constraint: "uq_pet_microchip"},
	},
	SoftDelete: true,
	Updatable:  true,
	Identity:   []string{"name", "microchip", "owner_id"},
}

var AppointmentMeta = &Meta{
	Type:     Appointment,
	Table:    TableAppointment,
	IDColumn: "appointment_id",
	Fields: []Field{
		{Name: "scheduled_at", Column: "scheduled_at", Rule: Rule{Required: true, Format: FormatTimestamp}},
		{Name: "service", Column: "service", Rule: Rule{Required: true}},
		{Name: "reason", Column: "reason"},
		{Name: "pet_id", Column: "pet_id", Rule: Rule{Ref: &Reference{Source: ViewPetActive, Column: "pet_id", ActiveOnly: true}}},
		{Name: "vet_id", Column: "vet_id", Rule: Rule{Ref: &Reference{Source: ViewVetActive, Column: "vet_id", ActiveOnly: true}}},
	},
	Updatable: true,
	Identity:  []string{"pet_id", "vet_id", "scheduled_at"},
}

// InvoiceMeta: la cita referenciada solo debe existir (las citas no tienen baja lógica).
var InvoiceMeta = &Meta{
	Type:     Invoice,
	Table:    TableInvoice,
	IDColumn: "invoice_id",
	Fields: []Field{
		{Name: "amount", Column: "amount", Rule: Rule{Required: true, Number: true}},
		{Name: "payment_method", Column: "payment_method", Rule: Rule{Required: true}},
		{Name: "appointment_id", Column: "appointment_id", Rule: Rule{Ref: &Reference{Source: TableAppointment, Column: "appointment_id"}}},
	},
	Identity: []string{"appointment_id"},
}

// Default arma el registro con las cuatro entidades de la clínica.
func Default() *Registry {
	r, err := NewRegistry(OwnerMeta, PetMeta, AppointmentMeta, InvoiceMeta)
	if err != nil {
		panic(err)
	}
	return r
}
