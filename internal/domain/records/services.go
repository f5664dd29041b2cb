package records

// Services agrupa los cuatro servicios sobre el mismo pool.
type Services struct {
	Owners       *OwnerService
	Pets         *PetService
	Appointments *AppointmentService
	Invoices     *InvoiceService
}

func NewServices(deps Deps) *Services {
	return &Services{
		Owners:       NewOwnerService(deps),
		Pets:         NewPetService(deps),
		Appointments: NewAppointmentService(deps),
		Invoices:     NewInvoiceService(deps),
	}
}
