package records

import (
	"database/sql"

	"vet-records/internal/domain/schema"
)

type AppointmentInput struct {
	PetID       int64  `json:"pet_id"`
	VetID       int64  `json:"vet_id"`
	ScheduledAt string `json:"scheduled_at"` // YYYY-MM-DD HH:MM[:SS]
	Service     string `json:"service"`
	Reason      string `json:"reason"`
}

type Appointment struct {
	ID          int64  `json:"id"`
	PetID       int64  `json:"pet_id"`
	PetName     string `json:"pet_name"`
	VetID       int64  `json:"vet_id"`
	VetName     string `json:"vet_name"`
	ScheduledAt string `json:"scheduled_at"`
	Service     string `json:"service"`
	Reason      string `json:"reason,omitempty"`
}

type AppointmentService = Service[AppointmentInput, Appointment]

var appointmentEntity = schema.MustBind(schema.AppointmentMeta, map[string]schema.Accessor[AppointmentInput]{
	"scheduled_at": {
		Text: func(in AppointmentInput) string { return text(in.ScheduledAt) },
		// formato canónico: en SQLite se guarda como texto y así ordena bien
		Arg: func(in AppointmentInput) any { return schema.NormalizeTimestamp(in.ScheduledAt) },
	},
	"service": {Text: func(in AppointmentInput) string { return text(in.Service) }, Arg: func(in AppointmentInput) any { return text(in.Service) }},
	"reason":  {Text: func(in AppointmentInput) string { return text(in.Reason) }, Arg: func(in AppointmentInput) any { return nullable(in.Reason) }},
	"pet_id":  {Text: func(in AppointmentInput) string { return idText(in.PetID) }, Arg: func(in AppointmentInput) any { return in.PetID }},
	"vet_id":  {Text: func(in AppointmentInput) string { return idText(in.VetID) }, Arg: func(in AppointmentInput) any { return in.VetID }},
})

var appointmentView = view[Appointment]{
	columns: "a.appointment_id, a.pet_id, p.name, a.vet_id, v.name, a.scheduled_at, a.service, a.reason",
	from: "appointment a " +
		"JOIN pet p ON p.pet_id = a.pet_id " +
		"JOIN veterinarian v ON v.vet_id = a.vet_id",
	idExpr: "a.appointment_id",
	filter: []string{"a.service", "a.reason"},
	order:  "a.scheduled_at DESC, a.appointment_id DESC",
	scan: func(row scanner) (Appointment, error) {
		var (
			a      Appointment
			at     = timestampCol()
			reason sql.NullString
		)
		err := row.Scan(&a.ID, &a.PetID, &a.PetName, &a.VetID, &a.VetName, at, &a.Service, &reason)
		a.ScheduledAt = at.value
		a.Reason = nullString(reason)
		return a, err
	},
}

func NewAppointmentService(deps Deps) *AppointmentService {
	return newService(deps, appointmentEntity, appointmentView)
}
