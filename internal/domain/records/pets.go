package records

import (
	"database/sql"

	"vet-records/internal/domain/schema"
)

type PetInput struct {
	OwnerID   int64   `json:"owner_id"`
	SexID     int64   `json:"sex_id"`
	Name      string  `json:"name"`
	Species   string  `json:"species"`
	Breed     string  `json:"breed"`
	BirthDate string  `json:"birth_date"` // YYYY-MM-DD opcional
	Weight    Decimal `json:"weight"`
	Color     string  `json:"color"`
	Microchip string  `json:"microchip"` // opcional
}

type Pet struct {
	ID        int64   `json:"id"`
	OwnerID   int64   `json:"owner_id"`
	OwnerName string  `json:"owner_name"`
	SexID     int64   `json:"sex_id"`
	Name      string  `json:"name"`
	Species   string  `json:"species"`
	Breed     string  `json:"breed"`
	BirthDate string  `json:"birth_date,omitempty"`
	WeightKg  float64 `json:"weight"`
	Color     string  `json:"color"`
	Microchip string  `json:"microchip,omitempty"`
	Active    bool    `json:"active"`
}

type PetService = Service[PetInput, Pet]

var petEntity = schema.MustBind(schema.PetMeta, map[string]schema.Accessor[PetInput]{
	"name":       {Text: func(in PetInput) string { return text(in.Name) }, Arg: func(in PetInput) any { return text(in.Name) }},
	"species":    {Text: func(in PetInput) string { return text(in.Species) }, Arg: func(in PetInput) any { return text(in.Species) }},
	"breed":      {Text: func(in PetInput) string { return text(in.Breed) }, Arg: func(in PetInput) any { return text(in.Breed) }},
	"birth_date": {Text: func(in PetInput) string { return text(in.BirthDate) }, Arg: func(in PetInput) any { return nullable(in.BirthDate) }},
	"weight":     {Text: func(in PetInput) string { return in.Weight.String() }, Arg: func(in PetInput) any { return in.Weight.arg() }},
	"color":      {Text: func(in PetInput) string { return text(in.Color) }, Arg: func(in PetInput) any { return text(in.Color) }},
	"microchip":  {Text: func(in PetInput) string { return text(in.Microchip) }, Arg: func(in PetInput) any { return nullable(in.Microchip) }},
	"sex_id":     {Text: func(in PetInput) string { return idText(in.SexID) }, Arg: func(in PetInput) any { return in.SexID }},
	"owner_id":   {Text: func(in PetInput) string { return idText(in.OwnerID) }, Arg: func(in PetInput) any { return in.OwnerID }},
})

var petView = view[Pet]{
	columns: "p.pet_id, p.owner_id, o.name, p.sex_id, p.name, p.species, p.breed, p.birth_date, " +
		"p.weight_kg, p.color, p.microchip, p.is_active",
	from:   "pet p JOIN owner o ON o.owner_id = p.owner_id",
	idExpr: "p.pet_id",
	active: "p.is_active = TRUE",
	filter: []string{"p.name", "p.species"},
	order:  "p.pet_id",
	scan: func(row scanner) (Pet, error) {
		var (
			p    Pet
			bd   = dateCol()
			chip sql.NullString
		)
		err := row.Scan(&p.ID, &p.OwnerID, &p.OwnerName, &p.SexID, &p.Name, &p.Species, &p.Breed, bd,
			&p.WeightKg, &p.Color, &chip, &p.Active)
		p.BirthDate = bd.value
		p.Microchip = nullString(chip)
		return p, err
	},
}

func NewPetService(deps Deps) *PetService {
	return newService(deps, petEntity, petView)
}
