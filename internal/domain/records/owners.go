package records

import "vet-records/internal/domain/schema"

type OwnerInput struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Document string `json:"document"`
}

type Owner struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Document string `json:"document"`
	Active   bool   `json:"active"`
}

type OwnerService = Service[OwnerInput, Owner]

func ownerText(get func(OwnerInput) string) schema.Accessor[OwnerInput] {
	return schema.Accessor[OwnerInput]{
		Text: func(in OwnerInput) string { return text(get(in)) },
		Arg:  func(in OwnerInput) any { return text(get(in)) },
	}
}

var ownerEntity = schema.MustBind(schema.OwnerMeta, map[string]schema.Accessor[OwnerInput]{
	"name":     ownerText(func(in OwnerInput) string { return in.Name }),
	"phone":    ownerText(func(in OwnerInput) string { return in.Phone }),
	"email":    ownerText(func(in OwnerInput) string { return in.Email }),
	"address":  ownerText(func(in OwnerInput) string { return in.Address }),
	"document": ownerText(func(in OwnerInput) string { return in.Document }),
})

var ownerView = view[Owner]{
	columns: "o.owner_id, o.name, o.phone, o.email, o.address, o.document_id, o.is_active",
	from:    "owner o",
	idExpr:  "o.owner_id",
	active:  "o.is_active = TRUE",
	filter:  []string{"o.name"},
	order:   "o.owner_id",
	scan: func(row scanner) (Owner, error) {
		var o Owner
		err := row.Scan(&o.ID, &o.Name, &o.Phone, &o.Email, &o.Address, &o.Document, &o.Active)
		return o, err
	},
}

func NewOwnerService(deps Deps) *OwnerService {
	return newService(deps, ownerEntity, ownerView)
}
