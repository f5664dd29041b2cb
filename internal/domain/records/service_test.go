package records_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"vet-records/internal/domain/failure"
	"vet-records/internal/domain/records"
	"vet-records/internal/domain/uniqueness"
	"vet-records/internal/router"
	"vet-records/internal/testutil"
)

var actor = records.Actor{UserID: "u-1", Role: "admin"}

type RecordsSuite struct {
	suite.Suite
	ctx  context.Context
	db   *testutil.DB
	deps records.Deps
	svc  *records.Services
}

func TestRecordsSuite(t *testing.T) {
	suite.Run(t, new(RecordsSuite))
}

func (s *RecordsSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = testutil.NewSQLite(s.T())
	s.deps = router.NewDeps(s.db.DB, s.db.Dialect, nil, nil, nil)
	s.svc = records.NewServices(s.deps)
}

func ana() records.OwnerInput {
	return records.OwnerInput{Name: "Ana", Phone: "5551234", Email: "a@b.com", Address: "Calle 1", Document: "DOC1"}
}

func (s *RecordsSuite) createOwner(in records.OwnerInput) int64 {
	id, err := s.svc.Owners.Create(s.ctx, actor, in)
	s.Require().NoError(err)
	return id
}

func (s *RecordsSuite) createPet(ownerID int64, name, chip string) int64 {
	id, err := s.svc.Pets.Create(s.ctx, actor, records.PetInput{
		OwnerID: ownerID, SexID: 1, Name: name, Species: "dog", Weight: "10.5", Microchip: chip,
	})
	s.Require().NoError(err)
	return id
}

func (s *RecordsSuite) createAppointment(petID, vetID int64, at string) int64 {
	id, err := s.svc.Appointments.Create(s.ctx, actor, records.AppointmentInput{
		PetID: petID, VetID: vetID, ScheduledAt: at, Service: "consulta",
	})
	s.Require().NoError(err)
	return id
}

// -------------------------
// Owners
// -------------------------

func (s *RecordsSuite) TestOwner_CreateAndList() {
	id := s.createOwner(ana())
	s.Positive(id)

	items, err := s.svc.Owners.List(s.ctx, records.ListParams{})
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(id, items[0].ID)
	s.Equal("DOC1", items[0].Document)
	s.True(items[0].Active)
}

func (s *RecordsSuite) TestOwner_DuplicateDocument() {
	s.createOwner(ana())

	second := ana()
	second.Name = "Otra"
	_, err := s.svc.Owners.Create(s.ctx, actor, second)

	de, ok := failure.AsDuplicate(err)
	s.Require().True(ok, "got %v", err)
	s.Equal("document", de.Field)
	s.Equal(1, s.db.Count(s.T(), "owner", "document_id = ?", "DOC1"))
}

func (s *RecordsSuite) TestOwner_DuplicateAgainstInactive() {
	id := s.createOwner(ana())
	_, err := s.svc.Owners.Delete(s.ctx, actor, id)
	s.Require().NoError(err)

	_, err = s.svc.Owners.Create(s.ctx, actor, ana())
	_, ok := failure.AsDuplicate(err)
	s.True(ok, "uniqueness is global, got %v", err)
}

func (s *RecordsSuite) TestOwner_UpdateKeepsOwnDocument() {
	id := s.createOwner(ana())

	in := ana()
	in.Phone = "5559999"
	n, err := s.svc.Owners.Update(s.ctx, actor, id, in)
	s.Require().NoError(err)
	s.EqualValues(1, n)

	got, err := s.svc.Owners.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("5559999", got.Phone)
}

func (s *RecordsSuite) TestOwner_UpdateToTakenDocument() {
	s.createOwner(ana())
	other := ana()
	other.Document = "DOC2"
	id := s.createOwner(other)

	_, err := s.svc.Owners.Update(s.ctx, actor, id, ana())
	_, ok := failure.AsDuplicate(err)
	s.True(ok)
}

func (s *RecordsSuite) TestOwner_UpdateMissingRow() {
	n, err := s.svc.Owners.Update(s.ctx, actor, 999, ana())
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *RecordsSuite) TestOwner_SoftDeleteIdempotent() {
	id := s.createOwner(ana())

	msg1, err := s.svc.Owners.Delete(s.ctx, actor, id)
	s.Require().NoError(err)
	s.True(msg1.Soft)
	s.Contains(msg1.Message, "deactivated")

	msg2, err := s.svc.Owners.Delete(s.ctx, actor, id)
	s.Require().NoError(err)
	s.NotEmpty(msg2.Message)

	s.Equal(1, s.db.Count(s.T(), "owner", "owner_id = ? AND is_active = 0", id))

	items, err := s.svc.Owners.List(s.ctx, records.ListParams{})
	s.Require().NoError(err)
	s.Empty(items)

	got, err := s.svc.Owners.Get(s.ctx, id)
	s.Require().NoError(err)
	s.False(got.Active)
}

func (s *RecordsSuite) TestOwner_SoftDeleteUnknownID() {
	res, err := s.svc.Owners.Delete(s.ctx, actor, 4242)
	s.Require().NoError(err)
	s.Contains(res.Message, "not found")
}

func (s *RecordsSuite) TestOwner_ListFilterAndPaging() {
	for i, name := range []string{"Ana", "Mariana", "Bruno", "Juliana_x"} {
		in := ana()
		in.Name = name
		in.Document = "D" + string(rune('A'+i))
		s.createOwner(in)
	}

	items, err := s.svc.Owners.List(s.ctx, records.ListParams{Filter: "ANA"})
	s.Require().NoError(err)
	s.Len(items, 3)

	// '_' es literal, no comodín
	items, err = s.svc.Owners.List(s.ctx, records.ListParams{Filter: "a_x"})
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal("Juliana_x", items[0].Name)

	page, err := s.svc.Owners.List(s.ctx, records.ListParams{Limit: 2, Offset: 1})
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal("Mariana", page[0].Name)
}

func (s *RecordsSuite) TestOwner_GetNotFound() {
	_, err := s.svc.Owners.Get(s.ctx, 77)
	s.ErrorIs(err, failure.ErrNotFound)
}

// -------------------------
// Pets
// -------------------------

func (s *RecordsSuite) TestPet_NegativeWeight() {
	owner := s.createOwner(ana())

	_, err := s.svc.Pets.Create(s.ctx, actor, records.PetInput{
		OwnerID: owner, SexID: 1, Name: "Firulais", Species: "dog", Weight: "-1",
	})
	ve, ok := failure.AsValidation(err)
	s.Require().True(ok, "got %v", err)
	s.Equal("weight", ve.Field)
	s.Equal("must be a non-negative number", ve.Reason)
	s.Equal(0, s.db.Count(s.T(), "pet", ""))
}

func (s *RecordsSuite) TestPet_InactiveOwner() {
	owner := s.createOwner(ana())
	_, err := s.svc.Owners.Delete(s.ctx, actor, owner)
	s.Require().NoError(err)

	_, err = s.svc.Pets.Create(s.ctx, actor, records.PetInput{
		OwnerID: owner, SexID: 1, Name: "Firulais", Species: "dog", Weight: "3",
	})
	s.True(failure.IsReferential(err), "got %v", err)
}

func (s *RecordsSuite) TestPet_MicrochipUniqueButOptional() {
	owner := s.createOwner(ana())
	s.createPet(owner, "A", "")
	s.createPet(owner, "B", "")
	s.createPet(owner, "C", "CHIP-1")

	_, err := s.svc.Pets.Create(s.ctx, actor, records.PetInput{
		OwnerID: owner, SexID: 2, Name: "D", Species: "cat", Weight: "4", Microchip: "CHIP-1",
	})
	de, ok := failure.AsDuplicate(err)
	s.Require().True(ok)
	s.Equal("microchip", de.Field)
	s.Equal(2, s.db.Count(s.T(), "pet", "microchip IS NULL"))
}

func (s *RecordsSuite) TestPet_ListCarriesOwnerName() {
	owner := s.createOwner(ana())
	s.createPet(owner, "Firulais", "")

	items, err := s.svc.Pets.List(s.ctx, records.ListParams{Filter: "DOG"})
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal("Ana", items[0].OwnerName)
	s.Equal(10.5, items[0].WeightKg)
}

// -------------------------
// Appointments
// -------------------------

func (s *RecordsSuite) TestAppointment_PetOfInactiveOwnerIsBookable() {
	owner := s.createOwner(ana())
	pet := s.createPet(owner, "Firulais", "")
	vet := s.db.SeedVet(s.T(), "Dra. Ruiz", true)

	_, err := s.svc.Owners.Delete(s.ctx, actor, owner)
	s.Require().NoError(err)

	id, err := s.svc.Appointments.Create(s.ctx, actor, records.AppointmentInput{
		PetID: pet, VetID: vet, ScheduledAt: "2026-03-01 10:30", Service: "vacuna",
	})
	s.Require().NoError(err)
	s.Positive(id)
}

func (s *RecordsSuite) TestAppointment_UpdateWithInactivePet() {
	owner := s.createOwner(ana())
	pet := s.createPet(owner, "Firulais", "")
	other := s.createPet(owner, "Michi", "")
	vet := s.db.SeedVet(s.T(), "Dra. Ruiz", true)
	id := s.createAppointment(pet, vet, "2026-03-01 10:30")

	_, err := s.svc.Pets.Delete(s.ctx, actor, other)
	s.Require().NoError(err)

	_, err = s.svc.Appointments.Update(s.ctx, actor, id, records.AppointmentInput{
		PetID: other, VetID: vet, ScheduledAt: "2026-03-02 09:00", Service: "control",
	})
	ve, ok := failure.AsValidation(err)
	s.Require().True(ok, "got %v", err)
	s.True(ve.Referential())
	s.Equal("pet_id", ve.Field)
	s.Equal(other, ve.RefID)

	got, err := s.svc.Appointments.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(pet, got.PetID)
	s.Equal("consulta", got.Service)
	s.Equal("2026-03-01 10:30:00", got.ScheduledAt)
}

func (s *RecordsSuite) TestAppointment_InactiveVet() {
	owner := s.createOwner(ana())
	pet := s.createPet(owner, "Firulais", "")
	vet := s.db.SeedVet(s.T(), "Dr. Baja", false)

	_, err := s.svc.Appointments.Create(s.ctx, actor, records.AppointmentInput{
		PetID: pet, VetID: vet, ScheduledAt: "2026-03-01 10:30", Service: "vacuna",
	})
	ve, ok := failure.AsValidation(err)
	s.Require().True(ok)
	s.Equal("vet_id", ve.Field)
}

func (s *RecordsSuite) TestAppointment_ListNewestFirstWithNames() {
	owner := s.createOwner(ana())
	pet := s.createPet(owner, "Firulais", "")
	vet := s.db.SeedVet(s.T(), "Dra. Ruiz", true)
	s.createAppointment(pet, vet, "2026-01-01 08:00")
	latest := s.createAppointment(pet, vet, "2026-05-01T08:00:00")

	items, err := s.svc.Appointments.List(s.ctx, records.ListParams{})
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal(latest, items[0].ID)
	s.Equal("Firulais", items[0].PetName)
	s.Equal("Dra. Ruiz", items[0].VetName)
}

func (s *RecordsSuite) TestAppointment_DeleteWithInvoiceIsRejected() {
	owner := s.createOwner(ana())
	pet := s.createPet(owner, "Firulais", "")
	vet := s.db.SeedVet(s.T(), "Dra. Ruiz", true)
	appt := s.createAppointment(pet, vet, "2026-01-01 08:00")

	_, err := s.svc.Invoices.Create(s.ctx, actor, records.InvoiceInput{AppointmentID: appt, Amount: "20", PaymentMethod: "cash"})
	s.Require().NoError(err)

	_, err = s.svc.Appointments.Delete(s.ctx, actor, appt)
	s.True(failure.IsReferential(err), "got %v", err)
	s.Equal(1, s.db.Count(s.T(), "appointment", ""))
}

// -------------------------
// Invoices
// -------------------------

func (s *RecordsSuite) TestInvoice_DeleteIsPhysicalAndRepeatable() {
	owner := s.createOwner(ana())
	pet := s.createPet(owner, "Firulais", "")
	vet := s.db.SeedVet(s.T(), "Dra. Ruiz", true)
	appt := s.createAppointment(pet, vet, "2026-01-01 08:00")

	id, err := s.svc.Invoices.Create(s.ctx, actor, records.InvoiceInput{AppointmentID: appt, Amount: "35.50", PaymentMethod: "card"})
	s.Require().NoError(err)

	res, err := s.svc.Invoices.Delete(s.ctx, actor, id)
	s.Require().NoError(err)
	s.False(res.Soft)
	s.EqualValues(1, res.RowsAffected)

	items, err := s.svc.Invoices.List(s.ctx, records.ListParams{})
	s.Require().NoError(err)
	s.Empty(items)

	res, err = s.svc.Invoices.Delete(s.ctx, actor, id)
	s.Require().NoError(err)
	s.Zero(res.RowsAffected)
}

func (s *RecordsSuite) TestInvoice_UnknownAppointment() {
	_, err := s.svc.Invoices.Create(s.ctx, actor, records.InvoiceInput{AppointmentID: 5, Amount: "1", PaymentMethod: "cash"})
	ve, ok := failure.AsValidation(err)
	s.Require().True(ok)
	s.Equal("appointment_id", ve.Field)
	s.Equal(int64(5), ve.RefID)
}

func (s *RecordsSuite) TestInvoice_NoUpdate() {
	_, err := s.svc.Invoices.Update(s.ctx, actor, 1, records.InvoiceInput{})
	s.ErrorIs(err, failure.ErrUnsupported)
}

// -------------------------
// Reconciliation
// -------------------------

// blindFinder simula la ventana de carrera: el chequeo previo nunca ve el duplicado.
type blindFinder struct{ calls int }

func (f *blindFinder) Taken(context.Context, string, string, any, string, int64) (bool, error) {
	f.calls++
	return false, nil
}

func TestCreate_StoreConflictIsReconciled(t *testing.T) {
	db := testutil.NewSQLite(t)
	deps := router.NewDeps(db.DB, db.Dialect, nil, nil, nil)
	finder := &blindFinder{}
	deps.Guard = uniqueness.New(finder, db.Dialect)
	svc := records.NewOwnerService(deps)

	_, err := svc.Create(context.Background(), actor, ana())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), actor, ana())
	de, ok := failure.AsDuplicate(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, "document", de.Field)
	assert.Equal(t, 2, finder.calls)
	assert.Equal(t, 1, db.Count(t, "owner", ""))
}

func TestCreate_EmptyMicrochipSkipsUniqueness(t *testing.T) {
	db := testutil.NewSQLite(t)
	deps := router.NewDeps(db.DB, db.Dialect, nil, nil, nil)
	finder := &blindFinder{}
	deps.Guard = uniqueness.New(finder, db.Dialect)
	svcs := records.NewServices(deps)

	owner, err := svcs.Owners.Create(context.Background(), actor, ana())
	require.NoError(t, err)
	calls := finder.calls

	_, err = svcs.Pets.Create(context.Background(), actor, records.PetInput{
		OwnerID: owner, SexID: 3, Name: "Sin chip", Species: "cat", Weight: "2",
	})
	require.NoError(t, err)
	assert.Equal(t, calls, finder.calls)
}

func TestCreate_ReadFailureIsFatal(t *testing.T) {
	db := testutil.NewSQLite(t)
	deps := router.NewDeps(db.DB, db.Dialect, nil, nil, nil)
	svc := records.NewOwnerService(deps)
	require.NoError(t, db.Close())

	_, err := svc.Create(context.Background(), actor, ana())
	fe, ok := failure.AsFatal(err)
	require.True(t, ok, "got %v", err)
	assert.NotEmpty(t, fe.Incident)
	assert.NotContains(t, fe.Error(), "sql:")
}
