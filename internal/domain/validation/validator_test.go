package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-records/internal/domain/failure"
	"vet-records/internal/domain/schema"
)

// -------------------------
// Lookup fake
// -------------------------

type fakeLookup struct {
	rows  map[string]map[int64]bool
	err   error
	calls int
}

func newFakeLookup() *fakeLookup {
	return &fakeLookup{rows: map[string]map[int64]bool{}}
}

func (l *fakeLookup) add(source string, ids ...int64) {
	if l.rows[source] == nil {
		l.rows[source] = map[int64]bool{}
	}
	for _, id := range ids {
		l.rows[source][id] = true
	}
}

func (l *fakeLookup) Exists(_ context.Context, source, _ string, id int64) (bool, error) {
	l.calls++
	if l.err != nil {
		return false, l.err
	}
	return l.rows[source][id], nil
}

type petRec struct {
	name, species, breed, birth, weight, color, chip, sex, owner string
}

func petValues(p petRec) []schema.Value {
	texts := map[string]string{
		"name": p.name, "species": p.species, "breed": p.breed, "birth_date": p.birth,
		"weight": p.weight, "color": p.color, "microchip": p.chip, "sex_id": p.sex, "owner_id": p.owner,
	}
	out := make([]schema.Value, 0, len(schema.PetMeta.Fields))
	for _, f := range schema.PetMeta.Fields {
		out = append(out, schema.Value{Field: f, Text: texts[f.Name], Arg: texts[f.Name]})
	}
	return out
}

func validPet() petRec {
	return petRec{name: "Firulais", species: "dog", weight: "12.5", chip: "AB-12", sex: "1", owner: "1"}
}

func newValidator() (*Validator, *fakeLookup) {
	l := newFakeLookup()
	l.add(schema.TableSex, 1, 2, 3)
	l.add(schema.ViewOwnerActive, 1)
	return New(l), l
}

// -------------------------
// Tests
// -------------------------

func TestValidate_ValidPet(t *testing.T) {
	v, _ := newValidator()
	require.NoError(t, v.Validate(context.Background(), schema.PetMeta, petValues(validPet())))
}

func TestValidate_RequiredBeforeFormat(t *testing.T) {
	v, l := newValidator()
	p := validPet()
	p.name = "   "
	p.chip = "bad chip!"
	p.weight = "-3"

	err := v.Validate(context.Background(), schema.PetMeta, petValues(p))
	ve, ok := failure.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "name", ve.Field)
	assert.Equal(t, failure.KindMissing, ve.Kind)
	assert.Zero(t, l.calls, "references must not be looked up when earlier phases fail")
}

func TestValidate_NegativeWeight(t *testing.T) {
	v, _ := newValidator()
	p := validPet()
	p.weight = "-1"

	err := v.Validate(context.Background(), schema.PetMeta, petValues(p))
	ve, ok := failure.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "weight", ve.Field)
	assert.Equal(t, "must be a non-negative number", ve.Reason)
	assert.Equal(t, failure.KindNumber, ve.Kind)
}

func TestValidate_NumberReasonDiffersFromMissing(t *testing.T) {
	v, _ := newValidator()
	for _, w := range []string{"abc", "NaN", "Inf", "-0.5"} {
		p := validPet()
		p.weight = w
		ve, ok := failure.AsValidation(v.Validate(context.Background(), schema.PetMeta, petValues(p)))
		require.True(t, ok, w)
		assert.NotEqual(t, ReasonRequired, ve.Reason, w)
	}

	p := validPet()
	p.weight = ""
	ve, ok := failure.AsValidation(v.Validate(context.Background(), schema.PetMeta, petValues(p)))
	require.True(t, ok)
	assert.Equal(t, ReasonRequired, ve.Reason)
}

func TestValidate_Formats(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*petRec)
		field  string
		reason string
	}{
		{"bad microchip", func(p *petRec) { p.chip = "AB 12" }, "microchip", ReasonCode},
		{"bad birth date", func(p *petRec) { p.birth = "12/01/2020" }, "birth_date", ReasonDate},
		{"empty optional passes", func(p *petRec) { p.chip = ""; p.birth = "" }, "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, _ := newValidator()
			p := validPet()
			tc.mutate(&p)
			err := v.Validate(context.Background(), schema.PetMeta, petValues(p))
			if tc.field == "" {
				require.NoError(t, err)
				return
			}
			ve, ok := failure.AsValidation(err)
			require.True(t, ok)
			assert.Equal(t, tc.field, ve.Field)
			assert.Equal(t, tc.reason, ve.Reason)
		})
	}
}

func TestValidate_OwnerFormats(t *testing.T) {
	v, _ := newValidator()
	values := func(phone, email string) []schema.Value {
		texts := map[string]string{"name": "Ana", "phone": phone, "email": email, "address": "Calle 1", "document": "123"}
		out := []schema.Value{}
		for _, f := range schema.OwnerMeta.Fields {
			out = append(out, schema.Value{Field: f, Text: texts[f.Name]})
		}
		return out
	}

	ve, ok := failure.AsValidation(v.Validate(context.Background(), schema.OwnerMeta, values("555-12", "a@b.co")))
	require.True(t, ok)
	assert.Equal(t, "phone", ve.Field)

	ve, ok = failure.AsValidation(v.Validate(context.Background(), schema.OwnerMeta, values("55512", "ab.co")))
	require.True(t, ok)
	assert.Equal(t, "email", ve.Field)
	assert.Equal(t, ReasonEmail, ve.Reason)

	require.NoError(t, v.Validate(context.Background(), schema.OwnerMeta, values("55512", "ana@vet.com")))
}

func TestValidate_InactiveOwnerIsReferential(t *testing.T) {
	v, _ := newValidator()
	p := validPet()
	p.owner = "9"

	err := v.Validate(context.Background(), schema.PetMeta, petValues(p))
	require.True(t, failure.IsReferential(err))
	ve, _ := failure.AsValidation(err)
	assert.Equal(t, "owner_id", ve.Field)
	assert.Equal(t, int64(9), ve.RefID)
	assert.Contains(t, ve.Reason, "9")
}

func TestValidate_NonPositiveIDSkipsLookup(t *testing.T) {
	v, l := newValidator()
	p := validPet()
	p.sex = "0"

	err := v.Validate(context.Background(), schema.PetMeta, petValues(p))
	require.True(t, failure.IsReferential(err))
	assert.Zero(t, l.calls)
}

func TestValidate_LookupErrorIsNotValidation(t *testing.T) {
	v, l := newValidator()
	l.err = errors.New("connection reset")

	err := v.Validate(context.Background(), schema.PetMeta, petValues(validPet()))
	require.Error(t, err)
	_, ok := failure.AsValidation(err)
	assert.False(t, ok)
	assert.ErrorIs(t, err, l.err)
}

func TestValidate_Deterministic(t *testing.T) {
	v, _ := newValidator()
	p := validPet()
	p.species = ""
	p.chip = "?"
	p.owner = "77"

	first := v.Validate(context.Background(), schema.PetMeta, petValues(p))
	for i := 0; i < 20; i++ {
		assert.Equal(t, first.Error(), v.Validate(context.Background(), schema.PetMeta, petValues(p)).Error())
	}
}

func TestParseNonNegative(t *testing.T) {
	f, ok := ParseNonNegative(" 4.25 ")
	assert.True(t, ok)
	assert.Equal(t, 4.25, f)

	_, ok = ParseNonNegative("-1")
	assert.False(t, ok)
}
