package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"rentctl/internal/auth"
	"rentctl/internal/errs"
	"rentctl/internal/models"
	"rentctl/internal/testdb"
	"rentctl/internal/validate"
)

type fixture struct {
	db      *gorm.DB
	auth    *auth.Service
	profile *Service
}

func setup(t *testing.T) *fixture {
	db := testdb.Open(t)
	return &fixture{
		db:      db,
		auth:    auth.NewService(db, auth.Hasher{Cost: bcrypt.MinCost}, zap.NewNop()),
		profile: NewService(db, zap.NewNop()),
	}
}

func (f *fixture) signup(t *testing.T, email, phone string) uint {
	ctx := context.Background()
	_, err := f.auth.Register(ctx, auth.Signup{
		Email:           email,
		Password:        "pw123",
		ConfirmPassword: "pw123",
		FirstName:       "Test",
		LastName:        "User",
		Phone:           phone,
	})
	require.NoError(t, err)

	id, err := f.auth.Authenticate(ctx, email, "pw123")
	require.NoError(t, err)
	return id
}

func TestEndToEndCitizenScenario(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	email, err := f.auth.Register(ctx, auth.Signup{
		Email:           "alice@example.com",
		Password:        "pw123",
		ConfirmPassword: "pw123",
		FirstName:       "Alice",
		LastName:        "Liddell",
		Phone:           "555-0100",
	})
	require.NoError(t, err)

	id, err := f.auth.Authenticate(ctx, email, "pw123")
	require.NoError(t, err)

	require.NoError(t, f.profile.AttachRole(ctx, id, USCitizenWith("123-45-6789")))
	require.NoError(t, f.profile.UpdateField(ctx, id, Set(FieldSSN, "987-65-4321")))

	view, err := f.profile.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "987-65-4321", view.SSN)
	assert.True(t, view.Roles.Has(RoleUSCitizen))
	assert.Equal(t, "alice@example.com", view.Username)
	assert.NotNil(t, view.LastLogin)

	err = f.profile.AttachRole(ctx, id, InternationalStudentWith("P1"))
	assert.ErrorIs(t, err, ErrAlreadyClassified)

	var n int64
	require.NoError(t, f.db.Model(&models.InternationalStudent{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestAttachRoleMutualExclusion(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	citizen := f.signup(t, "c@example.com", "1")
	require.NoError(t, f.profile.AttachRole(ctx, citizen, USCitizenWith("123456789")))
	assert.ErrorIs(t, f.profile.AttachRole(ctx, citizen, InternationalStudentWith("P9")), ErrAlreadyClassified)

	intl := f.signup(t, "i@example.com", "2")
	require.NoError(t, f.profile.AttachRole(ctx, intl, InternationalStudentWith("P1")))
	err := f.profile.AttachRole(ctx, intl, USCitizenWith("111-22-3333"))
	assert.ErrorIs(t, err, ErrAlreadyClassified)
	assert.True(t, errors.Is(err, errs.Precondition))
}

func TestInternationalStudentImpliesStudent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.signup(t, "s@example.com", "1")

	require.NoError(t, f.profile.AttachRole(ctx, id, InternationalStudentWith("P1")))

	view, err := f.profile.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.True(t, view.Roles.Has(RoleInternationalStudent))
	assert.True(t, view.Roles.Has(RoleStudent))
	assert.Equal(t, "P1", view.PassportID)
	assert.Equal(t, "PDF", view.Transcript)
}

func TestInternationalStudentKeepsExistingStudent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.signup(t, "s@example.com", "1")

	require.NoError(t, f.profile.AttachStudent(ctx, id))
	require.NoError(t, f.profile.UpdateField(ctx, id, Set(FieldTranscript, "transcript-2024")))
	require.NoError(t, f.profile.AttachRole(ctx, id, InternationalStudentWith("P1")))

	view, err := f.profile.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "transcript-2024", view.Transcript)
}

func TestAttachRoleConflicts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	first := f.signup(t, "a@example.com", "1")
	second := f.signup(t, "b@example.com", "2")

	require.NoError(t, f.profile.AttachRole(ctx, first, USCitizenWith("123-45-6789")))
	err := f.profile.AttachRole(ctx, second, USCitizenWith("123-45-6789"))
	assert.ErrorIs(t, err, ErrSSNInUse)
	assert.True(t, errors.Is(err, errs.Conflict))

	third := f.signup(t, "c@example.com", "3")
	require.NoError(t, f.profile.AttachRole(ctx, third, InternationalStudentWith("P1")))
	err = f.profile.AttachRole(ctx, second, InternationalStudentWith("P1"))
	assert.ErrorIs(t, err, ErrPassportInUse)

	roles, err := f.profile.Roles(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, RoleSet(0), roles)
}

func TestAttachRoleValidatesPayload(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.signup(t, "a@example.com", "1")

	assert.ErrorIs(t, f.profile.AttachRole(ctx, id, USCitizenWith("12-345")), validate.ErrInvalidSSN)
	assert.ErrorIs(t, f.profile.AttachRole(ctx, id, InternationalStudentWith("  ")), validate.ErrInvalidPassportID)
	assert.ErrorIs(t, f.profile.AttachRole(ctx, id, Attachment{}), ErrUnknownField)
}

func TestAttachStudentIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.signup(t, "a@example.com", "1")

	require.NoError(t, f.profile.AttachStudent(ctx, id))
	require.NoError(t, f.profile.AttachStudent(ctx, id))

	var n int64
	require.NoError(t, f.db.Model(&models.Student{}).Where("user_id = ?", id).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestEnsureTenant(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.signup(t, "a@example.com", "1")

	added, err := f.profile.EnsureTenant(ctx, id)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = f.profile.EnsureTenant(ctx, id)
	require.NoError(t, err)
	assert.False(t, added)

	_, err = f.profile.EnsureTenant(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateName(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.signup(t, "a@example.com", "1")

	require.NoError(t, f.profile.UpdateField(ctx, id, NameChange("", "Smith-Jones")))
	view, err := f.profile.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Test", view.FirstName)
	assert.Equal(t, "Smith-Jones", view.LastName)

	require.NoError(t, f.profile.UpdateField(ctx, id, NameChange("", "")))
	view, err = f.profile.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Test", view.FirstName)
	assert.Equal(t, "Smith-Jones", view.LastName)

	err = f.profile.UpdateField(ctx, id, NameChange("Mary", "O'Brien"))
	assert.ErrorIs(t, err, validate.ErrInvalidLastName)
	view, err = f.profile.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Test", view.FirstName)
}

func TestUpdateContactConflicts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.signup(t, "a@example.com", "111")
	f.signup(t, "b@example.com", "222")

	assert.ErrorIs(t, f.profile.UpdateField(ctx, a, Set(FieldPhone, "222")), ErrPhoneInUse)
	assert.ErrorIs(t, f.profile.UpdateField(ctx, a, Set(FieldEmail, "b@example.com")), ErrEmailInUse)
	assert.ErrorIs(t, f.profile.UpdateField(ctx, a, Set(FieldEmail, "not-an-email")), validate.ErrInvalidEmail)

	require.NoError(t, f.profile.UpdateField(ctx, a, Set(FieldPhone, "333")))
	require.NoError(t, f.profile.UpdateField(ctx, a, Set(FieldPhone, "")))
	require.NoError(t, f.profile.UpdateField(ctx, a, Set(FieldEmail, "a2@example.com")))

	view, err := f.profile.GetProfile(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "333", view.Phone)
	assert.Equal(t, "a2@example.com", view.Email)
	assert.Equal(t, "a2@example.com", view.Username)

	_, err = f.auth.Authenticate(ctx, "a2@example.com", "pw123")
	assert.NoError(t, err)
}

func TestUpdateRoleFieldsRequireRole(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.signup(t, "a@example.com", "1")

	assert.ErrorIs(t, f.profile.UpdateField(ctx, id, Set(FieldSSN, "123-45-6789")), ErrNotUSCitizen)
	assert.ErrorIs(t, f.profile.UpdateField(ctx, id, Set(FieldPassportID, "P1")), ErrNotInternationalStudent)
	err := f.profile.UpdateField(ctx, id, Set(FieldTranscript, ""))
	assert.ErrorIs(t, err, ErrNotStudent)
	assert.True(t, errors.Is(err, ErrRoleRequired))
	assert.ErrorIs(t, f.profile.UpdateField(ctx, id, Set(Field(99), "x")), ErrUnknownField)
}

func TestUpdateRoleFields(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	intl := f.signup(t, "a@example.com", "1")
	other := f.signup(t, "b@example.com", "2")
	citizen := f.signup(t, "c@example.com", "3")

	require.NoError(t, f.profile.AttachRole(ctx, intl, InternationalStudentWith("P1")))
	require.NoError(t, f.profile.AttachRole(ctx, other, InternationalStudentWith("P2")))
	require.NoError(t, f.profile.AttachRole(ctx, citizen, USCitizenWith("123-45-6789")))

	assert.ErrorIs(t, f.profile.UpdateField(ctx, intl, Set(FieldPassportID, "P2")), ErrPassportInUse)
	assert.ErrorIs(t, f.profile.UpdateField(ctx, intl, Set(FieldPassportID, "")), validate.ErrInvalidPassportID)
	require.NoError(t, f.profile.UpdateField(ctx, intl, Set(FieldPassportID, "P3")))
	require.NoError(t, f.profile.UpdateField(ctx, intl, Set(FieldTranscript, "")))

	assert.ErrorIs(t, f.profile.UpdateField(ctx, citizen, Set(FieldSSN, "12345")), validate.ErrInvalidSSN)
	require.NoError(t, f.profile.UpdateField(ctx, citizen, Set(FieldSSN, "")))

	view, err := f.profile.GetProfile(ctx, intl)
	require.NoError(t, err)
	assert.Equal(t, "P3", view.PassportID)
	assert.Equal(t, "UPDATED_PDF", view.Transcript)

	view, err = f.profile.GetProfile(ctx, citizen)
	require.NoError(t, err)
	assert.Equal(t, "123-45-6789", view.SSN)
}

func TestGetProfileUnknownUser(t *testing.T) {
	f := setup(t)

	_, err := f.profile.GetProfile(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, errors.Is(err, errs.NotFound))
}
