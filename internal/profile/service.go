// Package profile manages what is known about a person: identity fields and
// the roles attached to them.
package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"rentctl/internal/errs"
	"rentctl/internal/models"
	"rentctl/internal/validate"
)

const (
	transcriptPlaceholder = "PDF"
	transcriptUpdated     = "UPDATED_PDF"
)

var (
	ErrNotFound     = errs.New(errs.NotFound, "user information not found")
	ErrRoleRequired = errs.New(errs.Precondition, "role required")
	ErrInUse        = errs.New(errs.Conflict, "value already in use")

	ErrNotUSCitizen            = errs.Refine(ErrRoleRequired, errs.Precondition, "you are not registered as a US Citizen")
	ErrNotInternationalStudent = errs.Refine(ErrRoleRequired, errs.Precondition, "you are not registered as an International Student")
	ErrNotStudent              = errs.Refine(ErrRoleRequired, errs.Precondition, "you are not registered as a Student")

	ErrPhoneInUse    = errs.Refine(ErrInUse, errs.Conflict, "this phone number is already in use by another user")
	ErrEmailInUse    = errs.Refine(ErrInUse, errs.Conflict, "this email is already in use by another user")
	ErrSSNInUse      = errs.Refine(ErrInUse, errs.Conflict, "this SSN is already in use by another user")
	ErrPassportInUse = errs.Refine(ErrInUse, errs.Conflict, "this passport ID is already in use by another user")

	ErrUnknownField = errs.New(errs.Validation, "unknown profile field")
)

// Field names an editable profile value.
type Field uint8

const (
	FieldName Field = iota + 1
	FieldPhone
	FieldEmail
	FieldSSN
	FieldPassportID
	FieldTranscript
)

func (f Field) String() string {
	switch f {
	case FieldName:
		return "Name"
	case FieldPhone:
		return "Phone"
	case FieldEmail:
		return "Email"
	case FieldSSN:
		return "SSN"
	case FieldPassportID:
		return "Passport ID"
	case FieldTranscript:
		return "Transcript"
	default:
		return "Unknown"
	}
}

// Change is one field edit. Name edits use FirstName and LastName; every
// other field uses Value.
type Change struct {
	Field     Field
	Value     string
	FirstName string
	LastName  string
}

// NameChange edits first and last name; a blank part keeps its current value.
func NameChange(first, last string) Change {
	return Change{Field: FieldName, FirstName: first, LastName: last}
}

// Set edits a single-valued field.
func Set(field Field, value string) Change {
	return Change{Field: field, Value: value}
}

// Attachment is a citizenship role together with its identifying document.
type Attachment struct {
	role  Role
	value string
}

func USCitizenWith(ssn string) Attachment {
	return Attachment{role: RoleUSCitizen, value: strings.TrimSpace(ssn)}
}

func InternationalStudentWith(passportID string) Attachment {
	return Attachment{role: RoleInternationalStudent, value: strings.TrimSpace(passportID)}
}

func (a Attachment) Role() Role {
	return a.role
}

// View is the assembled profile of one identity.
type View struct {
	UserID     uint
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Username   string
	LastLogin  *time.Time
	Roles      RoleSet
	SSN        string
	PassportID string
	Transcript string
}

type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// GetProfile reads identity, credential and role data for userID.
func (s *Service) GetProfile(ctx context.Context, userID uint) (*View, error) {
	db := s.db.WithContext(ctx)

	user, err := loadUser(db.Preload("Auth"), userID)
	if err != nil {
		return nil, err
	}
	roles, err := loadRoles(db, userID)
	if err != nil {
		return nil, err
	}

	view := &View{
		UserID:    user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
		Roles:     roles,
	}
	if user.Auth != nil {
		view.Username = user.Auth.Username
		view.LastLogin = user.Auth.LastLogin
	}

	if roles.Has(RoleUSCitizen) {
		var row models.USCitizen
		if err := db.First(&row, "user_id = ?", userID).Error; err != nil {
			return nil, errs.Store("load citizen", err)
		}
		view.SSN = row.SSN
	}
	if roles.Has(RoleInternationalStudent) {
		var row models.InternationalStudent
		if err := db.First(&row, "user_id = ?", userID).Error; err != nil {
			return nil, errs.Store("load international student", err)
		}
		view.PassportID = row.PassportID
	}
	if roles.Has(RoleStudent) {
		var row models.Student
		if err := db.First(&row, "user_id = ?", userID).Error; err != nil {
			return nil, errs.Store("load student", err)
		}
		view.Transcript = row.Transcript
	}
	return view, nil
}

// Roles returns the role set of userID.
func (s *Service) Roles(ctx context.Context, userID uint) (RoleSet, error) {
	db := s.db.WithContext(ctx)
	if _, err := loadUser(db, userID); err != nil {
		return 0, err
	}
	return loadRoles(db, userID)
}

// UpdateField applies one change in a single transaction.
func (s *Service) UpdateField(ctx context.Context, userID uint, change Change) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}

		switch change.Field {
		case FieldName:
			return updateName(tx, user, change.FirstName, change.LastName)
		case FieldPhone:
			return updatePhone(tx, user, strings.TrimSpace(change.Value))
		case FieldEmail:
			return updateEmail(tx, user, strings.TrimSpace(change.Value))
		case FieldSSN, FieldPassportID, FieldTranscript:
			roles, err := loadRoles(tx, userID)
			if err != nil {
				return err
			}
			return updateRoleField(tx, userID, roles, change.Field, strings.TrimSpace(change.Value))
		default:
			return ErrUnknownField
		}
	})
	if err != nil {
		return err
	}

	s.logger.Info("profile updated", zap.Uint("user_id", userID), zap.Stringer("field", change.Field))
	return nil
}

func updateName(tx *gorm.DB, user *models.User, first, last string) error {
	if first == "" {
		first = user.FirstName
	} else if err := validate.FirstName(first); err != nil {
		return err
	}
	if last == "" {
		last = user.LastName
	} else if err := validate.LastName(last); err != nil {
		return err
	}

	err := tx.Model(&models.User{}).Where("id = ?", user.ID).
		Updates(map[string]interface{}{"first_name": first, "last_name": last}).Error
	return errs.Store("update name", err)
}

func updatePhone(tx *gorm.DB, user *models.User, phone string) error {
	if phone == "" || phone == user.Phone {
		return nil
	}
	taken, err := exists(tx, &models.User{}, "phone = ? AND id <> ?", phone, user.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrPhoneInUse
	}

	err = tx.Model(&models.User{}).Where("id = ?", user.ID).Update("phone", phone).Error
	return errs.StoreOrConflict("update phone", err, ErrPhoneInUse)
}

// updateEmail moves the login handle along with the contact email.
func updateEmail(tx *gorm.DB, user *models.User, email string) error {
	if email == "" || email == user.Email {
		return nil
	}
	if err := validate.Email(email); err != nil {
		return err
	}
	taken, err := exists(tx, &models.User{}, "email = ? AND id <> ?", email, user.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailInUse
	}

	if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Update("email", email).Error; err != nil {
		return errs.StoreOrConflict("update email", err, ErrEmailInUse)
	}
	err = tx.Model(&models.UserAuth{}).Where("id = ?", user.AuthID).Update("username", email).Error
	return errs.StoreOrConflict("update username", err, ErrEmailInUse)
}

func updateRoleField(tx *gorm.DB, userID uint, roles RoleSet, field Field, value string) error {
	switch field {
	case FieldSSN:
		if !roles.Has(RoleUSCitizen) {
			return ErrNotUSCitizen
		}
		if value == "" {
			return nil
		}
		if err := validate.SSN(value); err != nil {
			return err
		}
		taken, err := exists(tx, &models.USCitizen{}, "ssn = ? AND user_id <> ?", value, userID)
		if err != nil {
			return err
		}
		if taken {
			return ErrSSNInUse
		}
		err = tx.Model(&models.USCitizen{}).Where("user_id = ?", userID).Update("ssn", value).Error
		return errs.StoreOrConflict("update ssn", err, ErrSSNInUse)

	case FieldPassportID:
		if !roles.Has(RoleInternationalStudent) {
			return ErrNotInternationalStudent
		}
		if err := validate.PassportID(value); err != nil {
			return err
		}
		taken, err := exists(tx, &models.InternationalStudent{}, "passport_id = ? AND user_id <> ?", value, userID)
		if err != nil {
			return err
		}
		if taken {
			return ErrPassportInUse
		}
		err = tx.Model(&models.InternationalStudent{}).Where("user_id = ?", userID).Update("passport_id", value).Error
		return errs.StoreOrConflict("update passport", err, ErrPassportInUse)

	default:
		if !roles.Has(RoleStudent) {
			return ErrNotStudent
		}
		// No document storage: the transcript is a reference token.
		if value == "" {
			value = transcriptUpdated
		}
		err := tx.Model(&models.Student{}).Where("user_id = ?", userID).Update("transcript", value).Error
		return errs.Store("update transcript", err)
	}
}

// AttachRole classifies userID as a US citizen or an international student.
func (s *Service) AttachRole(ctx context.Context, userID uint, a Attachment) error {
	switch a.role {
	case RoleUSCitizen:
		if err := validate.SSN(a.value); err != nil {
			return err
		}
	case RoleInternationalStudent:
		if err := validate.PassportID(a.value); err != nil {
			return err
		}
	default:
		return ErrUnknownField
	}

	table, column, inUse := interface{}(&models.USCitizen{}), "ssn", ErrSSNInUse
	if a.role == RoleInternationalStudent {
		table, column, inUse = &models.InternationalStudent{}, "passport_id", ErrPassportInUse
	}
	unique := func(tx *gorm.DB) error {
		taken, err := exists(tx, table, column+" = ?", a.value)
		if err != nil {
			return err
		}
		if taken {
			return inUse
		}
		return nil
	}

	added, err := s.attach(ctx, userID, a.role, unique, a.value)
	if err != nil {
		return err
	}

	s.logger.Info("role attached", zap.Uint("user_id", userID), zap.Stringers("roles", added))
	return nil
}

// AttachStudent adds the student role; it is a no-op when already present.
func (s *Service) AttachStudent(ctx context.Context, userID uint) error {
	_, err := s.attach(ctx, userID, RoleStudent, nil, "")
	return err
}

// EnsureTenant adds the tenant role if missing and reports whether it did.
func (s *Service) EnsureTenant(ctx context.Context, userID uint) (bool, error) {
	added, err := s.attach(ctx, userID, RoleTenant, nil, "")
	if err != nil {
		return false, err
	}
	if len(added) > 0 {
		s.logger.Info("registered as tenant", zap.Uint("user_id", userID))
	}
	return len(added) > 0, nil
}

// attach runs the role transition for r and inserts a row for each role the
// transition adds. check runs after the transition is known to be legal.
func (s *Service) attach(ctx context.Context, userID uint, r Role, check func(*gorm.DB) error, value string) ([]Role, error) {
	var added []Role
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadUser(tx, userID); err != nil {
			return err
		}
		current, err := loadRoles(tx, userID)
		if err != nil {
			return err
		}
		next, err := current.Attach(r)
		if err != nil {
			return err
		}
		added = current.Added(next)
		if len(added) == 0 {
			return nil
		}
		if check != nil {
			if err := check(tx); err != nil {
				return err
			}
		}

		for _, role := range added {
			if err := insertRole(tx, userID, role, value); err != nil {
				return err
			}
		}
		return nil
	})
	return added, err
}

func insertRole(tx *gorm.DB, userID uint, r Role, value string) error {
	var row interface{}
	conflict := error(ErrInUse)
	switch r {
	case RoleTenant:
		row = &models.Tenant{UserID: userID}
	case RoleLandlord:
		row = &models.Landlord{UserID: userID}
	case RoleUSCitizen:
		row = &models.USCitizen{UserID: userID, SSN: value}
		conflict = ErrSSNInUse
	case RoleInternationalStudent:
		row = &models.InternationalStudent{UserID: userID, PassportID: value}
		conflict = ErrPassportInUse
	case RoleStudent:
		row = &models.Student{UserID: userID, Transcript: transcriptPlaceholder}
	default:
		return ErrUnknownField
	}
	return errs.StoreOrConflict("attach "+r.String(), tx.Create(row).Error, conflict)
}

func loadUser(db *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	err := db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errs.Store("load user", err)
	}
	return &user, nil
}

var roleTables = []struct {
	role  Role
	model interface{}
}{
	{RoleTenant, &models.Tenant{}},
	{RoleLandlord, &models.Landlord{}},
	{RoleUSCitizen, &models.USCitizen{}},
	{RoleInternationalStudent, &models.InternationalStudent{}},
	{RoleStudent, &models.Student{}},
}

func loadRoles(db *gorm.DB, userID uint) (RoleSet, error) {
	var set RoleSet
	for _, t := range roleTables {
		held, err := exists(db, t.model, "user_id = ?", userID)
		if err != nil {
			return 0, err
		}
		if held {
			set |= RoleSet(t.role)
		}
	}
	return set, nil
}

func exists(db *gorm.DB, model interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := db.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, errs.Store("lookup", err)
	}
	return count > 0, nil
}
