// Package auth owns credentials: account signup and password login.
package auth

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

var (
	ErrNotFound          = errs.New(errs.NotFound, "no account with this email")
	ErrInvalidCredential = errs.New(errs.Validation, "incorrect password")
	ErrDuplicateEmail    = errs.New(errs.Conflict, "an account with this email already exists")
	ErrDuplicatePhone    = errs.New(errs.Conflict, "this phone number is already in use by another user")
	ErrPasswordMismatch  = errs.New(errs.Validation, "passwords do not match")
	ErrEmptyPassword     = errs.New(errs.Validation, "password cannot be empty")
)

// Signup is the input to Register.
type Signup struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	Phone           string
}

// Session is the caller's authenticated identity for the rest of a run. It is
// held in process only.
type Session struct {
	UserID uint
	Email  string
}

type Service struct {
	db     *gorm.DB
	hasher Hasher
	now    func() time.Time
	logger *zap.Logger
}

func NewService(db *gorm.DB, hasher Hasher, logger *zap.Logger) *Service {
	return &Service{db: db, hasher: hasher, now: time.Now, logger: logger}
}

// WithClock replaces the time source used for last-login stamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// EmailTaken reports whether an account already uses email, so a prompt loop
// can stop before asking for the rest of the signup form.
func (s *Service) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", strings.TrimSpace(email)).Count(&count).Error
	if err != nil {
		return false, errs.Store("check email", err)
	}
	return count > 0, nil
}

// Register creates a credential and its identity in one transaction and
// returns the login email.
func (s *Service) Register(ctx context.Context, in Signup) (string, error) {
	email := strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Phone = strings.TrimSpace(in.Phone)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return errs.Store("check email", err)
		}
		if count > 0 {
			return ErrDuplicateEmail
		}

		if in.Password != in.ConfirmPassword {
			return ErrPasswordMismatch
		}
		if in.Password == "" {
			return ErrEmptyPassword
		}
		if err := validate.Email(email); err != nil {
			return err
		}
		if err := validate.FirstName(in.FirstName); err != nil {
			return err
		}
		if err := validate.LastName(in.LastName); err != nil {
			return err
		}
		if err := validate.Phone(in.Phone); err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).Where("phone = ?", in.Phone).Count(&count).Error; err != nil {
			return errs.Store("check phone", err)
		}
		if count > 0 {
			return ErrDuplicatePhone
		}

		salt, err := NewSalt()
		if err != nil {
			return err
		}
		hash, err := s.hasher.Hash(in.Password, salt)
		if err != nil {
			return err
		}

		cred := &models.UserAuth{Username: email, PasswordHash: hash, Salt: salt}
		if err := tx.Create(cred).Error; err != nil {
			return errs.StoreOrConflict("create credential", err, ErrDuplicateEmail)
		}

		user := &models.User{
			AuthID:    cred.ID,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Phone:     in.Phone,
			Email:     email,
		}
		if err := createUser(tx, user); err != nil {
			return err
		}

		s.logger.Info("account created", zap.Uint("user_id", user.ID), zap.String("email", email))
		return nil
	})
	if err != nil {
		return "", err
	}
	return email, nil
}

// Authenticate checks email and password and stamps the credential's last
// login. It returns the identity id.
func (s *Service) Authenticate(ctx context.Context, email, password string) (uint, error) {
	email = strings.TrimSpace(email)

	var user models.User
	err := s.db.WithContext(ctx).Preload("Auth").Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, errs.Store("load user", err)
	}
	if user.Auth == nil {
		return 0, errs.Store("load credential", gorm.ErrRecordNotFound)
	}

	ok, err := s.hasher.Verify(user.Auth.PasswordHash, password, user.Auth.Salt)
	if err != nil {
		return 0, errs.Store("verify password", err)
	}
	if !ok {
		s.logger.Info("login rejected", zap.Uint("user_id", user.ID))
		return 0, ErrInvalidCredential
	}

	err = s.db.WithContext(ctx).Model(&models.UserAuth{}).
		Where("id = ?", user.AuthID).
		Update("last_login", s.now()).Error
	if err != nil {
		return 0, errs.Store("update last login", err)
	}

	s.logger.Info("login", zap.Uint("user_id", user.ID))
	return user.ID, nil
}

// Login authenticates and returns the session the shell keeps.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	id, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return &Session{UserID: id, Email: strings.TrimSpace(email)}, nil
}

// createUser inserts user under a savepoint so that, on a uniqueness
// violation, the transaction can still tell which unique column collided.
func createUser(tx *gorm.DB, user *models.User) error {
	err := tx.Transaction(func(inner *gorm.DB) error {
		return inner.Create(user).Error
	})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.Store("create user", err)
	}

	var count int64
	if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return errs.Store("check email", err)
	}
	if count > 0 {
		return ErrDuplicateEmail
	}
	return ErrDuplicatePhone
}
