// Package rental turns available properties into leases and answers the
// read-only questions around them: search, brokers and rental history.
package rental

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"rentctl/internal/errs"
	"rentctl/internal/models"
	"rentctl/internal/validate"
)

var (
	ErrPropertyNotFound    = errs.New(errs.NotFound, "property not found")
	ErrPropertyUnavailable = errs.Refine(ErrPropertyNotFound, errs.Precondition, "property not found or not available for rent")
	ErrAlreadyRenting      = errs.Refine(ErrPropertyUnavailable, errs.Precondition, "you are already renting this property")
	ErrNotTenant           = errs.New(errs.Precondition, "you are not registered as a tenant")
	ErrUnknownBroker       = errs.New(errs.Validation, "invalid broker ID, select from the list")
	ErrDraftClosed         = errs.New(errs.Precondition, "this rental has already been completed or cancelled")
)

// TenantRegistrar attaches the tenant role on demand.
type TenantRegistrar interface {
	EnsureTenant(ctx context.Context, userID uint) (bool, error)
}

type Service struct {
	db      *gorm.DB
	tenants TenantRegistrar
	now     func() time.Time
	logger  *zap.Logger
}

func NewService(db *gorm.DB, tenants TenantRegistrar, logger *zap.Logger) *Service {
	return &Service{db: db, tenants: tenants, now: time.Now, logger: logger}
}

// WithClock replaces the time source that decides "today".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) today() time.Time {
	return validate.Day(s.now())
}

// ListBrokers returns every broker ordered by id.
func (s *Service) ListBrokers(ctx context.Context) ([]models.Broker, error) {
	var brokers []models.Broker
	if err := s.db.WithContext(ctx).Order("id").Find(&brokers).Error; err != nil {
		return nil, errs.Store("list brokers", err)
	}
	return brokers, nil
}

// Rentals partitions a tenant's leases by whether they have ended.
type Rentals struct {
	Current []models.Lease
	Past    []models.Lease
}

// ListRentals returns every lease of tenantID, latest end date first.
func (s *Service) ListRentals(ctx context.Context, tenantID uint) (*Rentals, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Tenant{}).Where("user_id = ?", tenantID).Count(&count).Error; err != nil {
		return nil, errs.Store("check tenant", err)
	}
	if count == 0 {
		return nil, ErrNotTenant
	}

	var leases []models.Lease
	err := db.Preload("Property.Landlord.User").
		Preload("Broker").
		Where("tenant_id = ?", tenantID).
		Order("end_date DESC").
		Order("id DESC").
		Find(&leases).Error
	if err != nil {
		return nil, errs.Store("list rentals", err)
	}

	today := s.today()
	rentals := &Rentals{}
	for _, lease := range leases {
		if validate.Day(lease.EndDate).Before(today) {
			rentals.Past = append(rentals.Past, lease)
		} else {
			rentals.Current = append(rentals.Current, lease)
		}
	}
	return rentals, nil
}

func hasActiveLease(db *gorm.DB, tenantID, propertyID uint, today time.Time) (bool, error) {
	var count int64
	err := db.Model(&models.Lease{}).
		Where("tenant_id = ? AND property_id = ? AND end_date >= ?", tenantID, propertyID, today).
		Count(&count).Error
	if err != nil {
		return false, errs.Store("check active lease", err)
	}
	return count > 0, nil
}

func loadProperty(db *gorm.DB, propertyID uint) (*models.Property, error) {
	var property models.Property
	err := db.First(&property, propertyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, errs.Store("load property", err)
	}
	return &property, nil
}
