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

// State is where a booking attempt stands.
type State uint8

const (
	Drafting State = iota
	Succeeded
	Cancelled
	Rejected
)

func (s State) String() string {
	switch s {
	case Drafting:
		return "drafting"
	case Succeeded:
		return "succeeded"
	case Cancelled:
		return "cancelled"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Draft is a booking attempt that passed its preconditions and is gathering
// the term and broker before commit. Nothing is written until Commit.
type Draft struct {
	TenantID    uint
	TenantAdded bool
	Property    models.Property
	Brokers     []models.Broker
	Months      int
	Broker      *models.Broker
	BrokerFee   *float64
	StartDate   time.Time
	EndDate     time.Time
	State       State
	LeaseID     uint
	today       time.Time
}

// Request is a complete, non-interactive booking.
type Request struct {
	PropertyID uint
	Months     int
	BrokerID   *uint
	BrokerFee  float64
}

// Begin checks that tenantID may rent propertyID. The tenant role is attached
// first if missing.
func (s *Service) Begin(ctx context.Context, tenantID, propertyID uint) (*Draft, error) {
	added, err := s.tenants.EnsureTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	today := s.today()

	var property models.Property
	err = db.Preload("Landlord.User").First(&property, propertyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, errs.Store("load property", err)
	}

	renting, err := hasActiveLease(db, tenantID, propertyID, today)
	if err != nil {
		return nil, err
	}
	if !property.ForRent {
		if renting {
			return nil, ErrAlreadyRenting
		}
		return nil, ErrPropertyUnavailable
	}
	if renting {
		return nil, ErrAlreadyRenting
	}

	brokers, err := s.ListBrokers(ctx)
	if err != nil {
		return nil, err
	}

	return &Draft{
		TenantID:    tenantID,
		TenantAdded: added,
		Property:    property,
		Brokers:     brokers,
		today:       today,
	}, nil
}

// SetTerm fixes the contract length and the resulting lease dates.
func (d *Draft) SetTerm(months int) error {
	if err := validate.Term(months); err != nil {
		return err
	}
	d.Months = months
	d.StartDate = d.today
	d.EndDate = validate.LeaseEnd(d.today, months)
	return nil
}

// SetBroker selects one of the offered brokers with a non-negative fee.
func (d *Draft) SetBroker(brokerID uint, fee float64) error {
	var chosen *models.Broker
	for i := range d.Brokers {
		if d.Brokers[i].ID == brokerID {
			chosen = &d.Brokers[i]
			break
		}
	}
	if chosen == nil {
		return ErrUnknownBroker
	}
	if err := validate.BrokerFee(fee); err != nil {
		return err
	}
	d.Broker = chosen
	d.BrokerFee = &fee
	return nil
}

// ClearBroker books without a broker.
func (d *Draft) ClearBroker() {
	d.Broker = nil
	d.BrokerFee = nil
}

// Cancel abandons the draft; it performs no writes.
func (d *Draft) Cancel() {
	if d.State == Drafting {
		d.State = Cancelled
	}
}

// Commit writes the lease, records the broker relationship, and takes the
// property off the market in one transaction. The availability flip is
// conditional, so a property booked by another session since Begin rejects
// the commit instead of double-booking it.
func (s *Service) Commit(ctx context.Context, d *Draft) (*models.Lease, error) {
	if d.State != Drafting {
		return nil, ErrDraftClosed
	}
	if err := validate.Term(d.Months); err != nil {
		return nil, err
	}

	var lease *models.Lease
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		property, err := loadProperty(tx, d.Property.ID)
		if err != nil {
			return err
		}
		renting, err := hasActiveLease(tx, d.TenantID, property.ID, d.today)
		if err != nil {
			return err
		}
		if renting {
			return ErrAlreadyRenting
		}
		if !property.ForRent {
			return ErrPropertyUnavailable
		}

		lease = &models.Lease{
			TenantID:       d.TenantID,
			PropertyID:     property.ID,
			ContractLength: d.Months,
			Price:          property.Price,
			BrokerFee:      d.BrokerFee,
			StartDate:      d.StartDate,
			EndDate:        d.EndDate,
		}
		if d.Broker != nil {
			lease.BrokerID = &d.Broker.ID
		}
		if err := tx.Create(lease).Error; err != nil {
			return errs.Store("create lease", err)
		}

		if d.Broker != nil {
			link := models.BrokerTenant{BrokerID: d.Broker.ID, TenantID: d.TenantID}
			if err := tx.Where(&link).FirstOrCreate(&link).Error; err != nil {
				return errs.Store("link broker", err)
			}
		}

		res := tx.Model(&models.Property{}).
			Where("id = ? AND for_rent = ?", property.ID, true).
			Update("for_rent", false)
		if res.Error != nil {
			return errs.Store("mark property rented", res.Error)
		}
		if res.RowsAffected != 1 {
			return ErrPropertyUnavailable
		}
		return nil
	})
	if err != nil {
		if k := errs.KindOf(err); k == errs.Precondition || k == errs.NotFound {
			d.State = Rejected
		}
		return nil, err
	}

	d.State = Succeeded
	d.LeaseID = lease.ID
	s.logger.Info("lease created",
		zap.Uint("lease_id", lease.ID),
		zap.Uint("tenant_id", lease.TenantID),
		zap.Uint("property_id", lease.PropertyID),
		zap.Int("months", lease.ContractLength),
	)
	return lease, nil
}

// RentProperty runs a whole booking without interaction.
func (s *Service) RentProperty(ctx context.Context, tenantID uint, req Request) (*models.Lease, error) {
	draft, err := s.Begin(ctx, tenantID, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if err := draft.SetTerm(req.Months); err != nil {
		return nil, err
	}
	if req.BrokerID != nil {
		if err := draft.SetBroker(*req.BrokerID, req.BrokerFee); err != nil {
			return nil, err
		}
	}
	return s.Commit(ctx, draft)
}
