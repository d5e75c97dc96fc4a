package shell

import (
	"context"
	"errors"
	"math"
	"strconv"

	"rentctl/internal/errs"
	"rentctl/internal/rental"
	"rentctl/internal/validate"
)

var errBadFee = errs.New(errs.Validation, "please enter a valid number for broker fee")

func (s *Shell) searchProperties(ctx context.Context) error {
	s.heading("Property Search Filters")
	s.println("(Leave blank to skip filter)")

	var raw rental.Filter
	var err error
	if raw.City, err = s.ask("City: "); err != nil {
		return err
	}
	if raw.State, err = s.ask("State: "); err != nil {
		return err
	}
	if raw.MinPrice, err = s.number("Minimum Price: ", "minimum price"); err != nil {
		return err
	}
	if raw.MaxPrice, err = s.number("Maximum Price: ", "maximum price"); err != nil {
		return err
	}
	if raw.MinSquareFoot, err = s.number("Minimum Square Footage: ", "minimum square footage"); err != nil {
		return err
	}
	if raw.MinRooms, err = s.count("Minimum Number of Rooms: ", "minimum rooms"); err != nil {
		return err
	}

	filter := raw.Normalize()
	for _, note := range adjustments(raw, filter) {
		s.println(note)
	}

	properties, err := s.rentals.SearchProperties(ctx, filter)
	if err != nil {
		return s.fail(err)
	}
	if len(properties) == 0 {
		s.println("No available properties found matching your criteria.")
		return nil
	}
	s.heading("Available Properties (" + strconv.Itoa(len(properties)) + ")")
	s.println(PropertyTable(properties))
	return nil
}

// number reads an optional decimal. Blank, unparsable or non-finite input
// skips it.
func (s *Shell) number(label, name string) (*float64, error) {
	text, err := s.ask(label)
	if err != nil || text == "" {
		return nil, err
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		s.println("Invalid input for " + name + ". Skipping this filter.")
		return nil, nil
	}
	return &v, nil
}

func (s *Shell) count(label, name string) (*int, error) {
	text, err := s.ask(label)
	if err != nil || text == "" {
		return nil, err
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		s.println("Invalid input for " + name + ". Skipping this filter.")
		return nil, nil
	}
	return &v, nil
}

// adjustments describes how Normalize changed raw.
func adjustments(raw, clean rental.Filter) []string {
	var notes []string
	if raw.MinPrice != nil && *raw.MinPrice < 0 {
		notes = append(notes, "Minimum price cannot be negative. Using 0 instead.")
	}
	if raw.MaxPrice != nil && clean.MaxPrice == nil {
		if *raw.MaxPrice < 0 {
			notes = append(notes, "Maximum price cannot be negative. Skipping this filter.")
		} else {
			notes = append(notes, "Maximum price cannot be less than minimum price. Skipping this filter.")
		}
	}
	if raw.MinSquareFoot != nil && *raw.MinSquareFoot < 0 {
		notes = append(notes, "Minimum square footage cannot be negative. Using 0 instead.")
	}
	if raw.MinRooms != nil && *raw.MinRooms < 1 {
		notes = append(notes, "Minimum rooms cannot be less than 1. Using 1 instead.")
	}
	return notes
}

func (s *Shell) myRentals(ctx context.Context) error {
	rentals, err := s.rentals.ListRentals(ctx, s.session.UserID)
	if errors.Is(err, rental.ErrNotTenant) {
		s.problem(err)
		register, askErr := s.confirm("Do you want to register as a tenant? (y/n): ")
		if askErr != nil || !register {
			return askErr
		}
		if _, err := s.profiles.EnsureTenant(ctx, s.session.UserID); err != nil {
			return s.fail(err)
		}
		s.println("You have been registered as a tenant.")
		rentals, err = s.rentals.ListRentals(ctx, s.session.UserID)
	}
	if err != nil {
		return s.fail(err)
	}

	if len(rentals.Current) == 0 && len(rentals.Past) == 0 {
		s.println("You don't have any property rentals.")
		return nil
	}
	s.heading("My Rentals")
	if len(rentals.Current) > 0 {
		s.println("\nCURRENT RENTALS:")
		s.println(LeaseTable(rentals.Current, true))
	}
	if len(rentals.Past) > 0 {
		s.println("\nPAST RENTALS:")
		s.println(LeaseTable(rentals.Past, false))
	}
	return nil
}

func (s *Shell) rentProperty(ctx context.Context) error {
	var propertyID uint64
	for {
		text, err := s.ask("Enter the Property ID you want to rent: ")
		if err != nil {
			return err
		}
		if propertyID, err = strconv.ParseUint(text, 10, 64); err == nil {
			break
		}
		s.println("Invalid property ID. Please enter a number.")
	}

	draft, err := s.rentals.Begin(ctx, s.session.UserID, uint(propertyID))
	if err != nil {
		return s.fail(err)
	}
	if draft.TenantAdded {
		s.println("You have been registered as a tenant.")
	}

	s.heading("Rent Property")
	s.field("Property", draft.Property.Address())
	if l := draft.Property.Landlord; l != nil && l.User != nil {
		s.field("Landlord", l.User.FullName())
	}
	s.field("Monthly Rent", money(draft.Property.Price))

	err = s.until(func() error {
		text, err := s.ask("Contract Length (months): ")
		if err != nil {
			return err
		}
		months, convErr := strconv.Atoi(text)
		if convErr != nil {
			return validate.ErrInvalidTerm
		}
		return draft.SetTerm(months)
	})
	if err != nil {
		return err
	}

	if err := s.chooseBroker(draft); err != nil {
		return err
	}

	s.println(renderSummary(draft))
	ok, err := s.confirm("Confirm rental (y/n): ")
	if err != nil {
		return err
	}
	if !ok {
		draft.Cancel()
		s.println("Rental cancelled.")
		return nil
	}

	lease, err := s.rentals.Commit(ctx, draft)
	if err != nil {
		return s.fail(err)
	}
	s.printf("Property rented successfully! Rental ID: %d\n", lease.ID)
	return nil
}

func (s *Shell) chooseBroker(draft *rental.Draft) error {
	use, err := s.confirm("Do you want to use a broker for this rental? (y/n): ")
	if err != nil || !use {
		return err
	}
	if len(draft.Brokers) == 0 {
		s.println("No brokers available in the system.")
		return nil
	}

	s.println("\nAvailable Brokers:")
	for _, b := range draft.Brokers {
		s.printf("%d. %s\n", b.ID, b.FullName())
	}

	for {
		text, err := s.ask("Enter Broker ID (or 0 to skip): ")
		if err != nil {
			return err
		}
		id, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			s.println("Invalid input. Please enter a number.")
			continue
		}
		if id == 0 {
			draft.ClearBroker()
			return nil
		}
		if !offered(draft, uint(id)) {
			s.problem(rental.ErrUnknownBroker)
			continue
		}

		return s.until(func() error {
			text, err := s.ask("Broker Fee ($): ")
			if err != nil {
				return err
			}
			fee, convErr := strconv.ParseFloat(text, 64)
			if convErr != nil {
				return errBadFee
			}
			return draft.SetBroker(uint(id), fee)
		})
	}
}

func offered(draft *rental.Draft, brokerID uint) bool {
	for _, b := range draft.Brokers {
		if b.ID == brokerID {
			return true
		}
	}
	return false
}
