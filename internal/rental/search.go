package rental

import (
	"context"
	"math"
	"strings"

	"rentctl/internal/errs"
	"rentctl/internal/models"
)

// Filter narrows a property search. Nil and empty fields are not applied.
type Filter struct {
	City          string
	State         string
	MinPrice      *float64
	MaxPrice      *float64
	MinSquareFoot *float64
	MinRooms      *int
}

// Normalize clamps the filter into range instead of rejecting it: negative
// minimums rise to their floor, a negative maximum or one below the minimum
// price is dropped. NaN and infinite bounds are dropped.
func (f Filter) Normalize() Filter {
	out := Filter{
		City:  strings.TrimSpace(f.City),
		State: strings.TrimSpace(f.State),
	}
	f.MinPrice = finite(f.MinPrice)
	f.MaxPrice = finite(f.MaxPrice)
	f.MinSquareFoot = finite(f.MinSquareFoot)
	if f.MinPrice != nil {
		out.MinPrice = ptr(max(*f.MinPrice, 0))
	}
	if f.MaxPrice != nil && *f.MaxPrice >= 0 && (out.MinPrice == nil || *f.MaxPrice >= *out.MinPrice) {
		out.MaxPrice = ptr(*f.MaxPrice)
	}
	if f.MinSquareFoot != nil {
		out.MinSquareFoot = ptr(max(*f.MinSquareFoot, 0))
	}
	if f.MinRooms != nil {
		out.MinRooms = ptr(max(*f.MinRooms, 1))
	}
	return out
}

// SearchProperties lists properties for rent matching f, cheapest first.
func (s *Service) SearchProperties(ctx context.Context, f Filter) ([]models.Property, error) {
	f = f.Normalize()

	q := s.db.WithContext(ctx).
		Preload("Landlord.User").
		Preload("Neighborhoods").
		Where("for_rent = ?", true)

	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}
	if f.State != "" {
		q = q.Where("state = ?", f.State)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.MinSquareFoot != nil {
		q = q.Where("square_foot >= ?", *f.MinSquareFoot)
	}
	if f.MinRooms != nil {
		q = q.Where("room_amount >= ?", *f.MinRooms)
	}

	var properties []models.Property
	if err := q.Order("price ASC").Order("id ASC").Find(&properties).Error; err != nil {
		return nil, errs.Store("search properties", err)
	}
	return properties, nil
}

func finite(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}

func ptr[T any](v T) *T {
	return &v
}
