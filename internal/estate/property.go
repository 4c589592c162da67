package estate

import (
	"strings"
	"time"

	"estate/server/internal/models"
)

// DefaultGardenArea is pre-filled when a garden is switched on
const DefaultGardenArea = 10

// PropertyInput carries the fields accepted when creating a listing.
// Nil pointers take the configured defaults.
type PropertyInput struct {
	Name              string
	Description       string
	Postcode          string
	ExpectedPrice     float64
	DateAvailability  *time.Time
	PropertyTypeID    *uint
	SalesmanID        *uint
	Bedrooms          *int
	LivingArea        int
	Facades           int
	Garage            bool
	Garden            bool
	GardenArea        *int
	GardenOrientation *models.Orientation
	Active            *bool
	Latitude          *float64
	Longitude         *float64
}

// PropertyUpdate carries a partial update. Nil pointers are left untouched.
type PropertyUpdate struct {
	Name              *string
	Description       *string
	Postcode          *string
	ExpectedPrice     *float64
	DateAvailability  *time.Time
	Bedrooms          *int
	LivingArea        *int
	Facades           *int
	Garage            *bool
	Garden            *bool
	GardenArea        *int
	GardenOrientation *models.Orientation
	Active            *bool
	Latitude          *float64
	Longitude         *float64
}

// NewProperty builds a listing in state new. now is the creation instant.
func NewProperty(in PropertyInput, now time.Time, d Defaults) (*models.Property, error) {
	p := &models.Property{
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		Postcode:       in.Postcode,
		ExpectedPrice:  in.ExpectedPrice,
		PropertyTypeID: in.PropertyTypeID,
		SalesmanID:     in.SalesmanID,
		Bedrooms:       d.Bedrooms,
		LivingArea:     in.LivingArea,
		Facades:        in.Facades,
		Garage:         in.Garage,
		Active:         true,
		State:          models.StateNew,
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
	}

	if in.DateAvailability != nil {
		p.DateAvailability = DateOf(*in.DateAvailability)
	} else {
		p.DateAvailability = DateOf(now).AddDate(0, 0, d.AvailabilityDays)
	}
	if in.Bedrooms != nil {
		p.Bedrooms = *in.Bedrooms
	}
	if in.Active != nil {
		p.Active = *in.Active
	}

	ToggleGarden(p, in.Garden)
	if in.GardenArea != nil {
		p.GardenArea = *in.GardenArea
	}
	if in.GardenOrientation != nil {
		p.GardenOrientation = *in.GardenOrientation
	}

	Recompute(p)
	if err := ValidateProperty(p); err != nil {
		return nil, err
	}
	return p, nil
}

// ValidateProperty checks the standing constraints of a listing
func ValidateProperty(p *models.Property) error {
	if p.Name == "" {
		return invalid("name_required", "Property name is required.")
	}
	if p.ExpectedPrice <= 0 {
		return invalid("expected_price_positive", "Expected price must be strictly positive.")
	}
	if p.SellingPrice < 0 {
		return invalid("selling_price_positive", "Selling price must be positive.")
	}
	if !p.GardenOrientation.Valid() {
		return invalid("garden_orientation", "Garden orientation must be north, south, east or west.")
	}
	return nil
}

// ApplyPropertyUpdate writes u onto p, recomputes derived fields and validates.
// Turning the garden on or off pre-fills area and orientation unless u sets them.
func ApplyPropertyUpdate(p *models.Property, u PropertyUpdate) error {
	var changed []Field

	if u.Name != nil {
		p.Name = strings.TrimSpace(*u.Name)
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Postcode != nil {
		p.Postcode = *u.Postcode
	}
	if u.ExpectedPrice != nil {
		p.ExpectedPrice = *u.ExpectedPrice
	}
	if u.DateAvailability != nil {
		p.DateAvailability = DateOf(*u.DateAvailability)
	}
	if u.Bedrooms != nil {
		p.Bedrooms = *u.Bedrooms
	}
	if u.LivingArea != nil {
		p.LivingArea = *u.LivingArea
		changed = append(changed, FieldLivingArea)
	}
	if u.Facades != nil {
		p.Facades = *u.Facades
	}
	if u.Garage != nil {
		p.Garage = *u.Garage
	}
	if u.Garden != nil && *u.Garden != p.Garden {
		ToggleGarden(p, *u.Garden)
		changed = append(changed, FieldGardenArea)
	}
	if u.GardenArea != nil {
		p.GardenArea = *u.GardenArea
		changed = append(changed, FieldGardenArea)
	}
	if u.GardenOrientation != nil {
		p.GardenOrientation = *u.GardenOrientation
	}
	if u.Active != nil {
		p.Active = *u.Active
	}
	if u.Latitude != nil {
		p.Latitude = u.Latitude
	}
	if u.Longitude != nil {
		p.Longitude = u.Longitude
	}

	Touch(p, changed...)
	return ValidateProperty(p)
}

// ToggleGarden pre-fills the garden fields for the new garden presence
func ToggleGarden(p *models.Property, hasGarden bool) {
	p.Garden = hasGarden
	if hasGarden {
		p.GardenArea = DefaultGardenArea
		p.GardenOrientation = models.OrientationNorth
	} else {
		p.GardenArea = 0
		p.GardenOrientation = models.OrientationNone
	}
	Touch(p, FieldGardenArea)
}

// SetPropertyType changes the type and refreshes the copy held by each offer
func SetPropertyType(p *models.Property, typeID *uint) {
	p.PropertyTypeID = typeID
	p.PropertyType = nil
	for i := range p.Offers {
		p.Offers[i].PropertyTypeID = typeID
	}
}

// MarkSold moves the property to sold. Canceled properties cannot be sold.
func MarkSold(p *models.Property) error {
	if p.State == models.StateCanceled {
		return &TransitionError{
			Operation: "sell",
			State:     p.State,
			Message:   "Canceled property cannot be sold.",
		}
	}
	p.State = models.StateSold
	return nil
}

// Cancel moves the property to canceled. Sold properties cannot be canceled.
func Cancel(p *models.Property) error {
	if p.State == models.StateSold {
		return &TransitionError{
			Operation: "cancel",
			State:     p.State,
			Message:   "Sold property cannot be canceled.",
		}
	}
	p.State = models.StateCanceled
	return nil
}
