package models

import "time"

// PropertyState is the lifecycle state of a listing
type PropertyState string

const (
	StateNew           PropertyState = "new"
	StateOfferReceived PropertyState = "offer_received"
	StateOfferAccepted PropertyState = "offer_accepted"
	StateSold          PropertyState = "sold"
	StateCanceled      PropertyState = "canceled"
)

// Orientation of the garden. The empty value means unset.
type Orientation string

const (
	OrientationNone  Orientation = ""
	OrientationNorth Orientation = "north"
	OrientationSouth Orientation = "south"
	OrientationEast  Orientation = "east"
	OrientationWest  Orientation = "west"
)

// Valid reports whether o is one of the known orientations or unset.
func (o Orientation) Valid() bool {
	switch o {
	case OrientationNone, OrientationNorth, OrientationSouth, OrientationEast, OrientationWest:
		return true
	}
	return false
}

type Property struct {
	ID                uint          `gorm:"primaryKey" json:"id"`
	Name              string        `gorm:"uniqueIndex;not null" json:"name"`
	Description       string        `json:"description"`
	Postcode          string        `json:"postcode"`
	DateAvailability  time.Time     `json:"date_availability"`
	ExpectedPrice     float64       `gorm:"not null;check:chk_properties_expected_price,expected_price > 0" json:"expected_price"`
	SellingPrice      float64       `gorm:"not null;default:0;check:chk_properties_selling_price,selling_price >= 0" json:"selling_price"`
	PropertyTypeID    *uint         `json:"property_type_id"`
	PropertyType      *PropertyType `gorm:"constraint:OnDelete:SET NULL" json:"property_type,omitempty"`
	Tags              []Tag         `gorm:"many2many:property_tags;constraint:OnDelete:CASCADE" json:"tags"`
	SalesmanID        *uint         `json:"salesman_id"`
	Salesman          *User         `gorm:"constraint:OnDelete:SET NULL" json:"salesman,omitempty"`
	BuyerID           *uint         `json:"buyer_id"`
	Buyer             *Partner      `gorm:"constraint:OnDelete:SET NULL" json:"buyer,omitempty"`
	Offers            []Offer       `gorm:"constraint:OnDelete:CASCADE" json:"offers"`
	Bedrooms          int           `json:"bedrooms"`
	LivingArea        int           `json:"living_area"`
	Facades           int           `json:"facades"`
	Garage            bool          `json:"garage"`
	Garden            bool          `json:"garden"`
	GardenArea        int           `json:"garden_area"`
	GardenOrientation Orientation   `json:"garden_orientation"`
	Active            bool          `json:"active"`
	State             PropertyState `gorm:"not null;index" json:"state"`
	TotalArea         int           `json:"total_area"`
	BestPrice         float64       `json:"best_price"`
	Latitude          *float64      `json:"latitude"`
	Longitude         *float64      `json:"longitude"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// Offer returns the owned offer with the given id, or nil.
func (p *Property) Offer(id uint) *Offer {
	for i := range p.Offers {
		if p.Offers[i].ID == id {
			return &p.Offers[i]
		}
	}
	return nil
}

// HasCoordinates reports whether the property can be placed on a map
func (p *Property) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

type PropertyType struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}
