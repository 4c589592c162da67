package models

import "time"

// OfferStatus is the acceptance state of an offer
type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"
	OfferAccepted OfferStatus = "accepted"
	OfferRefused  OfferStatus = "refused"
)

type Offer struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	Price          float64     `gorm:"not null;check:chk_offers_price,price > 0" json:"price"`
	Status         OfferStatus `gorm:"not null;index" json:"status"`
	PartnerID      uint        `gorm:"not null" json:"partner_id"`
	Partner        *Partner    `gorm:"constraint:OnDelete:RESTRICT" json:"partner,omitempty"`
	PropertyID     uint        `gorm:"not null;index" json:"property_id"`
	Validity       int         `gorm:"not null" json:"validity"`
	DateDeadline   time.Time   `json:"date_deadline"`
	PropertyTypeID *uint       `json:"property_type_id"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Pending reports whether the offer has been neither accepted nor refused
func (o *Offer) Pending() bool {
	return o.Status == OfferPending || o.Status == ""
}
