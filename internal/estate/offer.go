package estate

import (
	"sort"
	"time"

	"estate/server/internal/models"
)

// SellingPriceFloor is the share of the expected price an accepted offer must reach
const SellingPriceFloor = 0.9

// OfferInput carries the fields accepted when placing an offer.
// Validity and DateDeadline are mutually exclusive; with neither set the
// default validity applies.
type OfferInput struct {
	Price        float64
	PartnerID    uint
	Validity     *int
	DateDeadline *time.Time
}

// OfferUpdate carries a partial offer update
type OfferUpdate struct {
	Price        *float64
	Validity     *int
	DateDeadline *time.Time
}

// NewOffer validates in and attaches a pending offer to p. The property
// moves to offer_received whatever its current state. On error p is left
// untouched.
func NewOffer(p *models.Property, in OfferInput, now time.Time, d Defaults) (*models.Offer, error) {
	if in.Price <= 0 {
		return nil, invalid("offer_price_positive", "Offer price must be strictly positive.")
	}
	if in.PartnerID == 0 {
		return nil, invalid("partner_required", "Offer partner is required.")
	}
	if in.Validity != nil && in.DateDeadline != nil {
		return nil, invalid("validity_or_deadline", "Set either validity or date_deadline, not both.")
	}

	o := models.Offer{
		Price:          in.Price,
		Status:         models.OfferPending,
		PartnerID:      in.PartnerID,
		PropertyID:     p.ID,
		Validity:       d.OfferValidityDays,
		PropertyTypeID: p.PropertyTypeID,
		CreatedAt:      now,
	}
	if in.Validity != nil {
		o.Validity = *in.Validity
	}
	TouchOffer(&o, FieldOfferCreateDate, FieldOfferValidity)
	if in.DateDeadline != nil {
		o.DateDeadline = DateOf(*in.DateDeadline)
		TouchOffer(&o, FieldOfferDeadline)
	}

	p.Offers = append(p.Offers, o)
	p.State = models.StateOfferReceived
	Touch(p, FieldOffers)
	return &p.Offers[len(p.Offers)-1], nil
}

// SetValidity changes the validity and re-derives the deadline
func SetValidity(o *models.Offer, days int) {
	o.Validity = days
	TouchOffer(o, FieldOfferValidity)
}

// SetDeadline changes the deadline and back-derives the validity
func SetDeadline(o *models.Offer, deadline time.Time) {
	o.DateDeadline = DateOf(deadline)
	TouchOffer(o, FieldOfferDeadline)
}

// ApplyOfferUpdate writes u onto the offer of p identified by offerID
func ApplyOfferUpdate(p *models.Property, offerID uint, u OfferUpdate) (*models.Offer, error) {
	o := p.Offer(offerID)
	if o == nil {
		return nil, ErrNotFound
	}
	if u.Validity != nil && u.DateDeadline != nil {
		return nil, invalid("validity_or_deadline", "Set either validity or date_deadline, not both.")
	}
	if u.Price != nil && *u.Price <= 0 {
		return nil, invalid("offer_price_positive", "Offer price must be strictly positive.")
	}

	if u.Price != nil {
		o.Price = *u.Price
		Touch(p, FieldOfferPrice)
	}
	if u.Validity != nil {
		SetValidity(o, *u.Validity)
	}
	if u.DateDeadline != nil {
		SetDeadline(o, *u.DateDeadline)
	}
	return o, nil
}

// AcceptOffer accepts the offer of p identified by offerID. The property
// records the buyer and selling price and every other open offer is refused.
func AcceptOffer(p *models.Property, offerID uint) (*models.Offer, error) {
	o := p.Offer(offerID)
	if o == nil {
		return nil, ErrNotFound
	}
	if p.State == models.StateSold {
		return nil, &TransitionError{
			Operation: "accept an offer on",
			State:     p.State,
			Message:   "Cannot accept offer for a sold property.",
		}
	}
	if o.Price < SellingPriceFloor*p.ExpectedPrice {
		return nil, invalid("selling_price_floor", "Selling price must be at least 90% of expected price.")
	}

	o.Status = models.OfferAccepted
	p.State = models.StateOfferAccepted
	partnerID := o.PartnerID
	p.BuyerID = &partnerID
	p.Buyer = o.Partner
	p.SellingPrice = o.Price

	for i := range p.Offers {
		sibling := &p.Offers[i]
		if sibling.ID != o.ID && sibling.Status != models.OfferRefused {
			sibling.Status = models.OfferRefused
		}
	}

	Touch(p, FieldOfferStatus)
	return o, nil
}

// RefuseOffer refuses the offer of p identified by offerID. Refusing the
// accepted offer reopens the sale: the property goes back to new.
func RefuseOffer(p *models.Property, offerID uint) (*models.Offer, error) {
	o := p.Offer(offerID)
	if o == nil {
		return nil, ErrNotFound
	}

	if o.Status == models.OfferAccepted {
		if p.State == models.StateSold {
			return nil, &TransitionError{
				Operation: "refuse the accepted offer of",
				State:     p.State,
				Message:   "Cannot refuse the accepted offer of a sold property.",
			}
		}
		p.SellingPrice = 0
		p.BuyerID = nil
		p.Buyer = nil
		p.State = models.StateNew
	}
	o.Status = models.OfferRefused

	Touch(p, FieldOfferStatus)
	return o, nil
}

// RemoveOffer detaches the offer identified by offerID from p. Removing the
// accepted offer first refuses it so the sale is reopened.
func RemoveOffer(p *models.Property, offerID uint) error {
	if o := p.Offer(offerID); o != nil && o.Status == models.OfferAccepted {
		if _, err := RefuseOffer(p, offerID); err != nil {
			return err
		}
	}
	for i := range p.Offers {
		if p.Offers[i].ID == offerID {
			p.Offers = append(p.Offers[:i], p.Offers[i+1:]...)
			Touch(p, FieldOffers)
			return nil
		}
	}
	return ErrNotFound
}

// SortOffers orders offers by descending price, then by id
func SortOffers(offers []models.Offer) {
	sort.SliceStable(offers, func(i, j int) bool {
		if offers[i].Price != offers[j].Price {
			return offers[i].Price > offers[j].Price
		}
		return offers[i].ID < offers[j].ID
	})
}
