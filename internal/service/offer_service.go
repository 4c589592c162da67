package service

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"estate/server/internal/database"
	"estate/server/internal/estate"
	"estate/server/internal/models"
)

// CreateOffer places an offer on a listing and moves it to offer_received
func (s *EstateService) CreateOffer(ctx context.Context, propertyID uint, in estate.OfferInput) (*models.Offer, error) {
	var offer models.Offer
	p, err := s.withProperty(ctx, propertyID, func(tx *gorm.DB, p *models.Property) error {
		partnerID := in.PartnerID
		if partnerID != 0 {
			if err := requireRef(tx, &models.Partner{}, &partnerID, "Partner"); err != nil {
				return err
			}
		}

		o, err := estate.NewOffer(p, in, s.clock.Now(), s.defaults)
		if err != nil {
			return err
		}
		if err := database.InsertOffer(tx, o); err != nil {
			return err
		}
		offer = *o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"property_id": p.ID,
		"offer_id":    offer.ID,
		"price":       offer.Price,
	}).Info("Offer received")
	return &offer, nil
}

// ListOffers returns the offers of a listing, highest price first
func (s *EstateService) ListOffers(ctx context.Context, propertyID uint) ([]models.Offer, error) {
	db := s.db.WithContext(ctx)
	ok, err := database.Exists(db, &models.Property{}, propertyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, estate.ErrNotFound
	}
	return database.ListOffers(db, propertyID)
}

// withOffer resolves the owning property of an offer and runs fn on both
func (s *EstateService) withOffer(ctx context.Context, offerID uint, fn func(p *models.Property) (*models.Offer, error)) (*models.Property, *models.Offer, error) {
	var offer models.Offer
	var property *models.Property
	err := s.tx(ctx, func(tx *gorm.DB) error {
		o, err := database.FindOffer(tx, offerID)
		if err != nil {
			return err
		}
		p, err := database.LoadProperty(tx, o.PropertyID)
		if err != nil {
			return err
		}
		changed, err := fn(p)
		if err != nil {
			return err
		}
		if err := database.SaveProperty(tx, p); err != nil {
			return err
		}
		offer = *changed
		property = p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return property, &offer, nil
}

// UpdateOffer changes the price, validity or deadline of an offer
func (s *EstateService) UpdateOffer(ctx context.Context, offerID uint, u estate.OfferUpdate) (*models.Offer, error) {
	_, o, err := s.withOffer(ctx, offerID, func(p *models.Property) (*models.Offer, error) {
		return estate.ApplyOfferUpdate(p, offerID, u)
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"offer_id":      o.ID,
		"validity":      o.Validity,
		"date_deadline": o.DateDeadline.Format("2006-01-02"),
	}).Info("Offer updated")
	return o, nil
}

// AcceptOffer accepts an offer and refuses its siblings
func (s *EstateService) AcceptOffer(ctx context.Context, offerID uint) (*models.Offer, error) {
	p, o, err := s.withOffer(ctx, offerID, func(p *models.Property) (*models.Offer, error) {
		return estate.AcceptOffer(p, offerID)
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"property_id":   p.ID,
		"offer_id":      o.ID,
		"selling_price": p.SellingPrice,
	}).Info("Offer accepted")
	return o, nil
}

// RefuseOffer refuses an offer, reopening the sale if it was accepted
func (s *EstateService) RefuseOffer(ctx context.Context, offerID uint) (*models.Offer, error) {
	p, o, err := s.withOffer(ctx, offerID, func(p *models.Property) (*models.Offer, error) {
		return estate.RefuseOffer(p, offerID)
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"property_id": p.ID,
		"offer_id":    o.ID,
		"state":       p.State,
	}).Info("Offer refused")
	return o, nil
}

// DeleteOffer removes an offer and refreshes the best price of its listing
func (s *EstateService) DeleteOffer(ctx context.Context, offerID uint) error {
	err := s.tx(ctx, func(tx *gorm.DB) error {
		o, err := database.FindOffer(tx, offerID)
		if err != nil {
			return err
		}
		p, err := database.LoadProperty(tx, o.PropertyID)
		if err != nil {
			return err
		}
		if err := estate.RemoveOffer(p, offerID); err != nil {
			return err
		}
		if err := database.DeleteOffer(tx, offerID); err != nil {
			return err
		}
		return database.SaveProperty(tx, p)
	})
	if err != nil {
		return err
	}
	s.logger.WithField("offer_id", offerID).Info("Offer deleted")
	return nil
}
