package service

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"estate/server/internal/database"
	"estate/server/internal/estate"
	"estate/server/internal/models"
)

// EstateService runs every listing workflow operation inside a single
// transaction: either all field changes of an operation commit or none do.
type EstateService struct {
	db       *gorm.DB
	logger   *logrus.Logger
	clock    estate.Clock
	actor    estate.Actor
	defaults estate.Defaults
}

// PropertyCreate is the input of CreateProperty
type PropertyCreate struct {
	estate.PropertyInput
	TagIDs []uint
}

// PropertyChange is the input of UpdateProperty. Nil fields are left untouched.
type PropertyChange struct {
	estate.PropertyUpdate
	PropertyTypeID    *uint
	ClearPropertyType bool
	SalesmanID        *uint
	TagIDs            *[]uint
}

// NewEstateService creates a service over db. A nil clock reads the system
// clock and a nil actor resolves no user.
func NewEstateService(db *gorm.DB, clock estate.Clock, actor estate.Actor, defaults estate.Defaults, logger *logrus.Logger) *EstateService {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if clock == nil {
		clock = estate.SystemClock{}
	}
	if actor == nil {
		actor = estate.StaticActor{}
	}
	return &EstateService{
		db:       db,
		logger:   logger,
		clock:    clock,
		actor:    actor,
		defaults: defaults,
	}
}

func (s *EstateService) tx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

// requireRef fails with a ValidationError when id does not reference a row of model
func requireRef(tx *gorm.DB, model interface{}, id *uint, what string) error {
	if id == nil {
		return nil
	}
	ok, err := database.Exists(tx, model, *id)
	if err != nil {
		return err
	}
	if !ok {
		return &estate.ValidationError{Rule: "reference", Message: what + " does not exist."}
	}
	return nil
}

// CreateProperty stores a new listing. The salesman defaults to the current actor.
func (s *EstateService) CreateProperty(ctx context.Context, in PropertyCreate) (*models.Property, error) {
	if in.SalesmanID == nil {
		in.SalesmanID = s.actor.CurrentUserID(ctx)
	}

	p, err := estate.NewProperty(in.PropertyInput, s.clock.Now(), s.defaults)
	if err != nil {
		return nil, err
	}

	var created *models.Property
	err = s.tx(ctx, func(tx *gorm.DB) error {
		if err := requireRef(tx, &models.PropertyType{}, p.PropertyTypeID, "Property type"); err != nil {
			return err
		}
		if err := requireRef(tx, &models.User{}, p.SalesmanID, "Salesman"); err != nil {
			return err
		}
		tags, err := database.FindTags(tx, in.TagIDs)
		if err != nil {
			return err
		}
		p.Tags = tags
		if err := database.InsertProperty(tx, p); err != nil {
			return err
		}
		created, err = database.LoadProperty(tx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"property_id": created.ID,
		"name":        created.Name,
	}).Info("Property created")
	return created, nil
}

// GetProperty returns a listing with its offers and tags
func (s *EstateService) GetProperty(ctx context.Context, id uint) (*models.Property, error) {
	return database.LoadProperty(s.db.WithContext(ctx), id)
}

// ListProperties returns the listings matching f, newest first
func (s *EstateService) ListProperties(ctx context.Context, f database.PropertyFilter) ([]models.Property, error) {
	return database.ListProperties(s.db.WithContext(ctx), f)
}

// withProperty loads a property inside a transaction, applies fn and saves
// the result. Nothing is written when fn fails.
func (s *EstateService) withProperty(ctx context.Context, id uint, fn func(tx *gorm.DB, p *models.Property) error) (*models.Property, error) {
	var out *models.Property
	err := s.tx(ctx, func(tx *gorm.DB) error {
		p, err := database.LoadProperty(tx, id)
		if err != nil {
			return err
		}
		if err := fn(tx, p); err != nil {
			return err
		}
		if err := database.SaveProperty(tx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateProperty applies a partial update to a listing
func (s *EstateService) UpdateProperty(ctx context.Context, id uint, change PropertyChange) (*models.Property, error) {
	p, err := s.withProperty(ctx, id, func(tx *gorm.DB, p *models.Property) error {
		if err := estate.ApplyPropertyUpdate(p, change.PropertyUpdate); err != nil {
			return err
		}

		switch {
		case change.ClearPropertyType:
			estate.SetPropertyType(p, nil)
		case change.PropertyTypeID != nil:
			if err := requireRef(tx, &models.PropertyType{}, change.PropertyTypeID, "Property type"); err != nil {
				return err
			}
			estate.SetPropertyType(p, change.PropertyTypeID)
		}

		if change.SalesmanID != nil {
			if err := requireRef(tx, &models.User{}, change.SalesmanID, "Salesman"); err != nil {
				return err
			}
			p.SalesmanID = change.SalesmanID
			p.Salesman = nil
		}

		if change.TagIDs != nil {
			tags, err := database.FindTags(tx, *change.TagIDs)
			if err != nil {
				return err
			}
			if err := database.ReplaceTags(tx, p, tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("property_id", id).Info("Property updated")
	return p, nil
}

// DeleteProperty removes a listing together with its offers
func (s *EstateService) DeleteProperty(ctx context.Context, id uint) error {
	err := s.tx(ctx, func(tx *gorm.DB) error {
		return database.DeleteProperty(tx, id)
	})
	if err != nil {
		return err
	}
	s.logger.WithField("property_id", id).Info("Property deleted")
	return nil
}

// MarkSold moves a listing to sold
func (s *EstateService) MarkSold(ctx context.Context, id uint) (*models.Property, error) {
	return s.transition(ctx, id, "Property sold", estate.MarkSold)
}

// Cancel moves a listing to canceled
func (s *EstateService) Cancel(ctx context.Context, id uint) (*models.Property, error) {
	return s.transition(ctx, id, "Property canceled", estate.Cancel)
}

func (s *EstateService) transition(ctx context.Context, id uint, msg string, fn func(*models.Property) error) (*models.Property, error) {
	p, err := s.withProperty(ctx, id, func(_ *gorm.DB, p *models.Property) error {
		return fn(p)
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"property_id": p.ID,
		"state":       p.State,
	}).Info(msg)
	return p, nil
}
