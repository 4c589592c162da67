package service

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"estate/server/internal/database"
	"estate/server/internal/estate"
	"estate/server/internal/models"
)

func requireName(name, what string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &estate.ValidationError{Rule: "name_required", Message: what + " name is required."}
	}
	return name, nil
}

// CreateTag stores a tag. Tag names are unique.
func (s *EstateService) CreateTag(ctx context.Context, name string, color int) (*models.Tag, error) {
	name, err := requireName(name, "Tag")
	if err != nil {
		return nil, err
	}
	tag := &models.Tag{Name: name, Color: color}
	if err := database.Create(s.db.WithContext(ctx), tag); err != nil {
		return nil, err
	}
	s.logger.WithField("tag", tag.Name).Info("Tag created")
	return tag, nil
}

// ListTags returns every tag by name
func (s *EstateService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := database.List(s.db.WithContext(ctx), &tags, "name ASC")
	return tags, err
}

// DeleteTag removes a tag from the catalogue and from every listing
func (s *EstateService) DeleteTag(ctx context.Context, id uint) error {
	return s.tx(ctx, func(tx *gorm.DB) error {
		return database.DeleteTag(tx, id)
	})
}

// CreatePartner stores a partner that can bid on listings
func (s *EstateService) CreatePartner(ctx context.Context, name, email string) (*models.Partner, error) {
	name, err := requireName(name, "Partner")
	if err != nil {
		return nil, err
	}
	partner := &models.Partner{Name: name, Email: strings.TrimSpace(email), CreatedAt: s.clock.Now()}
	if err := database.Create(s.db.WithContext(ctx), partner); err != nil {
		return nil, err
	}
	return partner, nil
}

// ListPartners returns every partner by name
func (s *EstateService) ListPartners(ctx context.Context) ([]models.Partner, error) {
	var partners []models.Partner
	err := database.List(s.db.WithContext(ctx), &partners, "name ASC, id ASC")
	return partners, err
}

// CreateUser stores a salesman account. Logins are unique.
func (s *EstateService) CreateUser(ctx context.Context, login, name string) (*models.User, error) {
	login, err := requireName(login, "User login")
	if err != nil {
		return nil, err
	}
	user := &models.User{Login: login, Name: strings.TrimSpace(name), CreatedAt: s.clock.Now()}
	if err := database.Create(s.db.WithContext(ctx), user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns every user by login
func (s *EstateService) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := database.List(s.db.WithContext(ctx), &users, "login ASC")
	return users, err
}

// CreatePropertyType stores a property type. Type names are unique.
func (s *EstateService) CreatePropertyType(ctx context.Context, name string) (*models.PropertyType, error) {
	name, err := requireName(name, "Property type")
	if err != nil {
		return nil, err
	}
	pt := &models.PropertyType{Name: name}
	if err := database.Create(s.db.WithContext(ctx), pt); err != nil {
		return nil, err
	}
	return pt, nil
}

// ListPropertyTypes returns every property type by name
func (s *EstateService) ListPropertyTypes(ctx context.Context) ([]models.PropertyType, error) {
	var types []models.PropertyType
	err := database.List(s.db.WithContext(ctx), &types, "name ASC")
	return types, err
}
