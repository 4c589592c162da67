package database

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"estate/server/internal/models"
)

// PropertyFilter narrows a property listing. Zero values match everything.
type PropertyFilter struct {
	State  models.PropertyState
	Active *bool
	TagID  uint
}

// LoadProperty fetches a property with its offers, tags and references
func LoadProperty(tx *gorm.DB, id uint) (*models.Property, error) {
	var p models.Property
	err := tx.
		Preload("Offers", func(db *gorm.DB) *gorm.DB { return db.Order("price DESC, id ASC") }).
		Preload("Offers.Partner").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("PropertyType").
		Preload("Salesman").
		Preload("Buyer").
		First(&p, id).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return &p, nil
}

// ListProperties returns properties newest first
func ListProperties(tx *gorm.DB, f PropertyFilter) ([]models.Property, error) {
	q := tx.Model(&models.Property{}).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("PropertyType").
		Order("properties.id DESC")

	if f.State != "" {
		q = q.Where("properties.state = ?", f.State)
	}
	if f.Active != nil {
		q = q.Where("properties.active = ?", *f.Active)
	}
	if f.TagID != 0 {
		q = q.Joins("JOIN property_tags ON property_tags.property_id = properties.id").
			Where("property_tags.tag_id = ?", f.TagID)
	}

	var properties []models.Property
	if err := q.Find(&properties).Error; err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, nil
}

// InsertProperty stores a new property and links its tags
func InsertProperty(tx *gorm.DB, p *models.Property) error {
	tags := p.Tags
	p.Tags = nil
	if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
		return TranslateError(err)
	}
	if len(tags) > 0 {
		return ReplaceTags(tx, p, tags)
	}
	return nil
}

// SaveProperty writes every column of p and its owned offers
func SaveProperty(tx *gorm.DB, p *models.Property) error {
	if err := tx.Omit(clause.Associations).Save(p).Error; err != nil {
		return TranslateError(err)
	}
	for i := range p.Offers {
		if err := SaveOffer(tx, &p.Offers[i]); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceTags sets the tag links of p to exactly tags
func ReplaceTags(tx *gorm.DB, p *models.Property, tags []models.Tag) error {
	if err := tx.Model(p).Association("Tags").Replace(tags); err != nil {
		return TranslateError(err)
	}
	p.Tags = tags
	return nil
}

// DeleteProperty removes p together with its offers and tag links
func DeleteProperty(tx *gorm.DB, id uint) error {
	p := models.Property{ID: id}
	if err := tx.Model(&p).Association("Tags").Clear(); err != nil {
		return TranslateError(err)
	}
	if err := tx.Where("property_id = ?", id).Delete(&models.Offer{}).Error; err != nil {
		return TranslateError(err)
	}
	res := tx.Delete(&p)
	if res.Error != nil {
		return TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return TranslateError(gorm.ErrRecordNotFound)
	}
	return nil
}

// InsertOffer stores a new offer
func InsertOffer(tx *gorm.DB, o *models.Offer) error {
	if err := tx.Omit(clause.Associations).Create(o).Error; err != nil {
		return TranslateError(err)
	}
	return nil
}

// SaveOffer writes every column of o
func SaveOffer(tx *gorm.DB, o *models.Offer) error {
	if err := tx.Omit(clause.Associations).Save(o).Error; err != nil {
		return TranslateError(err)
	}
	return nil
}

// DeleteOffer removes a single offer row
func DeleteOffer(tx *gorm.DB, id uint) error {
	if err := tx.Delete(&models.Offer{}, id).Error; err != nil {
		return TranslateError(err)
	}
	return nil
}

// FindOffer fetches an offer without its property
func FindOffer(tx *gorm.DB, id uint) (*models.Offer, error) {
	var o models.Offer
	if err := tx.First(&o, id).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &o, nil
}

// ListOffers returns the offers of a property, highest price first
func ListOffers(tx *gorm.DB, propertyID uint) ([]models.Offer, error) {
	var offers []models.Offer
	err := tx.Preload("Partner").
		Where("property_id = ?", propertyID).
		Order("price DESC, id ASC").
		Find(&offers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	return offers, nil
}

// Exists reports whether a row of model with the given primary key exists
func Exists(tx *gorm.DB, model interface{}, id uint) (bool, error) {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindTags loads the tags with the given ids and fails if any is missing
func FindTags(tx *gorm.DB, ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}
	var tags []models.Tag
	if err := tx.Where("id IN ?", ids).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	if len(tags) != len(uniqueIDs(ids)) {
		return nil, TranslateError(gorm.ErrRecordNotFound)
	}
	return tags, nil
}

func uniqueIDs(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Create inserts a lookup record (tag, partner, user, property type)
func Create(tx *gorm.DB, record interface{}) error {
	if err := tx.Create(record).Error; err != nil {
		return TranslateError(err)
	}
	return nil
}

// Delete removes a lookup record by id
func Delete(tx *gorm.DB, model interface{}, id uint) error {
	res := tx.Delete(model, id)
	if res.Error != nil {
		return TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return TranslateError(gorm.ErrRecordNotFound)
	}
	return nil
}

// List returns every row of a lookup table ordered by order
func List(tx *gorm.DB, out interface{}, order string) error {
	if err := tx.Order(order).Find(out).Error; err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}
	return nil
}

// DeleteTag removes a tag and detaches it from every property
func DeleteTag(tx *gorm.DB, id uint) error {
	if err := tx.Exec("DELETE FROM property_tags WHERE tag_id = ?", id).Error; err != nil {
		return TranslateError(err)
	}
	return Delete(tx, &models.Tag{}, id)
}
