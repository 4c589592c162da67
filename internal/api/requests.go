package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"estate/server/internal/estate"
	"estate/server/internal/models"
	"estate/server/internal/service"
)

const dateLayout = "2006-01-02"

// Date accepts either a calendar day or an RFC 3339 timestamp
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

type PropertyRequest struct {
	Name              string              `json:"name" binding:"required"`
	Description       string              `json:"description"`
	Postcode          string              `json:"postcode"`
	ExpectedPrice     float64             `json:"expected_price"`
	DateAvailability  *Date               `json:"date_availability"`
	PropertyTypeID    *uint               `json:"property_type_id"`
	SalesmanID        *uint               `json:"salesman_id"`
	Bedrooms          *int                `json:"bedrooms" binding:"omitempty,min=0"`
	LivingArea        int                 `json:"living_area" binding:"min=0"`
	Facades           int                 `json:"facades" binding:"min=0"`
	Garage            bool                `json:"garage"`
	Garden            bool                `json:"garden"`
	GardenArea        *int                `json:"garden_area" binding:"omitempty,min=0"`
	GardenOrientation *models.Orientation `json:"garden_orientation" binding:"omitempty,orientation"`
	Active            *bool               `json:"active"`
	Latitude          *float64            `json:"latitude" binding:"omitempty,latitude"`
	Longitude         *float64            `json:"longitude" binding:"omitempty,longitude"`
	TagIDs            []uint              `json:"tag_ids"`
}

func (r PropertyRequest) toCreate() service.PropertyCreate {
	return service.PropertyCreate{
		PropertyInput: estate.PropertyInput{
			Name:              r.Name,
			Description:       r.Description,
			Postcode:          r.Postcode,
			ExpectedPrice:     r.ExpectedPrice,
			DateAvailability:  r.DateAvailability.ptr(),
			PropertyTypeID:    r.PropertyTypeID,
			SalesmanID:        r.SalesmanID,
			Bedrooms:          r.Bedrooms,
			LivingArea:        r.LivingArea,
			Facades:           r.Facades,
			Garage:            r.Garage,
			Garden:            r.Garden,
			GardenArea:        r.GardenArea,
			GardenOrientation: r.GardenOrientation,
			Active:            r.Active,
			Latitude:          r.Latitude,
			Longitude:         r.Longitude,
		},
		TagIDs: r.TagIDs,
	}
}

type PropertyPatchRequest struct {
	Name              *string             `json:"name"`
	Description       *string             `json:"description"`
	Postcode          *string             `json:"postcode"`
	ExpectedPrice     *float64            `json:"expected_price"`
	DateAvailability  *Date               `json:"date_availability"`
	PropertyTypeID    *uint               `json:"property_type_id"`
	ClearPropertyType bool                `json:"clear_property_type"`
	SalesmanID        *uint               `json:"salesman_id"`
	Bedrooms          *int                `json:"bedrooms" binding:"omitempty,min=0"`
	LivingArea        *int                `json:"living_area" binding:"omitempty,min=0"`
	Facades           *int                `json:"facades" binding:"omitempty,min=0"`
	Garage            *bool               `json:"garage"`
	Garden            *bool               `json:"garden"`
	GardenArea        *int                `json:"garden_area" binding:"omitempty,min=0"`
	GardenOrientation *models.Orientation `json:"garden_orientation" binding:"omitempty,orientation"`
	Active            *bool               `json:"active"`
	Latitude          *float64            `json:"latitude" binding:"omitempty,latitude"`
	Longitude         *float64            `json:"longitude" binding:"omitempty,longitude"`
	TagIDs            *[]uint             `json:"tag_ids"`
}

func (r PropertyPatchRequest) toChange() service.PropertyChange {
	return service.PropertyChange{
		PropertyUpdate: estate.PropertyUpdate{
			Name:              r.Name,
			Description:       r.Description,
			Postcode:          r.Postcode,
			ExpectedPrice:     r.ExpectedPrice,
			DateAvailability:  r.DateAvailability.ptr(),
			Bedrooms:          r.Bedrooms,
			LivingArea:        r.LivingArea,
			Facades:           r.Facades,
			Garage:            r.Garage,
			Garden:            r.Garden,
			GardenArea:        r.GardenArea,
			GardenOrientation: r.GardenOrientation,
			Active:            r.Active,
			Latitude:          r.Latitude,
			Longitude:         r.Longitude,
		},
		PropertyTypeID:    r.PropertyTypeID,
		ClearPropertyType: r.ClearPropertyType,
		SalesmanID:        r.SalesmanID,
		TagIDs:            r.TagIDs,
	}
}

type OfferRequest struct {
	Price        float64 `json:"price"`
	PartnerID    uint    `json:"partner_id" binding:"required"`
	Validity     *int    `json:"validity"`
	DateDeadline *Date   `json:"date_deadline"`
}

func (r OfferRequest) toInput() estate.OfferInput {
	return estate.OfferInput{
		Price:        r.Price,
		PartnerID:    r.PartnerID,
		Validity:     r.Validity,
		DateDeadline: r.DateDeadline.ptr(),
	}
}

type OfferPatchRequest struct {
	Price        *float64 `json:"price"`
	Validity     *int     `json:"validity"`
	DateDeadline *Date    `json:"date_deadline"`
}

func (r OfferPatchRequest) toUpdate() estate.OfferUpdate {
	return estate.OfferUpdate{
		Price:        r.Price,
		Validity:     r.Validity,
		DateDeadline: r.DateDeadline.ptr(),
	}
}

type TagRequest struct {
	Name  string `json:"name" binding:"required"`
	Color int    `json:"color"`
}

type PartnerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
}

type UserRequest struct {
	Login string `json:"login" binding:"required"`
	Name  string `json:"name"`
}

type PropertyTypeRequest struct {
	Name string `json:"name" binding:"required"`
}
