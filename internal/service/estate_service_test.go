package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estate/server/internal/database"
	"estate/server/internal/estate"
	"estate/server/internal/models"
)

var testNow = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	svc *EstateService
	ctx context.Context
}

func setup(t *testing.T) *fixture {
	t.Helper()
	d, err := database.NewTestDB(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := NewEstateService(d.GetDB(), estate.FixedClock(testNow), nil, estate.DefaultSettings(), logger)
	return &fixture{svc: svc, ctx: context.Background()}
}

func (f *fixture) property(t *testing.T, name string, expected float64) *models.Property {
	t.Helper()
	p, err := f.svc.CreateProperty(f.ctx, PropertyCreate{
		PropertyInput: estate.PropertyInput{Name: name, ExpectedPrice: expected},
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) partner(t *testing.T, name string) *models.Partner {
	t.Helper()
	partner, err := f.svc.CreatePartner(f.ctx, name, "")
	require.NoError(t, err)
	return partner
}

func (f *fixture) offer(t *testing.T, propertyID uint, price float64, partnerID uint) *models.Offer {
	t.Helper()
	o, err := f.svc.CreateOffer(f.ctx, propertyID, estate.OfferInput{Price: price, PartnerID: partnerID})
	require.NoError(t, err)
	return o
}

func intPtr(v int) *int { return &v }

func TestCreateProperty_Defaults(t *testing.T) {
	f := setup(t)
	p := f.property(t, "Cottage", 300000)

	assert.NotZero(t, p.ID)
	assert.Equal(t, models.StateNew, p.State)
	assert.Equal(t, "2024-03-31", p.DateAvailability.Format("2006-01-02"))
	assert.Equal(t, 2, p.Bedrooms)
	assert.True(t, p.Active)
}

func TestCreateProperty_SalesmanFromActor(t *testing.T) {
	f := setup(t)
	user, err := f.svc.CreateUser(f.ctx, "agent", "Agent Smith")
	require.NoError(t, err)
	f.svc.actor = estate.StaticActor{UserID: &user.ID}

	p := f.property(t, "Flat", 1000)
	require.NotNil(t, p.SalesmanID)
	assert.Equal(t, user.ID, *p.SalesmanID)
	require.NotNil(t, p.Salesman)
	assert.Equal(t, "agent", p.Salesman.Login)
}

func TestCreateProperty_UniqueName(t *testing.T) {
	f := setup(t)
	f.property(t, "Cottage", 300000)

	_, err := f.svc.CreateProperty(f.ctx, PropertyCreate{
		PropertyInput: estate.PropertyInput{Name: "Cottage", ExpectedPrice: 1},
	})
	assert.True(t, estate.IsValidation(err))
}

func TestCreateProperty_WithTagsAndType(t *testing.T) {
	f := setup(t)
	cozy, err := f.svc.CreateTag(f.ctx, "cozy", 3)
	require.NoError(t, err)
	renovated, err := f.svc.CreateTag(f.ctx, "renovated", 1)
	require.NoError(t, err)
	house, err := f.svc.CreatePropertyType(f.ctx, "House")
	require.NoError(t, err)

	p, err := f.svc.CreateProperty(f.ctx, PropertyCreate{
		PropertyInput: estate.PropertyInput{Name: "Tagged", ExpectedPrice: 10, PropertyTypeID: &house.ID},
		TagIDs:        []uint{renovated.ID, cozy.ID},
	})
	require.NoError(t, err)
	require.Len(t, p.Tags, 2)
	assert.Equal(t, "cozy", p.Tags[0].Name)
	require.NotNil(t, p.PropertyType)
	assert.Equal(t, "House", p.PropertyType.Name)

	missing := uint(999)
	_, err = f.svc.CreateProperty(f.ctx, PropertyCreate{
		PropertyInput: estate.PropertyInput{Name: "Broken", ExpectedPrice: 10, PropertyTypeID: &missing},
	})
	assert.True(t, estate.IsValidation(err))
}

func TestUpdateProperty_TotalArea(t *testing.T) {
	f := setup(t)
	p := f.property(t, "Cottage", 300000)

	garden := true
	updated, err := f.svc.UpdateProperty(f.ctx, p.ID, PropertyChange{
		PropertyUpdate: estate.PropertyUpdate{LivingArea: intPtr(80), Garden: &garden},
	})
	require.NoError(t, err)
	assert.Equal(t, 90, updated.TotalArea)
	assert.Equal(t, models.OrientationNorth, updated.GardenOrientation)

	reloaded, err := f.svc.GetProperty(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, reloaded.TotalArea)
	assert.Equal(t, 10, reloaded.GardenArea)
}

func TestUpdateProperty_InvalidRollsBack(t *testing.T) {
	f := setup(t)
	p := f.property(t, "Cottage", 300000)

	negative := -1.0
	_, err := f.svc.UpdateProperty(f.ctx, p.ID, PropertyChange{
		PropertyUpdate: estate.PropertyUpdate{LivingArea: intPtr(50), ExpectedPrice: &negative},
	})
	assert.True(t, estate.IsValidation(err))

	reloaded, err := f.svc.GetProperty(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 300000.0, reloaded.ExpectedPrice)
	assert.Zero(t, reloaded.LivingArea)
}

func TestUpdateProperty_PropertyTypeMirroredOnOffers(t *testing.T) {
	f := setup(t)
	p := f.property(t, "Cottage", 100)
	partner := f.partner(t, "Bob")
	o := f.offer(t, p.ID, 95, partner.ID)
	villa, err := f.svc.CreatePropertyType(f.ctx, "Villa")
	require.NoError(t, err)

	_, err = f.svc.UpdateProperty(f.ctx, p.ID, PropertyChange{PropertyTypeID: &villa.ID})
	require.NoError(t, err)

	offers, err := f.svc.ListOffers(f.ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, o.ID, offers[0].ID)
	require.NotNil(t, offers[0].PropertyTypeID)
	assert.Equal(t, villa.ID, *offers[0].PropertyTypeID)

	_, err = f.svc.UpdateProperty(f.ctx, p.ID, PropertyChange{ClearPropertyType: true})
	require.NoError(t, err)
	offers, err = f.svc.ListOffers(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, offers[0].PropertyTypeID)
}

func TestUpdateProperty_ReplacesTags(t *testing.T) {
	f := setup(t)
	a, err := f.svc.CreateTag(f.ctx, "a", 0)
	require.NoError(t, err)
	b, err := f.svc.CreateTag(f.ctx, "b", 0)
	require.NoError(t, err)
	p, err := f.svc.CreateProperty(f.ctx, PropertyCreate{
		PropertyInput: estate.PropertyInput{Name: "T", ExpectedPrice: 1},
		TagIDs:        []uint{a.ID},
	})
	require.NoError(t, err)

	ids := []uint{b.ID}
	_, err = f.svc.UpdateProperty(f.ctx, p.ID, PropertyChange{TagIDs: &ids})
	require.NoError(t, err)

	reloaded, err := f.svc.GetProperty(f.ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Tags, 1)
	assert.Equal(t, "b", reloaded.Tags[0].Name)
}

func TestCreateOffer_SetsOfferReceived(t *testing.T) {
	f := setup(t)
	p := f.property(t, "Cottage", 300000)
	partner := f.partner(t, "Alice")

	o := f.offer(t, p.ID, 280000, partner.ID)
	assert.Equal(t, models.OfferPending, o.Status)
	assert.Equal(t, "2024-01-08", o.DateDeadline.Format("2006-01-02"))

	reloaded, err := f.svc.GetProperty(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateOfferReceived, reloaded.State)
}

func TestCreateOffer_NonPositivePriceLeavesPropertyUnchanged(t *testing.T) {
	f := setup(t)
	p := f.property(t, "Cottage", 300000)
	partner := f.partner(t, "Alice")

	_, err := f.svc.CreateOffer(f.ctx, p.ID, estate.OfferInput{Price: 0, PartnerID: partner.ID})
	assert.True(t, estate.IsValidation(err))

	reloaded, err := f.svc.GetProperty(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateNew, reloaded.State)
	assert.Empty(t, reloaded.Offers)
}

func TestCreateOffer_UnknownPartner(t *testing.T) {
	f := setup(t)
	p := f.property(t, "Cottage", 300000)

	_, err := f.svc.CreateOffer(f.ctx, p.ID, estate.OfferInput{Price: 10, PartnerID: 77})
	assert.True(t, estate.IsValidation(err))
}

func TestCreateOffer_UnknownProperty(t *testing.T) {
	f := setup(t)
	partner := f.partner(t, "Alice")

	_, err := f.svc.CreateOffer(f.ctx, 404, estate.OfferInput{Price: 10, PartnerID: partner.ID})
	assert.ErrorIs(t, err, estate.ErrNotFound)
}

func TestAcceptOffer_RefusesSiblings(t *testing.T) {
	f := setup(t)
	p := f.property(t, "Cottage", 300000)
	alice := f.partner(t, "Alice")
	bob := f.partner(t, "Bob")
	o1 := f.offer(t, p.ID, 290000, alice.ID)
	o2 := f.offer(t, p.ID, 280000, bob.ID)

	accepted, err := f.svc.AcceptOffer(f.ctx, o1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferAccepted, accepted.Status)

	reloaded, err := f.svc.GetProperty(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateOfferAccepted, reloaded.State)
	require.NotNil(t, reloaded.BuyerID)
	assert.Equal(t, alice.ID, *reloaded.BuyerID)
	require.NotNil(t, reloaded.Buyer)
	assert.Equal(t, "Alice", reloaded.Buyer.Name)
	assert.Equal(t, 290000.0, reloaded.SellingPrice)
	assert.Equal(t, 290000.0, reloaded.BestPrice)
	assert.Equal(t, models.OfferRefused, reloaded.Offer(o2.ID).Status)
}

func TestAcceptOffer_BelowFloor(t *testing.T) {
	f := setup(t)
	p := f.property(t, "Cottage", 300000)
	partner := f.partner(t, "Alice")
	low := f.offer(t, p.ID, 250000, partner.ID)
	fair := f.offer(t, p.ID, 280000, partner.ID)

	_, err := f.svc.AcceptOffer(f.ctx, low.ID)
	assert.True(t, estate.IsValidation(err))

	reloaded, err := f.svc.GetProperty(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateOfferReceived, reloaded.State)
	assert.True(t, reloaded.Offer(fair.ID).Pending())

	_, err = f.svc.AcceptOffer(f.ctx, fair.ID)
	require.NoError(t, err)
	reloaded, err = f.svc.GetProperty(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 280000.0, reloaded.SellingPrice)
}

func TestAcceptOffer_SoldProperty(t *testing.T) {
	f := setup(t)
	p := f.property(t, "Cottage", 100)
	partner := f.partner(t, "Alice")
	o := f.offer(t, p.ID, 95, partner.ID)
	_, err := f.svc.MarkSold(f.ctx, p.ID)
	require.NoError(t, err)

	_, err = f.svc.AcceptOffer(f.ctx, o.ID)
	assert.True(t, estate.IsTransition(err))
}

func TestRefuseOffer_ResetsAcceptedSale(t *testing.T) {
	f := setup(t)
	p := f.property(t, "Cottage", 100)
	partner := f.partner(t, "Alice")
	o := f.offer(t, p.ID, 95, partner.ID)
	_, err := f.svc.AcceptOffer(f.ctx, o.ID)
	require.NoError(t, err)

	refused, err := f.svc.RefuseOffer(f.ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferRefused, refused.Status)

	reloaded, err := f.svc.GetProperty(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, reloaded.SellingPrice)
	assert.Nil(t, reloaded.BuyerID)
	assert.Equal(t, models.StateNew, reloaded.State)
	assert.Zero(t, reloaded.BestPrice)
}

func TestMarkSoldAndCancel(t *testing.T) {
	f := setup(t)
	canceled := f.property(t, "Canceled", 100)
	_, err := f.svc.Cancel(f.ctx, canceled.ID)
	require.NoError(t, err)

	_, err = f.svc.MarkSold(f.ctx, canceled.ID)
	assert.True(t, estate.IsTransition(err))
	reloaded, err := f.svc.GetProperty(f.ctx, canceled.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateCanceled, reloaded.State)

	sold := f.property(t, "Sold", 100)
	_, err = f.svc.MarkSold(f.ctx, sold.ID)
	require.NoError(t, err)

	_, err = f.svc.Cancel(f.ctx, sold.ID)
	assert.True(t, estate.IsTransition(err))
	reloaded, err = f.svc.GetProperty(f.ctx, sold.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateSold, reloaded.State)
}

func TestUpdateOffer_ValidityAndDeadline(t *testing.T) {
	f := setup(t)
	p := f.property(t, "Cottage", 100)
	partner := f.partner(t, "Alice")
	o := f.offer(t, p.ID, 95, partner.ID)

	updated, err := f.svc.UpdateOffer(f.ctx, o.ID, estate.OfferUpdate{Validity: intPtr(10)})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-11", updated.DateDeadline.Format("2006-01-02"))

	deadline := time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC)
	updated, err = f.svc.UpdateOffer(f.ctx, o.ID, estate.OfferUpdate{DateDeadline: &deadline})
	require.NoError(t, err)
	assert.Equal(t, 20, updated.Validity)

	offers, err := f.svc.ListOffers(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, offers[0].Validity)
	assert.Equal(t, "2024-01-21", offers[0].DateDeadline.Format("2006-01-02"))
}

func TestDeleteOffer_RecomputesBestPrice(t *testing.T) {
	f := setup(t)
	p := f.property(t, "Cottage", 100)
	partner := f.partner(t, "Alice")
	o := f.offer(t, p.ID, 95, partner.ID)
	_, err := f.svc.AcceptOffer(f.ctx, o.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteOffer(f.ctx, o.ID))

	reloaded, err := f.svc.GetProperty(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Offers)
	assert.Zero(t, reloaded.BestPrice)
	assert.Equal(t, models.StateNew, reloaded.State)
}

func TestDeleteProperty_CascadesOffers(t *testing.T) {
	f := setup(t)
	p := f.property(t, "Cottage", 100)
	partner := f.partner(t, "Alice")
	o := f.offer(t, p.ID, 95, partner.ID)

	require.NoError(t, f.svc.DeleteProperty(f.ctx, p.ID))

	_, err := f.svc.GetProperty(f.ctx, p.ID)
	assert.ErrorIs(t, err, estate.ErrNotFound)
	_, err = f.svc.AcceptOffer(f.ctx, o.ID)
	assert.ErrorIs(t, err, estate.ErrNotFound)
}

func TestListProperties_NewestFirst(t *testing.T) {
	f := setup(t)
	f.property(t, "Old", 100)
	f.property(t, "New", 100)

	list, err := f.svc.ListProperties(f.ctx, database.PropertyFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "New", list[0].Name)
}

func TestTags_UniqueAndOrdered(t *testing.T) {
	f := setup(t)
	_, err := f.svc.CreateTag(f.ctx, "zen", 1)
	require.NoError(t, err)
	_, err = f.svc.CreateTag(f.ctx, "alpha", 2)
	require.NoError(t, err)

	_, err = f.svc.CreateTag(f.ctx, "zen", 5)
	assert.True(t, estate.IsValidation(err))
	_, err = f.svc.CreateTag(f.ctx, " ", 5)
	assert.True(t, estate.IsValidation(err))

	tags, err := f.svc.ListTags(f.ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "alpha", tags[0].Name)
	assert.Equal(t, "zen", tags[1].Name)
}
