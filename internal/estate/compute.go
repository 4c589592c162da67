package estate

import (
	"time"

	"estate/server/internal/models"
)

// Field names a tracked attribute whose mutation triggers recomputation
type Field string

const (
	FieldLivingArea      Field = "living_area"
	FieldGardenArea      Field = "garden_area"
	FieldOffers          Field = "offer_ids"
	FieldOfferPrice      Field = "offer_ids.price"
	FieldOfferStatus     Field = "offer_ids.status"
	FieldOfferCreateDate Field = "create_date"
	FieldOfferValidity   Field = "validity"
	FieldOfferDeadline   Field = "date_deadline"
)

type propertyRule struct {
	target    string
	dependsOn []Field
	apply     func(p *models.Property)
}

type offerRule struct {
	target    string
	dependsOn []Field
	apply     func(o *models.Offer)
}

// Rules run in declaration order and never trigger one another.
var propertyRules = []propertyRule{
	{
		target:    "total_area",
		dependsOn: []Field{FieldLivingArea, FieldGardenArea},
		apply:     func(p *models.Property) { p.TotalArea = TotalArea(p) },
	},
	{
		target:    "best_price",
		dependsOn: []Field{FieldOffers, FieldOfferPrice, FieldOfferStatus},
		apply:     func(p *models.Property) { p.BestPrice = BestPrice(p.Offers) },
	},
}

var offerRules = []offerRule{
	{
		target:    "date_deadline",
		dependsOn: []Field{FieldOfferCreateDate, FieldOfferValidity},
		apply: func(o *models.Offer) {
			o.DateDeadline = Deadline(o.CreatedAt, o.Validity)
		},
	},
	{
		// inverse of date_deadline
		target:    "validity",
		dependsOn: []Field{FieldOfferDeadline},
		apply: func(o *models.Offer) {
			if !o.DateDeadline.IsZero() {
				o.Validity = DaysBetween(o.CreatedAt, o.DateDeadline)
			}
		},
	},
}

var (
	propertyDeps = indexPropertyRules(propertyRules)
	offerDeps    = indexOfferRules(offerRules)
)

func indexPropertyRules(rules []propertyRule) map[Field][]int {
	deps := make(map[Field][]int)
	for i, r := range rules {
		for _, f := range r.dependsOn {
			deps[f] = append(deps[f], i)
		}
	}
	return deps
}

func indexOfferRules(rules []offerRule) map[Field][]int {
	deps := make(map[Field][]int)
	for i, r := range rules {
		for _, f := range r.dependsOn {
			deps[f] = append(deps[f], i)
		}
	}
	return deps
}

// selectRules returns the indexes of the rules depending on any of changed,
// in declaration order and without duplicates
func selectRules(deps map[Field][]int, n int, changed []Field) []int {
	hit := make([]bool, n)
	for _, f := range changed {
		for _, i := range deps[f] {
			hit[i] = true
		}
	}
	var out []int
	for i, ok := range hit {
		if ok {
			out = append(out, i)
		}
	}
	return out
}

// Touch recomputes every derived property field that depends on changed
func Touch(p *models.Property, changed ...Field) {
	for _, i := range selectRules(propertyDeps, len(propertyRules), changed) {
		propertyRules[i].apply(p)
	}
}

// TouchOffer recomputes every derived offer field that depends on changed
func TouchOffer(o *models.Offer, changed ...Field) {
	for _, i := range selectRules(offerDeps, len(offerRules), changed) {
		offerRules[i].apply(o)
	}
}

// Recompute refreshes all derived property fields
func Recompute(p *models.Property) {
	for _, r := range propertyRules {
		r.apply(p)
	}
}

// DependentsOf lists the derived fields recomputed when f changes
func DependentsOf(f Field) []string {
	var out []string
	for _, i := range propertyDeps[f] {
		out = append(out, propertyRules[i].target)
	}
	for _, i := range offerDeps[f] {
		out = append(out, offerRules[i].target)
	}
	return out
}

// TotalArea is the living area plus the garden area
func TotalArea(p *models.Property) int {
	return p.LivingArea + p.GardenArea
}

// BestPrice is the highest price among accepted offers, or 0
func BestPrice(offers []models.Offer) float64 {
	best := 0.0
	found := false
	for _, o := range offers {
		if o.Status != models.OfferAccepted {
			continue
		}
		if !found || o.Price > best {
			best = o.Price
			found = true
		}
	}
	return best
}

// Deadline is the creation day plus validity days
func Deadline(created time.Time, validity int) time.Time {
	return DateOf(created).AddDate(0, 0, validity)
}
