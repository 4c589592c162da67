package geometry

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"estate/server/internal/models"
)

// Bound is a longitude/latitude rectangle
type Bound = orb.Bound

// ParseBBox reads "minLon,minLat,maxLon,maxLat"
func ParseBBox(raw string) (Bound, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return Bound{}, fmt.Errorf("bbox must have 4 comma separated values")
	}

	var v [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return Bound{}, fmt.Errorf("invalid bbox value %q", part)
		}
		v[i] = f
	}
	if v[0] > v[2] || v[1] > v[3] {
		return Bound{}, fmt.Errorf("bbox minimum exceeds maximum")
	}
	return Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}

// Point returns the location of a property as lon/lat
func Point(p *models.Property) (orb.Point, bool) {
	if !p.HasCoordinates() {
		return orb.Point{}, false
	}
	return orb.Point{*p.Longitude, *p.Latitude}, true
}

// FeatureCollection exports every located property inside bound (all when
// bound is nil) as a point feature, plus one hull per postcode district
// holding at least three of them.
func FeatureCollection(properties []models.Property, bound *Bound) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	districts := make(map[string][]orb.Point)

	for i := range properties {
		p := &properties[i]
		pt, ok := Point(p)
		if !ok || (bound != nil && !bound.Contains(pt)) {
			continue
		}

		feature := geojson.NewFeature(pt)
		feature.ID = p.ID
		feature.Properties = geojson.Properties{
			"name":           p.Name,
			"state":          p.State,
			"expected_price": p.ExpectedPrice,
			"best_price":     p.BestPrice,
			"total_area":     p.TotalArea,
		}
		fc.Append(feature)

		if code := District(p.Postcode); code != "" {
			districts[code] = append(districts[code], pt)
		}
	}

	codes := make([]string, 0, len(districts))
	for code := range districts {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		hull := ConvexHull(districts[code])
		if hull == nil {
			continue
		}
		feature := geojson.NewFeature(orb.Polygon{hull})
		feature.Properties = geojson.Properties{
			"district":      code,
			"point_count":   len(districts[code]),
			"geometry_type": "hull",
			"area":          planar.Area(hull),
		}
		fc.Append(feature)
	}

	return fc
}

// District is the leading four characters of a postcode, or "" when shorter
func District(postcode string) string {
	postcode = strings.ToUpper(strings.ReplaceAll(postcode, " ", ""))
	if len(postcode) < 4 {
		return ""
	}
	return postcode[:4]
}

func cross(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

// ConvexHull returns the closed counter-clockwise hull of points, or nil
// when fewer than three distinct non-collinear points are given
func ConvexHull(points []orb.Point) orb.Ring {
	pts := make([]orb.Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i][0] != pts[j][0] {
			return pts[i][0] < pts[j][0]
		}
		return pts[i][1] < pts[j][1]
	})

	// drop duplicates
	uniq := pts[:0]
	for i, p := range pts {
		if i == 0 || !p.Equal(pts[i-1]) {
			uniq = append(uniq, p)
		}
	}
	pts = uniq
	if len(pts) < 3 {
		return nil
	}

	// monotone chain
	var lower, upper []orb.Point
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	if len(hull) < 3 {
		return nil
	}
	return append(orb.Ring(hull), hull[0])
}
