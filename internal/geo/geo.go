// Package geo converts coordinate pairs into coarse, privacy-preserving
// distance buckets. Raw distances stay inside the process: only buckets
// ever cross the API boundary.
package geo

import "math"

const earthRadiusM = 6371000

// Point is a WGS84 coordinate.
type Point struct {
	Lat  float64
	Long float64
}

type Bucket string

const (
	BucketLT50M  Bucket = "LT_50M"
	BucketLT100M Bucket = "LT_100M"
	BucketLT500M Bucket = "LT_500M"
	BucketLT1KM  Bucket = "LT_1KM"
	BucketLT2KM  Bucket = "LT_2KM"
	BucketLT5KM  Bucket = "LT_5KM"
	BucketLT10KM Bucket = "LT_10KM"
	// BucketNearby is the neutral placeholder when either side has no
	// coordinate.
	BucketNearby Bucket = "NEARBY"
)

// ladder of ascending thresholds; first strict match wins, so a boundary
// value falls in the next (wider) bucket.
var ladder = []struct {
	max    float64
	bucket Bucket
}{
	{50, BucketLT50M},
	{100, BucketLT100M},
	{500, BucketLT500M},
	{1000, BucketLT1KM},
	{2000, BucketLT2KM},
	{5000, BucketLT5KM},
}

// Distance returns the great-circle distance between two points in meters.
func Distance(a, b Point) float64 {
	la1 := a.Lat * math.Pi / 180
	la2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLong := (b.Long - a.Long) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(la1)*math.Cos(la2)*math.Sin(dLong/2)*math.Sin(dLong/2)
	return 2 * earthRadiusM * math.Asin(math.Sqrt(h))
}

// BucketFor maps a distance in meters onto the shared bucket ladder.
func BucketFor(meters float64) Bucket {
	for _, step := range ladder {
		if meters < step.max {
			return step.bucket
		}
	}
	return BucketLT10KM
}

// Resolve computes the bucket for a viewer/item pair. When either side
// carries no coordinate the bucket degrades to NEARBY and the distance is
// withheld entirely.
func Resolve(viewer, item *Point) Bucket {
	if viewer == nil || item == nil {
		return BucketNearby
	}
	return BucketFor(Distance(*viewer, *item))
}

// IntelLabel collapses the ladder to the coarser display set used by the
// intel family. Bucket boundaries are shared across families; only the
// labels differ.
func (b Bucket) IntelLabel() Bucket {
	switch b {
	case BucketLT50M:
		return BucketLT50M
	case BucketLT100M, BucketLT500M:
		return BucketLT500M
	case BucketLT1KM, BucketLT2KM:
		return BucketLT2KM
	case BucketLT5KM, BucketLT10KM:
		return BucketLT10KM
	default:
		return BucketNearby
	}
}
