package stem

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// StemMapToFeatureCollection renders a stem map as a GeoJSON
// FeatureCollection, one Point feature per stem, carrying its index, z,
// radius and diameter (twice the radius) as feature properties. Unlike the
// teacher's hand-rolled Geometry/Feature types (needed there for
// polygon/linestring floor layers), stems are always simple points, so
// this uses orb/geojson's own Feature/FeatureCollection directly.
func StemMapToFeatureCollection(m *StemMap) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, s := range m.Stems {
		f := geojson.NewFeature(orb.Point{s.X, s.Y})
		f.Properties["id"] = i
		f.Properties["z"] = s.Z
		f.Properties["radius"] = s.Radius
		f.Properties["diameter"] = s.Radius * 2
		fc.Append(f)
	}
	return fc
}

// WriteStemMapGeoJSON marshals a stem map's feature collection as
// indented JSON bytes.
func WriteStemMapGeoJSON(m *StemMap) ([]byte, error) {
	fc := StemMapToFeatureCollection(m)
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("stem: marshal geojson: %w", err)
	}
	return data, nil
}

// FeatureCollectionToStemMap reconstructs a stem map from a previously
// exported FeatureCollection of Point features carrying "z" and
// "radius" properties, rejecting any feature that lacks them or whose
// geometry isn't a point.
func FeatureCollectionToStemMap(fc *geojson.FeatureCollection) (*StemMap, error) {
	m := NewStemMap()
	for i, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			return nil, fmt.Errorf("stem: feature %d: geometry is not a point", i)
		}
		z, ok := f.Properties["z"].(float64)
		if !ok {
			return nil, fmt.Errorf("stem: feature %d: missing numeric z property", i)
		}
		radius, ok := f.Properties["radius"].(float64)
		if !ok {
			return nil, fmt.Errorf("stem: feature %d: missing numeric radius property", i)
		}
		m.AddStem(Stem{X: pt[0], Y: pt[1], Z: z, Radius: radius})
	}
	return m, nil
}
