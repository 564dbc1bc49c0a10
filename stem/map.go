package stem

// StemMap is an ordered collection of stems plus the cumulative 4x4
// transform applied to it since construction. ApplyTransform mutates
// every stem's coordinates and composes the accumulator; Restore undoes
// the composition and resets the accumulator to identity.
//
// Mirrors the upstream tlr::StemMap contract: addStem, removeStem,
// applyTransMatrix, restoreOriginalCoords, strStemMap, operator==.
type StemMap struct {
	Stems     []Stem
	transform Transform4
}

// NewStemMap returns an empty map with an identity accumulator.
func NewStemMap() *StemMap {
	return &StemMap{transform: Identity4()}
}

// NewStemMapFrom builds a map from an existing stem slice (copied), with
// an identity accumulator.
func NewStemMapFrom(stems []Stem) *StemMap {
	cp := make([]Stem, len(stems))
	copy(cp, stems)
	return &StemMap{Stems: cp, transform: Identity4()}
}

// Clone returns a deep copy, including the accumulated transform.
func (m *StemMap) Clone() *StemMap {
	cp := make([]Stem, len(m.Stems))
	copy(cp, m.Stems)
	return &StemMap{Stems: cp, transform: m.transform}
}

// AddStem appends a stem to the map.
func (m *StemMap) AddStem(s Stem) {
	m.Stems = append(m.Stems, s)
}

// RemoveStem removes the stem at the given index, shifting later indices
// down by one. Callers removing multiple indices must do so in
// descending order, or prefer RemoveIndices which avoids the pitfall
// entirely.
func (m *StemMap) RemoveStem(index int) {
	m.Stems = append(m.Stems[:index], m.Stems[index+1:]...)
}

// RemoveIndices drops every stem whose index is in indices, in a single
// filtering pass that builds the surviving slice from scratch. This
// replaces the brittle "delete in descending order" pattern: the caller
// supplies the indices in any order and need not reason about shifting.
func (m *StemMap) RemoveIndices(indices map[int]bool) {
	if len(indices) == 0 {
		return
	}
	survivors := make([]Stem, 0, len(m.Stems)-len(indices))
	for i, s := range m.Stems {
		if indices[i] {
			continue
		}
		survivors = append(survivors, s)
	}
	m.Stems = survivors
}

// ApplyTransform mutates every stem's coordinates by t and composes t
// into the accumulated transform.
func (m *StemMap) ApplyTransform(t Transform4) {
	for i := range m.Stems {
		m.Stems[i] = t.Apply(m.Stems[i])
	}
	m.transform = t.Mul(m.transform)
}

// RestoreOriginalCoords applies the inverse of the accumulated transform
// and resets the accumulator to identity.
func (m *StemMap) RestoreOriginalCoords() error {
	inv, err := Invert4(m.transform)
	if err != nil {
		return err
	}
	m.ApplyTransform(inv)
	m.transform = Identity4()
	return nil
}

// Equal reports whether two maps have identical stem sequences and
// accumulated transforms.
func (m *StemMap) Equal(o *StemMap) bool {
	if len(m.Stems) != len(o.Stems) {
		return false
	}
	for i := range m.Stems {
		if !m.Stems[i].Equal(o.Stems[i]) {
			return false
		}
	}
	return m.transform == o.transform
}

// String renders the map as one "Coords: x y z, Radius: r" line per
// stem, matching the upstream strStemMap layout.
func (m *StemMap) String() string {
	out := ""
	for _, s := range m.Stems {
		out += s.String() + "\n"
	}
	return out
}

// MapSummary reports stem count, centroid, and radius range.
type MapSummary struct {
	Count     int
	Centroid  [3]float64
	MinRadius float64
	MaxRadius float64
}

// Summary computes a MapSummary over the map's current coordinates.
func (m *StemMap) Summary() MapSummary {
	var s MapSummary
	s.Count = len(m.Stems)
	if s.Count == 0 {
		return s
	}
	s.MinRadius = m.Stems[0].Radius
	s.MaxRadius = m.Stems[0].Radius
	for _, st := range m.Stems {
		s.Centroid[0] += st.X
		s.Centroid[1] += st.Y
		s.Centroid[2] += st.Z
		if st.Radius < s.MinRadius {
			s.MinRadius = st.Radius
		}
		if st.Radius > s.MaxRadius {
			s.MaxRadius = st.Radius
		}
	}
	n := float64(s.Count)
	s.Centroid[0] /= n
	s.Centroid[1] /= n
	s.Centroid[2] /= n
	return s
}
