package stem

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ParseStemMapFile reads the ASCII stem-map file format: one stem per
// line, whitespace-separated "x y z diameter". A record is kept only
// when its diameter is greater than minDiam; others are silently
// dropped. Blank lines are skipped. The fourth column is consumed
// directly as the stem's radius, matching the upstream loader's
// convention.
func ParseStemMapFile(path string, minDiam float64) (*StemMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("stem: open stem map %s: %w", path, err)
	}
	defer f.Close()

	m := NewStemMap()
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, fmt.Errorf("stem: %s:%d: expected 4 fields, got %d", path, lineNo, len(fields))
		}

		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("stem: %s:%d: parse x: %w", path, lineNo, err)
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("stem: %s:%d: parse y: %w", path, lineNo, err)
		}
		z, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("stem: %s:%d: parse z: %w", path, lineNo, err)
		}
		diameter, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("stem: %s:%d: parse diameter: %w", path, lineNo, err)
		}

		if diameter > minDiam {
			m.AddStem(Stem{X: x, Y: y, Z: z, Radius: diameter})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("stem: scan %s: %w", path, err)
	}
	return m, nil
}

// WriteStemMapFile writes a map back out in the same ASCII format, for
// round-tripping aligned source maps.
func WriteStemMapFile(path string, m *StemMap) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("stem: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, s := range m.Stems {
		if _, err := fmt.Fprintf(w, "%g %g %g %g\n", s.X, s.Y, s.Z, s.Radius); err != nil {
			return fmt.Errorf("stem: write %s: %w", path, err)
		}
	}
	return w.Flush()
}
