package stem

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
)

// CachedTransform stores a previously computed registration result
// alongside the key metadata needed to recognize when it is stale.
type CachedTransform struct {
	Transform   Transform4 `json:"transform"`
	MSE         float64    `json:"mse"`
	ConsensusN  int        `json:"consensusN"`
	LastUpdated int64      `json:"lastUpdated"`
}

// RegistrationCache persists CachedTransform entries keyed by a hash of
// the target+source file contents, so a cache entry is automatically
// invalidated when either scan is re-exported. Generalizes the
// teacher's CalibrationData (one transform per vacuum ID) to one
// transform per scan pair.
type RegistrationCache struct {
	Entries map[string]CachedTransform `json:"entries"`
}

// UnmarshalJSON provides backward compatibility with early cache files
// where the top-level document *was* the entries map, with no
// "entries" envelope. It probes for the envelope key and falls back to
// treating the whole document as the map.
func (c *RegistrationCache) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Entries map[string]CachedTransform `json:"entries"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Entries != nil {
		c.Entries = envelope.Entries
		return nil
	}

	var bare map[string]CachedTransform
	if err := json.Unmarshal(data, &bare); err != nil {
		return err
	}
	c.Entries = bare
	return nil
}

// LoadCache reads a RegistrationCache from path. A missing file yields
// an empty, ready-to-use cache rather than an error.
func LoadCache(path string) (*RegistrationCache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &RegistrationCache{Entries: make(map[string]CachedTransform)}, nil
		}
		return nil, fmt.Errorf("stem: read cache %s: %w", path, err)
	}
	var c RegistrationCache
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("stem: parse cache %s: %w", path, err)
	}
	if c.Entries == nil {
		c.Entries = make(map[string]CachedTransform)
	}
	return &c, nil
}

// Save writes the cache to path as JSON.
func (c *RegistrationCache) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("stem: marshal cache: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("stem: write cache %s: %w", path, err)
	}
	return nil
}

// PairKey derives a stable cache key from the two input files' raw
// contents, so edits to either scan naturally invalidate the entry.
func PairKey(targetPath, sourcePath string) (string, error) {
	h := sha256.New()
	for _, p := range []string{targetPath, sourcePath} {
		data, err := os.ReadFile(p)
		if err != nil {
			return "", fmt.Errorf("stem: hash %s: %w", p, err)
		}
		h.Write(data)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
