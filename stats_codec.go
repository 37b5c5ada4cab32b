package freecalls

import (
	"encoding/json"
	"fmt"

	"github.com/TarekkMA/freecalls/window"
)

// encodeStats serializes a caller's per-window stats vector to the
// string form storage.Backend persists, the same json.Marshal-over-a-
// state-struct convention the teacher's redis backend uses for its
// own State type.
func encodeStats(stats []window.Stats) (string, error) {
	data, err := json.Marshal(stats)
	if err != nil {
		return "", fmt.Errorf("freecalls: encode stats: %w", err)
	}
	return string(data), nil
}

// decodeStats parses the stored form back into a stats vector. An
// empty string (absent key) decodes to a nil slice, matching spec.md
// §3's "absent key is equivalent to a default empty sequence".
func decodeStats(raw string) ([]window.Stats, error) {
	if raw == "" {
		return nil, nil
	}
	var stats []window.Stats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return nil, fmt.Errorf("freecalls: decode stats: %w", err)
	}
	return stats, nil
}
