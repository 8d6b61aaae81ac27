package voicevox

import (
	"fmt"
	"sort"
	"strings"
)

// Speakers maps friendly names to VOICEVOX style IDs.
var Speakers = map[string]int{
	"zundamon": 3,
	"metan":    2,
	"tsumugi":  8,
	"ritsu":    9,
	"sora":     16,
	"mochiko":  20,
	"sayo":     47,
}

// DefaultSpeaker is used when a request names no speaker.
const DefaultSpeaker = "zundamon"

// ResolveSpeaker accepts a friendly name or a numeric style ID rendered as a
// string and returns the style ID.
func ResolveSpeaker(name string) (int, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Speakers[DefaultSpeaker], nil
	}
	if id, ok := Speakers[name]; ok {
		return id, nil
	}
	var id int
	if _, err := fmt.Sscanf(name, "%d", &id); err == nil && id >= 0 {
		return id, nil
	}
	return 0, fmt.Errorf("unknown speaker %q", name)
}

// SpeakerNames returns the known friendly names in sorted order.
func SpeakerNames() []string {
	names := make([]string, 0, len(Speakers))
	for name := range Speakers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
