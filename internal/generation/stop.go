package generation

import "strings"

// DefaultStopMarker is the end-of-turn marker of instruction-tuned chat models.
const DefaultStopMarker = "[/INST]"

// StopCondition decides, from the text decoded so far, whether generation must end.
// A condition is built for one call and never shared between calls.
type StopCondition interface {
	ShouldStop(decoded string) bool
	Stopped() bool
}

// MarkerStop stops once the decoded text, ignoring surrounding whitespace,
// ends with its marker. Once stopped it stays stopped.
type MarkerStop struct {
	marker  string
	stopped bool
}

// NewMarkerStop returns a condition for marker (DefaultStopMarker when empty).
func NewMarkerStop(marker string) *MarkerStop {
	if marker == "" {
		marker = DefaultStopMarker
	}
	return &MarkerStop{marker: marker}
}

// ShouldStop inspects only decoded and reports whether to stop.
func (s *MarkerStop) ShouldStop(decoded string) bool {
	if !s.stopped && strings.HasSuffix(strings.TrimSpace(decoded), s.marker) {
		s.stopped = true
	}
	return s.stopped
}

// Stopped reports whether the marker has been seen.
func (s *MarkerStop) Stopped() bool {
	return s.stopped
}

// Marker returns the end-of-turn marker.
func (s *MarkerStop) Marker() string {
	return s.marker
}
