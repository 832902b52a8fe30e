package generation

import "testing"

func TestMarkerStop(t *testing.T) {
	s := NewMarkerStop("")
	if s.Marker() != DefaultStopMarker {
		t.Fatalf("marker=%q", s.Marker())
	}
	if s.ShouldStop("The answer is") || s.Stopped() {
		t.Error("should keep generating without the marker")
	}
	if s.ShouldStop("[/INST] in the middle of text") {
		t.Error("marker must end the decoded text")
	}
	if !s.ShouldStop("The answer is 30 days. [/INST]  \n") {
		t.Error("trailing whitespace after the marker should still stop")
	}
	if !s.ShouldStop("anything else") || !s.Stopped() {
		t.Error("a stopped condition stays stopped")
	}
}

func TestMarkerStop_IndependentPerCall(t *testing.T) {
	a := NewMarkerStop("<END>")
	b := NewMarkerStop("<END>")
	a.ShouldStop("done <END>")
	if b.Stopped() {
		t.Error("conditions must not share state")
	}
}
