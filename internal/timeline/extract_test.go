package timeline

import (
	"strings"
	"testing"
)

func TestExtractMarkersBasic(t *testing.T) {
	t.Parallel()

	text := `In the year 1888, in London, the fog came alive. ##TIMELINE## {"year": 1888, "title": "The Fog", "desc": "It moved against the wind.", "place": "London"} The townsfolk never spoke of it again.`

	blobs, narrative := ExtractMarkers(text)
	if len(blobs) != 1 {
		t.Fatalf("expected 1 blob, got %d", len(blobs))
	}
	if !strings.HasPrefix(blobs[0], Marker) {
		t.Errorf("blob missing sentinel prefix: %q", blobs[0])
	}
	if strings.Contains(narrative, Marker) {
		t.Errorf("narrative still contains sentinel: %q", narrative)
	}
	if strings.Contains(narrative, `"year"`) {
		t.Errorf("narrative still contains payload text: %q", narrative)
	}
	if !strings.Contains(narrative, "the fog came alive") {
		t.Errorf("narrative lost story text: %q", narrative)
	}
}

func TestExtractMarkersMultiple(t *testing.T) {
	t.Parallel()

	text := `First. ##TIMELINE## {"year": 1693, "title": "A", "desc": "a"} Middle. ##TIMELINE## {"year": 1754, "title": "B", "desc": "b"} Last.`

	blobs, narrative := ExtractMarkers(text)
	if len(blobs) != 2 {
		t.Fatalf("expected 2 blobs, got %d", len(blobs))
	}
	if narrative != "First.  Middle.  Last." {
		t.Errorf("unexpected narrative: %q", narrative)
	}
}

func TestExtractMarkersBraceInString(t *testing.T) {
	t.Parallel()

	// A closing brace inside a quoted value must not terminate the payload.
	text := `Story. ##TIMELINE## {"year": 1900, "title": "The {Closed} Door", "desc": "It said \"}\" and vanished."} End.`

	blobs, narrative := ExtractMarkers(text)
	if len(blobs) != 1 {
		t.Fatalf("expected 1 blob, got %d", len(blobs))
	}
	if !strings.HasSuffix(blobs[0], `vanished."}`) {
		t.Errorf("payload terminated early: %q", blobs[0])
	}
	if narrative != "Story.  End." {
		t.Errorf("unexpected narrative: %q", narrative)
	}
}

func TestExtractMarkersNestedObject(t *testing.T) {
	t.Parallel()

	text := `##TIMELINE## {"year": 1900, "title": "T", "desc": "d", "extra": {"inner": 1}} tail`

	blobs, narrative := ExtractMarkers(text)
	if len(blobs) != 1 {
		t.Fatalf("expected 1 blob, got %d", len(blobs))
	}
	if !strings.HasSuffix(blobs[0], `{"inner": 1}}`) {
		t.Errorf("nested object split payload: %q", blobs[0])
	}
	if narrative != "tail" {
		t.Errorf("unexpected narrative: %q", narrative)
	}
}

func TestExtractMarkersUnclosedPayload(t *testing.T) {
	t.Parallel()

	text := `Story text ##TIMELINE## {"year": 1900, "title": "never closed`

	blobs, narrative := ExtractMarkers(text)
	if len(blobs) != 0 {
		t.Fatalf("expected no blobs for unclosed payload, got %d", len(blobs))
	}
	// Unclosed payloads stay in the narrative untouched.
	if !strings.Contains(narrative, Marker) {
		t.Errorf("unclosed payload was dropped from narrative: %q", narrative)
	}
}

func TestExtractMarkersDanglingSentinel(t *testing.T) {
	t.Parallel()

	text := "Story ends with a sentinel and nothing after. ##TIMELINE##"

	blobs, narrative := ExtractMarkers(text)
	if len(blobs) != 0 {
		t.Fatalf("expected no blobs, got %d", len(blobs))
	}
	if !strings.HasSuffix(narrative, Marker) {
		t.Errorf("dangling sentinel removed: %q", narrative)
	}
}

func TestExtractMarkersNoMarker(t *testing.T) {
	t.Parallel()

	blobs, narrative := ExtractMarkers("Just a plain story with {braces} in prose.")
	if len(blobs) != 0 {
		t.Fatalf("expected no blobs, got %d", len(blobs))
	}
	if narrative != "Just a plain story with {braces} in prose." {
		t.Errorf("narrative altered: %q", narrative)
	}
}

func TestStripMarkers(t *testing.T) {
	t.Parallel()

	text := `Read me. ##TIMELINE## {"year": 1800, "title": "T", "desc": "d"} And me.`
	got := StripMarkers(text)
	if got != "Read me.  And me." {
		t.Errorf("unexpected stripped text: %q", got)
	}
}

func TestPayloadOf(t *testing.T) {
	t.Parallel()

	blob := `##TIMELINE## {"year": 1800, "title": "T", "desc": "d"}`
	if got := PayloadOf(blob); got != `{"year": 1800, "title": "T", "desc": "d"}` {
		t.Errorf("unexpected payload: %q", got)
	}
	if got := PayloadOf("##TIMELINE##"); got != "" {
		t.Errorf("expected empty payload, got %q", got)
	}
}
