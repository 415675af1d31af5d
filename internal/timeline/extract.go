package timeline

import "strings"

// Marker is the sentinel prefix the generator model places before each
// timeline payload.
const Marker = "##TIMELINE##"

// scanPayload locates the closing brace of the JSON object opening at
// index open. The scan is string-aware: braces inside quoted values and
// escape sequences do not affect depth. Returns -1 while the object is
// still unclosed.
func scanPayload(s string, open int) int {
	depth := 0
	inString := false
	escaped := false
	for i := open; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// ExtractMarkers splits a complete story into its raw marker blobs
// (sentinel plus JSON payload, verbatim and unparsed) and the marker-free
// narrative. The quality gate must never see marker text.
func ExtractMarkers(text string) (blobs []string, narrative string) {
	var kept strings.Builder
	rest := text
	for {
		markerIdx := strings.Index(rest, Marker)
		if markerIdx == -1 {
			kept.WriteString(rest)
			break
		}

		open := strings.Index(rest[markerIdx+len(Marker):], "{")
		if open == -1 {
			// Dangling sentinel with no payload; leave it in place.
			kept.WriteString(rest[:markerIdx+len(Marker)])
			rest = rest[markerIdx+len(Marker):]
			continue
		}
		open += markerIdx + len(Marker)

		end := scanPayload(rest, open)
		if end == -1 {
			kept.WriteString(rest)
			break
		}

		blobs = append(blobs, rest[markerIdx:end+1])
		kept.WriteString(rest[:markerIdx])
		rest = rest[end+1:]
	}
	return blobs, strings.TrimSpace(kept.String())
}

// PayloadOf strips the sentinel from a raw blob, returning just the JSON
// object text.
func PayloadOf(blob string) string {
	open := strings.Index(blob, "{")
	if open == -1 {
		return ""
	}
	return blob[open:]
}

// StripMarkers removes every well-formed marker blob from text. Used by
// collaborators that must not surface marker text, e.g. voice synthesis.
func StripMarkers(text string) string {
	_, narrative := ExtractMarkers(text)
	return narrative
}
