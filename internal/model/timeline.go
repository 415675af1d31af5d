package model

// TimelineItem is the structured payload embedded in generated stories
// behind the timeline marker. Identity is the (year, title) pair: two
// items sharing both are the same logical event.
type TimelineItem struct {
	Year        int      `json:"year"`
	Title       string   `json:"title"`
	Description string   `json:"desc"`
	Place       string   `json:"place,omitempty"`
	Latitude    *float64 `json:"lat,omitempty"`
	Longitude   *float64 `json:"lon,omitempty"`
	Weight      *float64 `json:"weight,omitempty"`
}

// Key returns the dedup identity of the item.
func (t TimelineItem) Key() TimelineKey {
	return TimelineKey{Year: t.Year, Title: t.Title}
}

// TimelineKey identifies a logical timeline event within one pipeline run.
type TimelineKey struct {
	Year  int
	Title string
}

// LocationHit is a resolved place name from the geocoding collaborator.
type LocationHit struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country,omitempty"`
}
