package timeline

import "testing"

func TestParseItem(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{
			name:    "minimal valid",
			payload: `{"year": 1888, "title": "The Fog", "desc": "It moved against the wind."}`,
		},
		{
			name:    "full valid",
			payload: `{"year": 1888, "title": "The Fog", "desc": "d", "place": "London", "lat": 51.5, "lon": -0.12, "weight": 0.8}`,
		},
		{
			name:    "year as string",
			payload: `{"year": "1888", "title": "The Fog", "desc": "d"}`,
			wantErr: true,
		},
		{
			name:    "missing desc",
			payload: `{"year": 1888, "title": "The Fog"}`,
			wantErr: true,
		},
		{
			name:    "empty title",
			payload: `{"year": 1888, "title": "", "desc": "d"}`,
			wantErr: true,
		},
		{
			name:    "latitude out of range",
			payload: `{"year": 1888, "title": "T", "desc": "d", "lat": 123.4, "lon": 0}`,
			wantErr: true,
		},
		{
			name:    "weight above one",
			payload: `{"year": 1888, "title": "T", "desc": "d", "weight": 1.5}`,
			wantErr: true,
		},
		{
			name:    "year far future",
			payload: `{"year": 9999, "title": "T", "desc": "d"}`,
			wantErr: true,
		},
		{
			name:    "negative year",
			payload: `{"year": -500, "title": "The Old Rites", "desc": "d"}`,
		},
		{
			name:    "not JSON",
			payload: `{"year": 1888,`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			item, err := ParseItem(tt.payload)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got item %+v", item)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseItemOptionalFields(t *testing.T) {
	t.Parallel()

	item, err := ParseItem(`{"year": 1888, "title": "T", "desc": "d", "lat": 51.5, "lon": -0.12}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Latitude == nil || *item.Latitude != 51.5 {
		t.Errorf("latitude not decoded: %v", item.Latitude)
	}
	if item.Weight != nil {
		t.Errorf("absent weight decoded as %v", *item.Weight)
	}
}
