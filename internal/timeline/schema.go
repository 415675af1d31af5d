// Package timeline extracts structured timeline markers from generated
// story text, both from complete strings and incrementally from live token
// streams.
package timeline

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/spectralvoice/hauntify/internal/model"
)

const itemSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"year": {"type": "integer", "minimum": -10000, "maximum": 3000},
		"title": {"type": "string", "minLength": 1, "maxLength": 200},
		"desc": {"type": "string", "minLength": 1, "maxLength": 500},
		"place": {"type": "string", "maxLength": 200},
		"lat": {"type": "number", "minimum": -90, "maximum": 90},
		"lon": {"type": "number", "minimum": -180, "maximum": 180},
		"weight": {"type": "number", "minimum": 0, "maximum": 1}
	},
	"required": ["year", "title", "desc"]
}`

var itemSchema = jsonschema.MustCompileString("timeline-item.json", itemSchemaJSON)

// ParseItem parses and schema-validates one marker payload. The schema
// rejects type violations outright, e.g. a year carried as a string.
func ParseItem(payload string) (model.TimelineItem, error) {
	var raw any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return model.TimelineItem{}, fmt.Errorf("invalid JSON payload: %w", err)
	}
	if err := itemSchema.Validate(raw); err != nil {
		return model.TimelineItem{}, fmt.Errorf("payload failed schema validation: %w", err)
	}

	var item model.TimelineItem
	if err := json.Unmarshal([]byte(payload), &item); err != nil {
		return model.TimelineItem{}, fmt.Errorf("failed to decode payload: %w", err)
	}
	return item, nil
}
