package weather

import (
	"context"

	json "github.com/goccy/go-json"
)

// Record is the normalized current-weather view of one city. Provider fields
// that were absent stay nil.
type Record struct {
	City        string          `json:"city"`
	TempC       *float64        `json:"temp_c"`
	Description *string         `json:"description"`
	FeelsLike   *float64        `json:"feels_like"`
	Humidity    *float64        `json:"humidity"`
	Raw         json.RawMessage `json:"raw"`
}

// Lookup resolves a city name to its current weather.
type Lookup interface {
	Lookup(ctx context.Context, city string) (Record, error)
}
