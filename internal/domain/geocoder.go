package domain

import "context"

// Geocoder resolves a free-text location phrase to coordinates.
type Geocoder interface {
	// Locate returns the coordinates for a phrase, or nil when the phrase
	// cannot be resolved. A non-nil error covers transport failures; callers
	// treat both outcomes as "no coordinates" and continue.
	Locate(ctx context.Context, phrase string) (*Coordinates, error)
}
