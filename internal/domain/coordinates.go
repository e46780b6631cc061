package domain

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// IsZero reports whether the coordinates were never set.
func (c Coordinates) IsZero() bool { return c.Lon == 0 && c.Lat == 0 }

// Location is a place a walker travels to or from. ID refers to the persisted
// location row and is empty for ad-hoc coordinates.
type Location struct {
	ID     string
	Coords Coordinates
}

// Known reports whether the location carries usable coordinates.
func (l Location) Known() bool { return !l.Coords.IsZero() }

// LocationPair is the travel cache key. Pairs are symmetric: the two ids are
// stored in lexicographic order so (a, b) and (b, a) share one entry.
type LocationPair struct {
	A string
	B string
}

func NewLocationPair(origin, destination string) LocationPair {
	if destination < origin {
		return LocationPair{A: destination, B: origin}
	}
	return LocationPair{A: origin, B: destination}
}

func (p LocationPair) String() string { return p.A + "|" + p.B }
