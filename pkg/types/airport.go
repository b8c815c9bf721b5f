package types

import "strings"

// AirportType is the category of an airport entry
type AirportType string

const (
	TypeLargeAirport  AirportType = "large_airport"
	TypeMediumAirport AirportType = "medium_airport"
	TypeSmallAirport  AirportType = "small_airport"
	TypeHeliport      AirportType = "heliport"
	TypeSeaplaneBase  AirportType = "seaplane_base"
	TypeBalloonport   AirportType = "balloonport"
	TypeClosed        AirportType = "closed"
)

// AirportTypes lists every known airport category
var AirportTypes = []AirportType{
	TypeLargeAirport,
	TypeMediumAirport,
	TypeSmallAirport,
	TypeHeliport,
	TypeSeaplaneBase,
	TypeBalloonport,
	TypeClosed,
}

// Valid reports whether t is one of the known airport categories
func (t AirportType) Valid() bool {
	for _, known := range AirportTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Airport is a single airport record as owned by the record store.
// Optional attributes are pointers; a nil or empty value means the
// attribute is absent and contributes nothing to scoring.
type Airport struct {
	// Identification
	ID    int64
	Ident string
	Type  AirportType
	Name  string

	// Codes
	ICAOCode *string
	IATACode *string
	GPSCode  *string

	// Location
	Municipality *string
	CountryName  *string
	ISOCountry   *string
	Continent    *string
	Latitude     *float64
	Longitude    *float64
	ElevationFt  *int

	// Metadata
	Keywords         *string
	ScheduledService bool
	Relevance        int // Store popularity ranking, higher first
}

// ICAO returns the 4-character code if present
func (a *Airport) ICAO() (string, bool) { return text(a.ICAOCode) }

// IATA returns the 3-character code if present
func (a *Airport) IATA() (string, bool) { return text(a.IATACode) }

// City returns the municipality if present
func (a *Airport) City() (string, bool) { return text(a.Municipality) }

// Country returns the country name if present
func (a *Airport) Country() (string, bool) { return text(a.CountryName) }

// KeywordText returns the free-text keywords if present
func (a *Airport) KeywordText() (string, bool) { return text(a.Keywords) }

// DisplayName returns the airport name if present
func (a *Airport) DisplayName() (string, bool) {
	if a.Name == "" {
		return "", false
	}
	return a.Name, true
}

// HasCode reports whether the airport carries an ICAO or IATA code
func (a *Airport) HasCode() bool {
	_, icao := a.ICAO()
	_, iata := a.IATA()
	return icao || iata
}

// Validate checks the invariants a stored airport must satisfy
func (a *Airport) Validate() error {
	if a.ID <= 0 {
		return ErrInvalidAirportID
	}
	if a.Ident == "" {
		return ErrMissingIdent
	}
	if a.Type != "" && !a.Type.Valid() {
		return ErrInvalidAirportType
	}
	return nil
}

// String returns a pointer to s, or nil when s is blank.
// Used when building airports from loosely typed sources.
func String(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func text(p *string) (string, bool) {
	if p == nil || *p == "" {
		return "", false
	}
	return *p, true
}
