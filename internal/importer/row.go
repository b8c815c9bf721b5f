package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/airsearch-mcp/pkg/types"
)

// csvRow mirrors the OurAirports airports.csv columns. Every field is decoded
// as text so that a malformed number fails only its own row.
type csvRow struct {
	ID               string `csv:"id"`
	Ident            string `csv:"ident"`
	Type             string `csv:"type"`
	Name             string `csv:"name"`
	Latitude         string `csv:"latitude_deg"`
	Longitude        string `csv:"longitude_deg"`
	Elevation        string `csv:"elevation_ft"`
	Continent        string `csv:"continent"`
	CountryName      string `csv:"country_name"`
	ISOCountry       string `csv:"iso_country"`
	Municipality     string `csv:"municipality"`
	ScheduledService string `csv:"scheduled_service"`
	GPSCode          string `csv:"gps_code"`
	ICAOCode         string `csv:"icao_code"`
	IATACode         string `csv:"iata_code"`
	Keywords         string `csv:"keywords"`
	Score            string `csv:"score"`
}

// toAirport converts a decoded row, treating empty cells as absent
func (r *csvRow) toAirport() (*types.Airport, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.ID), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q: %w", r.ID, err)
	}

	a := &types.Airport{
		ID:           id,
		Ident:        strings.TrimSpace(r.Ident),
		Type:         types.AirportType(strings.TrimSpace(r.Type)),
		Name:         strings.TrimSpace(r.Name),
		ICAOCode:     code(r.ICAOCode),
		IATACode:     code(r.IATACode),
		GPSCode:      code(r.GPSCode),
		Municipality: types.String(strings.TrimSpace(r.Municipality)),
		CountryName:  types.String(strings.TrimSpace(r.CountryName)),
		ISOCountry:   code(r.ISOCountry),
		Continent:    code(r.Continent),
		Keywords:     types.String(strings.TrimSpace(r.Keywords)),
	}

	if a.Latitude, err = optionalFloat("latitude_deg", r.Latitude); err != nil {
		return nil, err
	}
	if a.Longitude, err = optionalFloat("longitude_deg", r.Longitude); err != nil {
		return nil, err
	}

	elevation, err := optionalInt("elevation_ft", r.Elevation)
	if err != nil {
		return nil, err
	}
	if elevation != nil {
		ft := int(*elevation)
		a.ElevationFt = &ft
	}

	score, err := optionalInt("score", r.Score)
	if err != nil {
		return nil, err
	}
	if score != nil {
		a.Relevance = int(*score)
	}

	a.ScheduledService, err = parseScheduled(r.ScheduledService)
	if err != nil {
		return nil, err
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

func code(s string) *string {
	return types.String(strings.ToUpper(strings.TrimSpace(s)))
}

func optionalFloat(column, s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", column, s, err)
	}
	return &f, nil
}

func optionalInt(column, s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", column, s, err)
	}
	return &n, nil
}

// parseScheduled accepts both the OurAirports "yes"/"no" form and 0/1
func parseScheduled(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "no", "false":
		return false, nil
	case "1", "yes", "true":
		return true, nil
	default:
		return false, fmt.Errorf("invalid scheduled_service %q", s)
	}
}
