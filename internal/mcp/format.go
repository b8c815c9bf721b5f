package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/dshills/airsearch-mcp/internal/storage"
	"github.com/dshills/airsearch-mcp/pkg/types"
)

// Result formats
const (
	formatFull   = "full"
	formatSimple = "simple"
)

// airportView is the JSON form of an airport. Absent attributes encode as null.
type airportView struct {
	ID               int64               `json:"id"`
	Ident            string              `json:"ident"`
	Type             types.AirportType   `json:"type"`
	Name             string              `json:"name"`
	ICAOCode         *string             `json:"icao_code"`
	IATACode         *string             `json:"iata_code"`
	GPSCode          *string             `json:"gps_code"`
	Municipality     *string             `json:"municipality"`
	CountryName      *string             `json:"country_name"`
	ISOCountry       *string             `json:"iso_country"`
	Continent        *string             `json:"continent"`
	Latitude         *float64            `json:"latitude_deg"`
	Longitude        *float64            `json:"longitude_deg"`
	ElevationFt      *int                `json:"elevation_ft"`
	Keywords         *string             `json:"keywords"`
	ScheduledService bool                `json:"scheduled_service"`
	Relevance        int                 `json:"relevance"`
	Score            *float64            `json:"fuzzy_score,omitempty"`
	Details          *types.MatchDetails `json:"match_details,omitempty"`
	Distance         *float64            `json:"distance,omitempty"`
}

// simpleView is the reduced form returned when format=simple
type simpleView struct {
	ICAOCode string `json:"icao_code"`
	City     string `json:"city"`
	Country  string `json:"country,omitempty"`
}

func newAirportView(a *types.Airport) airportView {
	return airportView{
		ID:               a.ID,
		Ident:            a.Ident,
		Type:             a.Type,
		Name:             a.Name,
		ICAOCode:         a.ICAOCode,
		IATACode:         a.IATACode,
		GPSCode:          a.GPSCode,
		Municipality:     a.Municipality,
		CountryName:      a.CountryName,
		ISOCountry:       a.ISOCountry,
		Continent:        a.Continent,
		Latitude:         a.Latitude,
		Longitude:        a.Longitude,
		ElevationFt:      a.ElevationFt,
		Keywords:         a.Keywords,
		ScheduledService: a.ScheduledService,
		Relevance:        a.Relevance,
	}
}

func airportViews(airports []*types.Airport) []airportView {
	out := make([]airportView, 0, len(airports))
	for _, a := range airports {
		out = append(out, newAirportView(a))
	}
	return out
}

func scoredViews(results []types.ScoreResult) []airportView {
	out := make([]airportView, 0, len(results))
	for _, r := range results {
		v := newAirportView(r.Airport)
		score := r.Score
		v.Score = &score
		v.Details = r.Details
		out = append(out, v)
	}
	return out
}

func nearbyViews(results []storage.NearbyAirport) []airportView {
	out := make([]airportView, 0, len(results))
	for _, r := range results {
		v := newAirportView(r.Airport)
		distance := r.Distance
		v.Distance = &distance
		out = append(out, v)
	}
	return out
}

// simpleViews keeps only airports that have both an ICAO code and a city
func simpleViews(airports []*types.Airport) []simpleView {
	out := make([]simpleView, 0, len(airports))
	for _, a := range airports {
		icao, hasICAO := a.ICAO()
		city, hasCity := a.City()
		if !hasICAO || !hasCity {
			continue
		}
		country, _ := a.Country()
		out = append(out, simpleView{ICAOCode: icao, City: city, Country: country})
	}
	return out
}

func resultAirports(results []types.ScoreResult) []*types.Airport {
	out := make([]*types.Airport, len(results))
	for i, r := range results {
		out[i] = r.Airport
	}
	return out
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}
