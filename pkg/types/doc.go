// Package types provides shared type definitions for the airsearch MCP server.
//
// This package defines the domain types used across the store, the fuzzy
// search engine and the MCP tool surface.
//
// # Core Types
//
// Airport is a single record from the airport database. Only the identifier
// is mandatory; every other attribute may be absent:
//
//	heathrow := &types.Airport{
//	    ID:           2434,
//	    Ident:        "EGLL",
//	    Type:         types.TypeLargeAirport,
//	    Name:         "London Heathrow Airport",
//	    ICAOCode:     types.String("EGLL"),
//	    IATACode:     types.String("LHR"),
//	    Municipality: types.String("London"),
//	}
//
// Optional attributes are read through accessors that report presence:
//
//	if city, ok := heathrow.City(); ok {
//	    fmt.Println(city)
//	}
//
// # Search Results
//
// ScoreResult pairs an airport with the additive score it earned for a query.
// When details are requested, MatchDetails lists every fired rule in
// evaluation order:
//
//	for _, r := range result.Details.Reasons {
//	    fmt.Printf("%-24s %6.1f  %s\n", r.Rule, r.Points, r.Description)
//	}
//
// Scores are unbounded above and never negative.
package types
