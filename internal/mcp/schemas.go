package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/airsearch-mcp/pkg/types"
)

func airportTypeNames() []string {
	names := make([]string, len(types.AirportTypes))
	for i, t := range types.AirportTypes {
		names[i] = string(t)
	}
	return names
}

func limitProperty(description string, def, maximum int) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
		"default":     def,
		"minimum":     1,
		"maximum":     maximum,
	}
}

var formatProperty = map[string]interface{}{
	"type":        "string",
	"description": "full returns complete records; simple returns only ICAO code, city and country",
	"enum":        []string{formatFull, formatSimple},
	"default":     formatFull,
}

// searchAirportsTool returns the tool definition for search_airports
func searchAirportsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_airports",
		Description: "Search airports by name, ICAO/IATA code or city. Substring match by default; fuzzy=true blends in typo-tolerant matches",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Airport name, code or city",
				},
				"limit": limitProperty("Maximum number of results (1-100)", defaultSearchLimit, maxSearchLimit),
				"fuzzy": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, fill remaining slots with fuzzy matches",
					"default":     false,
				},
			},
			Required: []string{"query"},
		},
	}
}

// fuzzySearchTool returns the tool definition for fuzzy_search
func fuzzySearchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "fuzzy_search",
		Description: "Typo-tolerant airport search with scores. Combines code, name, city, keyword, phonetic and transposition matching",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search text (at least 2 characters)",
				},
				"limit": limitProperty("Maximum number of results (1-100)", defaultSearchLimit, maxSearchLimit),
				"min_score": map[string]interface{}{
					"type":        "number",
					"description": "Drop results scoring below this threshold",
					"default":     defaultMinScore,
					"minimum":     0,
				},
				"details": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, include the per-rule score breakdown",
					"default":     false,
				},
				"format": formatProperty,
			},
			Required: []string{"query"},
		},
	}
}

// suggestCodesTool returns the tool definition for suggest_codes
func suggestCodesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "suggest_codes",
		Description: "Autocomplete ICAO and IATA codes starting with the query",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Code prefix (at least 2 characters)",
				},
				"limit": limitProperty("Maximum number of suggestions (1-100)", defaultSuggestLimit, maxSearchLimit),
			},
			Required: []string{"query"},
		},
	}
}

// smartCodeSearchTool returns the tool definition for smart_code_search
func smartCodeSearchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "smart_code_search",
		Description: "Find ICAO codes from a possibly misspelled code or name, with the reason each result matched",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Code or name (at least 3 characters)",
				},
				"limit": limitProperty("Maximum number of results (1-100)", defaultCodeLimit, maxSearchLimit),
			},
			Required: []string{"query"},
		},
	}
}

// searchByCityTool returns the tool definition for search_by_city
func searchByCityTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_by_city",
		Description: "Find airports serving a city. Exact city matches rank first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "City name (at least 2 characters)",
				},
				"limit": limitProperty("Maximum number of results, capped at 100", defaultSearchLimit, maxSearchLimit),
				"fuzzy": map[string]interface{}{
					"type":        "boolean",
					"description": "If false, use a plain substring match on the city",
					"default":     true,
				},
				"details": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, include the per-rule score breakdown",
					"default":     false,
				},
				"format": formatProperty,
			},
			Required: []string{"query"},
		},
	}
}

// getAirportTool returns the tool definition for get_airport
func getAirportTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_airport",
		Description: "Look up one airport by 4-letter ICAO or 3-letter IATA code",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"code": map[string]interface{}{
					"type":        "string",
					"description": "ICAO (e.g. EGLL) or IATA (e.g. LHR) code",
					"minLength":   3,
					"maxLength":   4,
				},
			},
			Required: []string{"code"},
		},
	}
}

// airportsByCountryTool returns the tool definition for airports_by_country
func airportsByCountryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "airports_by_country",
		Description: "List airports in a country, most relevant first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"country_code": map[string]interface{}{
					"type":        "string",
					"description": "2-letter ISO country code",
					"minLength":   2,
					"maxLength":   2,
				},
				"limit": limitProperty("Maximum number of airports (1-1000)", defaultListLimit, maxListLimit),
				"type": map[string]interface{}{
					"type":        "string",
					"description": "Only return airports of this type",
					"enum":        airportTypeNames(),
				},
			},
			Required: []string{"country_code"},
		},
	}
}

// airportsByTypeTool returns the tool definition for airports_by_type
func airportsByTypeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "airports_by_type",
		Description: "List airports of one type, most relevant first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"type": map[string]interface{}{
					"type":        "string",
					"description": "Airport type",
					"enum":        airportTypeNames(),
				},
				"limit": limitProperty("Maximum number of airports (1-1000)", defaultListLimit, maxListLimit),
			},
			Required: []string{"type"},
		},
	}
}

// nearbyAirportsTool returns the tool definition for nearby_airports
func nearbyAirportsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "nearby_airports",
		Description: "List airports within a box around a coordinate, nearest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"lat": map[string]interface{}{
					"type":        "number",
					"description": "Latitude in degrees (-90 to 90)",
					"minimum":     -90,
					"maximum":     90,
				},
				"lng": map[string]interface{}{
					"type":        "number",
					"description": "Longitude in degrees (-180 to 180)",
					"minimum":     -180,
					"maximum":     180,
				},
				"radius": map[string]interface{}{
					"type":        "number",
					"description": "Half-width of the search box in degrees",
					"default":     defaultRadius,
				},
				"limit": limitProperty("Maximum number of airports (1-100)", defaultSearchLimit, maxSearchLimit),
			},
			Required: []string{"lat", "lng"},
		},
	}
}

// countryStatsTool returns the tool definition for country_stats
func countryStatsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "country_stats",
		Description: "Airport counts for the 20 countries with the most airports",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// databaseInfoTool returns the tool definition for database_info
func databaseInfoTool() mcp.Tool {
	return mcp.Tool{
		Name:        "database_info",
		Description: "Database totals, schema version and available search features",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
