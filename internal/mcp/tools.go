package mcp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/airsearch-mcp/internal/fuzzy"
	"github.com/dshills/airsearch-mcp/internal/searcher"
	"github.com/dshills/airsearch-mcp/internal/storage"
	"github.com/dshills/airsearch-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeNotFound      = -32001 // No airport matches the requested code
	ErrorCodeEmptyQuery    = -32004 // Query parameter is empty
)

// Tool parameter defaults and bounds
const (
	defaultSearchLimit  = 20
	defaultSuggestLimit = 10
	defaultCodeLimit    = 10
	defaultListLimit    = 50
	defaultMinScore     = searcher.DefaultFuzzyMinScore
	defaultRadius       = 1.0
	maxSearchLimit      = 100
	maxListLimit        = 1000
	maxRadius           = 45.0
)

var searchFeatures = []string{
	"Typo tolerance (Levenshtein distance)",
	"Phonetic matching (Soundex)",
	"Character transposition detection",
	"Jaro-Winkler similarity scoring",
	"Multi-field weighted scoring",
	"Code autocomplete suggestions",
}

// handleSearchAirports handles the search_airports tool invocation
func (s *Server) handleSearchAirports(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}

	query, err := requireQuery(args)
	if err != nil {
		return nil, err
	}
	limit, err := limitParam(args, defaultSearchLimit, maxSearchLimit)
	if err != nil {
		return nil, err
	}
	useFuzzy := getBoolDefault(args, "fuzzy", false)

	var airports []*types.Airport
	if useFuzzy {
		airports, err = s.searcher.EnhancedSearch(ctx, query, limit)
	} else {
		airports, err = s.storage.FindByPattern(ctx, nil, query, limit)
	}
	if err != nil {
		return nil, s.internalError("search_airports", "search failed", err)
	}

	searchType := "exact"
	if useFuzzy {
		searchType = "fuzzy"
	}

	response := map[string]interface{}{
		"search_term": query,
		"search_type": searchType,
		"count":       len(airports),
		"limit":       limit,
		"airports":    airportViews(airports),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleFuzzySearch handles the fuzzy_search tool invocation
func (s *Server) handleFuzzySearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}

	query, err := requireQuery(args)
	if err != nil {
		return nil, err
	}
	limit, err := limitParam(args, defaultSearchLimit, maxSearchLimit)
	if err != nil {
		return nil, err
	}
	format, err := formatParam(args)
	if err != nil {
		return nil, err
	}

	minScore := defaultMinScore
	if v, ok := getFloat(args, "min_score"); ok {
		if v < 0 {
			return nil, invalidParam("min_score", v, "must not be negative")
		}
		minScore = v
	}

	results, err := s.searcher.FuzzySearch(ctx, query, searcher.FuzzyOptions{
		Limit:          &limit,
		MinScore:       &minScore,
		IncludeDetails: getBoolDefault(args, "details", false) && format == formatFull,
	})
	if err != nil {
		return nil, s.internalError("fuzzy_search", "fuzzy search failed", err)
	}

	response := map[string]interface{}{
		"search_term": query,
		"search_type": "fuzzy",
		"format":      format,
		"limit":       limit,
		"min_score":   minScore,
	}
	setAirports(response, format, results)
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSuggestCodes handles the suggest_codes tool invocation
func (s *Server) handleSuggestCodes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}

	// Short or missing queries yield no suggestions rather than an error
	query := strings.TrimSpace(getStringDefault(args, "query", ""))
	limit, err := limitParam(args, defaultSuggestLimit, maxSearchLimit)
	if err != nil {
		return nil, err
	}

	suggestions, err := s.searcher.Suggest(ctx, query, limit)
	if err != nil {
		return nil, s.internalError("suggest_codes", "suggestions failed", err)
	}

	response := map[string]interface{}{
		"search_term": query,
		"count":       len(suggestions),
		"suggestions": suggestions,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSmartCodeSearch handles the smart_code_search tool invocation
func (s *Server) handleSmartCodeSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}

	query, err := requireQuery(args)
	if err != nil {
		return nil, err
	}
	if len([]rune(query)) < searcher.MinCodeQueryLength {
		return nil, invalidParam("query", query, fmt.Sprintf("must be at least %d characters", searcher.MinCodeQueryLength))
	}
	limit, err := limitParam(args, defaultCodeLimit, maxSearchLimit)
	if err != nil {
		return nil, err
	}

	matches, err := s.searcher.SmartCodeSearch(ctx, query, limit)
	if err != nil {
		return nil, s.internalError("smart_code_search", "code search failed", err)
	}

	response := map[string]interface{}{
		"search_term": query,
		"search_type": "smart-code",
		"count":       len(matches),
		"limit":       limit,
		"airports":    matches,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchByCity handles the search_by_city tool invocation
func (s *Server) handleSearchByCity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}

	query, err := requireQuery(args)
	if err != nil {
		return nil, err
	}
	if len([]rune(query)) < fuzzy.MinQueryLength {
		return nil, invalidParam("query", query, fmt.Sprintf("must be at least %d characters", fuzzy.MinQueryLength))
	}
	format, err := formatParam(args)
	if err != nil {
		return nil, err
	}

	// Oversized limits are capped rather than rejected
	limit := getIntDefault(args, "limit", defaultSearchLimit)
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	limit = min(limit, maxSearchLimit)

	useFuzzy := getBoolDefault(args, "fuzzy", true)
	response := map[string]interface{}{
		"query":         query,
		"fuzzy_enabled": useFuzzy,
		"format":        format,
		"limit":         limit,
	}

	if useFuzzy {
		results, err := s.searcher.FuzzyCitySearch(ctx, query, searcher.CityOptions{
			Limit:          limit,
			IncludeDetails: getBoolDefault(args, "details", false) && format == formatFull,
		})
		if err != nil {
			return nil, s.internalError("search_by_city", "city search failed", err)
		}
		setAirports(response, format, results)
		return mcp.NewToolResultText(formatJSON(response)), nil
	}

	airports, err := s.storage.SearchByCity(ctx, query, limit)
	if err != nil {
		return nil, s.internalError("search_by_city", "city search failed", err)
	}
	if format == formatSimple {
		views := simpleViews(airports)
		response["count"] = len(views)
		response["airports"] = views
	} else {
		response["count"] = len(airports)
		response["airports"] = airportViews(airports)
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetAirport handles the get_airport tool invocation
func (s *Server) handleGetAirport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(getStringDefault(args, "code", "")))
	if code == "" {
		return nil, missingParam("code")
	}

	airport, err := s.searcher.LookupCode(ctx, code)
	switch {
	case errors.Is(err, searcher.ErrInvalidCode):
		return nil, invalidParam("code", code, "must be a 4-letter ICAO or 3-letter IATA code")
	case errors.Is(err, storage.ErrNotFound):
		return nil, newMCPError(ErrorCodeNotFound, fmt.Sprintf("airport with code %s not found", code), map[string]interface{}{
			"code": code,
		})
	case err != nil:
		return nil, s.internalError("get_airport", "lookup failed", err)
	}

	response := map[string]interface{}{
		"airport": newAirportView(airport),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleAirportsByCountry handles the airports_by_country tool invocation
func (s *Server) handleAirportsByCountry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}

	country := strings.ToUpper(strings.TrimSpace(getStringDefault(args, "country_code", "")))
	if len(country) != 2 {
		return nil, invalidParam("country_code", country, "must be a 2-letter ISO country code")
	}
	limit, err := limitParam(args, defaultListLimit, maxListLimit)
	if err != nil {
		return nil, err
	}

	var filter types.AirportType
	if v := getStringDefault(args, "type", ""); v != "" {
		if filter, err = typeParam(v); err != nil {
			return nil, err
		}
	}

	airports, err := s.storage.ListByCountry(ctx, country, limit)
	if err != nil {
		return nil, s.internalError("airports_by_country", "country listing failed", err)
	}

	// The type filter applies to the limited page, so fewer than limit may come back
	typeName := "all"
	if filter != "" {
		typeName = string(filter)
		kept := airports[:0]
		for _, a := range airports {
			if a.Type == filter {
				kept = append(kept, a)
			}
		}
		airports = kept
	}

	response := map[string]interface{}{
		"country_code": country,
		"type":         typeName,
		"count":        len(airports),
		"limit":        limit,
		"airports":     airportViews(airports),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleAirportsByType handles the airports_by_type tool invocation
func (s *Server) handleAirportsByType(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}

	airportType, err := typeParam(getStringDefault(args, "type", ""))
	if err != nil {
		return nil, err
	}
	limit, err := limitParam(args, defaultListLimit, maxListLimit)
	if err != nil {
		return nil, err
	}

	airports, err := s.storage.ListByType(ctx, airportType, limit)
	if err != nil {
		return nil, s.internalError("airports_by_type", "type listing failed", err)
	}

	response := map[string]interface{}{
		"type":     airportType,
		"count":    len(airports),
		"limit":    limit,
		"airports": airportViews(airports),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleNearbyAirports handles the nearby_airports tool invocation
func (s *Server) handleNearbyAirports(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}

	lat, ok := getFloat(args, "lat")
	if !ok {
		return nil, missingParam("lat")
	}
	lng, ok := getFloat(args, "lng")
	if !ok {
		return nil, missingParam("lng")
	}
	if lat < -90 || lat > 90 {
		return nil, invalidParam("lat", lat, "latitude must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return nil, invalidParam("lng", lng, "longitude must be between -180 and 180")
	}

	radius := defaultRadius
	if v, ok := getFloat(args, "radius"); ok {
		radius = v
	}
	if radius <= 0 || radius > maxRadius {
		return nil, invalidParam("radius", radius, fmt.Sprintf("must be greater than 0 and at most %g degrees", maxRadius))
	}

	limit, err := limitParam(args, defaultSearchLimit, maxSearchLimit)
	if err != nil {
		return nil, err
	}

	nearby, err := s.storage.ListNearby(ctx, lat, lng, radius, limit)
	if err != nil {
		return nil, s.internalError("nearby_airports", "nearby search failed", err)
	}

	response := map[string]interface{}{
		"center": map[string]interface{}{
			"latitude":  lat,
			"longitude": lng,
		},
		"radius":   radius,
		"count":    len(nearby),
		"limit":    limit,
		"airports": nearbyViews(nearby),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleCountryStats handles the country_stats tool invocation
func (s *Server) handleCountryStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.storage.CountryStats(ctx)
	if err != nil {
		return nil, s.internalError("country_stats", "failed to get country statistics", err)
	}

	countries := make([]map[string]interface{}, 0, len(stats))
	for _, st := range stats {
		countries = append(countries, map[string]interface{}{
			"country_name":       st.CountryName,
			"total_airports":     st.TotalAirports,
			"large_airports":     st.LargeAirports,
			"scheduled_airports": st.ScheduledAirports,
		})
	}

	response := map[string]interface{}{
		"count":     len(countries),
		"countries": countries,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleDatabaseInfo handles the database_info tool invocation
func (s *Server) handleDatabaseInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.storage.GetStatus(ctx)
	if err != nil {
		return nil, s.internalError("database_info", "failed to get status", err)
	}

	response := map[string]interface{}{
		"statistics": map[string]interface{}{
			"total_airports":     status.TotalAirports,
			"countries":          status.Countries,
			"large_airports":     status.LargeAirports,
			"scheduled_airports": status.ScheduledAirports,
		},
		"database": map[string]interface{}{
			"driver":         status.Driver,
			"build_mode":     status.BuildMode,
			"schema_version": status.SchemaVersion,
		},
		"name":                  ServerName,
		"version":               ServerVersion,
		"available_types":       airportTypeNames(),
		"fuzzy_search_features": searchFeatures,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// setAirports stores scored results under "airports" in the requested format
func setAirports(response map[string]interface{}, format string, results []types.ScoreResult) {
	if format == formatSimple {
		views := simpleViews(resultAirports(results))
		response["count"] = len(views)
		response["airports"] = views
		return
	}
	response["count"] = len(results)
	response["airports"] = scoredViews(results)
}

// internalError logs a failed tool call and converts it to an MCP error
func (s *Server) internalError(tool, message string, err error) error {
	s.logger.Error("tool call failed", "tool", tool, "error", err)
	return newMCPError(ErrorCodeInternalError, message, map[string]interface{}{
		"error": err.Error(),
	})
}

func arguments(request mcp.CallToolRequest) (map[string]interface{}, error) {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}, nil
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	return args, nil
}

func requireQuery(args map[string]interface{}) (string, error) {
	query, _ := args["query"].(string)
	query = strings.TrimSpace(query)
	if query == "" {
		return "", newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}
	return query, nil
}

func limitParam(args map[string]interface{}, def, maximum int) (int, error) {
	limit := getIntDefault(args, "limit", def)
	if limit < 1 || limit > maximum {
		return 0, invalidParam("limit", limit, fmt.Sprintf("must be between 1 and %d", maximum))
	}
	return limit, nil
}

func formatParam(args map[string]interface{}) (string, error) {
	format := strings.ToLower(getStringDefault(args, "format", formatFull))
	if format != formatFull && format != formatSimple {
		return "", newMCPError(ErrorCodeInvalidParams, "invalid format", map[string]interface{}{
			"param":   "format",
			"value":   format,
			"allowed": []string{formatFull, formatSimple},
		})
	}
	return format, nil
}

func typeParam(value string) (types.AirportType, error) {
	t := types.AirportType(strings.TrimSpace(value))
	if !t.Valid() {
		return "", newMCPError(ErrorCodeInvalidParams, "invalid airport type", map[string]interface{}{
			"param":   "type",
			"value":   value,
			"allowed": airportTypeNames(),
		})
	}
	return t, nil
}

func missingParam(name string) error {
	return newMCPError(ErrorCodeInvalidParams, name+" parameter is required", map[string]interface{}{
		"param":  name,
		"reason": "missing or empty",
	})
}

func invalidParam(name string, value interface{}, reason string) error {
	return newMCPError(ErrorCodeInvalidParams, "invalid "+name, map[string]interface{}{
		"param":  name,
		"value":  value,
		"reason": reason,
	})
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	switch val := args[key].(type) {
	case bool:
		return val
	case string:
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getFloat extracts a numeric parameter, accepting numeric strings
func getFloat(args map[string]interface{}, key string) (float64, bool) {
	switch val := args[key].(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	}
	return 0, false
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
