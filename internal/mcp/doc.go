// Package mcp implements the Model Context Protocol (MCP) server for airsearch.
//
// The server exposes airport lookup and typo-tolerant search to MCP clients:
//   - search_airports: Substring search, optionally blended with fuzzy matches
//   - fuzzy_search: Scored fuzzy search with optional per-rule breakdown
//   - suggest_codes: ICAO/IATA code autocomplete
//   - smart_code_search: ICAO codes from misspelled codes or names
//   - search_by_city: Airports serving a city, exact city first
//   - get_airport: Lookup by 4-letter ICAO or 3-letter IATA code
//   - airports_by_country, airports_by_type, nearby_airports: Listings
//   - country_stats, database_info: Statistics
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server is typically started via the serve command:
//
//	airsearch serve
//
// # Tool: fuzzy_search
//
//	Request:
//	{
//	  "name": "fuzzy_search",
//	  "arguments": {
//	    "query": "EGKL",
//	    "limit": 5,
//	    "details": true
//	  }
//	}
//
//	Response:
//	{
//	  "search_term": "EGKL",
//	  "search_type": "fuzzy",
//	  "count": 1,
//	  "airports": [
//	    {
//	      "icao_code": "EGLL",
//	      "name": "London Heathrow Airport",
//	      "fuzzy_score": 72.0,
//	      "match_details": {
//	        "reasons": [
//	          {"rule": "icao_fuzzy", "description": "ICAO fuzzy match (86.7%)", "points": 52.0},
//	          {"rule": "phonetic", "description": "Phonetic similarity", "points": 20.0}
//	        ],
//	        "total_score": 72.0
//	      }
//	    }
//	  ]
//	}
//
// Search tools accept format=simple to return only ICAO code, city and
// country, dropping airports that lack either of the first two.
//
// # MCP Client Configuration
//
//	{
//	  "mcpServers": {
//	    "airsearch": {
//	      "command": "/usr/local/bin/airsearch",
//	      "args": ["serve"],
//	      "env": {
//	        "AIRSEARCH_DB_PATH": "/var/lib/airsearch/airports.db"
//	      }
//	    }
//	  }
//	}
//
// # Error Handling
//
// Handlers return *MCPError values carrying JSON-RPC codes:
//   - -32602: Invalid params (bad limit, code length, coordinates, type)
//   - -32603: Internal error (store failures)
//   - -32001: No airport matches the requested code
//   - -32004: Query parameter is empty
//
// Short queries on search tools are not errors; they return no results.
package mcp
