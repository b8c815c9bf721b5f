package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/airsearch-mcp/internal/searcher"
	"github.com/dshills/airsearch-mcp/pkg/types"
)

// Search modes
const (
	modeEnhanced = "enhanced"
	modeFuzzy    = "fuzzy"
	modeCode     = "code"
	modeCity     = "city"
	modeSuggest  = "suggest"
)

var (
	searchMode     string
	searchLimit    int
	searchMinScore float64
	searchDetails  bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search airports from the command line and print JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchMode, "mode", modeFuzzy, "search mode: enhanced, fuzzy, code, city or suggest")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "maximum results (0 uses the mode default)")
	searchCmd.Flags().Float64Var(&searchMinScore, "min-score", searcher.DefaultFuzzyMinScore, "lowest score kept in fuzzy mode (inclusive)")
	searchCmd.Flags().BoolVar(&searchDetails, "details", false, "include per-rule score breakdown")
}

// searchResult is the printed form of one match
type searchResult struct {
	ICAOCode    string              `json:"icao_code,omitempty"`
	IATACode    string              `json:"iata_code,omitempty"`
	Name        string              `json:"name"`
	City        string              `json:"city,omitempty"`
	Country     string              `json:"country,omitempty"`
	Type        types.AirportType   `json:"type"`
	Score       float64             `json:"score,omitempty"`
	MatchReason string              `json:"match_reason,omitempty"`
	Details     *types.MatchDetails `json:"details,omitempty"`
}

func newSearchResult(a *types.Airport) searchResult {
	icao, _ := a.ICAO()
	iata, _ := a.IATA()
	city, _ := a.City()
	country, _ := a.Country()
	return searchResult{
		ICAOCode: icao,
		IATACode: iata,
		Name:     a.Name,
		City:     city,
		Country:  country,
		Type:     a.Type,
	}
}

func scored(results []types.ScoreResult) []searchResult {
	out := make([]searchResult, 0, len(results))
	for _, r := range results {
		res := newSearchResult(r.Airport)
		res.Score = r.Score
		res.Details = r.Details
		out = append(out, res)
	}
	return out
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStorage(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	srch := searcher.NewSearcher(store, searcher.WithLogger(logger))
	ctx := cmd.Context()

	var output interface{}
	switch strings.ToLower(searchMode) {
	case modeEnhanced:
		airports, err := srch.EnhancedSearch(ctx, query, searchLimit)
		if err != nil {
			return err
		}
		results := make([]searchResult, 0, len(airports))
		for _, a := range airports {
			results = append(results, newSearchResult(a))
		}
		output = results
	case modeFuzzy:
		opts := searcher.FuzzyOptions{IncludeDetails: searchDetails}
		if cmd.Flags().Changed("limit") {
			opts.Limit = &searchLimit
		}
		if cmd.Flags().Changed("min-score") {
			opts.MinScore = &searchMinScore
		}
		results, err := srch.FuzzySearch(ctx, query, opts)
		if err != nil {
			return err
		}
		output = scored(results)
	case modeCity:
		results, err := srch.FuzzyCitySearch(ctx, query, searcher.CityOptions{
			Limit:          searchLimit,
			IncludeDetails: searchDetails,
		})
		if err != nil {
			return err
		}
		output = scored(results)
	case modeCode:
		matches, err := srch.SmartCodeSearch(ctx, query, searchLimit)
		if err != nil {
			return err
		}
		output = matches
	case modeSuggest:
		suggestions, err := srch.Suggest(ctx, query, searchLimit)
		if err != nil {
			return err
		}
		output = suggestions
	default:
		return fmt.Errorf("unknown search mode %q (want enhanced, fuzzy, code, city or suggest)", searchMode)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
