package types

// MatchReason records one fired scoring rule and the points it contributed
type MatchReason struct {
	Rule        string  `json:"rule"`
	Description string  `json:"description"`
	Points      float64 `json:"points"`
}

// MatchDetails is the per-rule breakdown of a score
type MatchDetails struct {
	Reasons    []MatchReason `json:"reasons"`
	TotalScore float64       `json:"total_score"`
}

// Descriptions returns the human-readable reason strings in evaluation order
func (d *MatchDetails) Descriptions() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.Reasons))
	for i, r := range d.Reasons {
		out[i] = r.Description
	}
	return out
}

// ScoreResult is one airport scored against one query.
// Results are produced per call and never cached.
type ScoreResult struct {
	Airport *Airport
	Score   float64
	Details *MatchDetails // Nil unless details were requested
}

// CodeMatch is the simplified projection returned by code-focused search
type CodeMatch struct {
	ICAOCode     string      `json:"icao_code,omitempty"`
	IATACode     string      `json:"iata_code,omitempty"`
	Name         string      `json:"name"`
	Municipality string      `json:"municipality,omitempty"`
	CountryName  string      `json:"country_name,omitempty"`
	Type         AirportType `json:"type"`
	Score        float64     `json:"score"`
	MatchReason  string      `json:"match_reason"`
}

// Validate checks if the score result is well formed
func (r *ScoreResult) Validate() error {
	if r.Airport == nil {
		return ErrMissingAirport
	}
	if r.Score < 0 {
		return ErrNegativeScore
	}
	return nil
}
