package fuzzy

import (
	"fmt"
	"math"
	"strings"

	"github.com/dshills/airsearch-mcp/pkg/types"
)

// Similarity thresholds and scaling factors used by the rule table
const (
	icaoFuzzyThreshold = 0.7
	iataFuzzyThreshold = 0.6
	nameWordThreshold  = 0.8
	cityWordThreshold  = 0.65

	nameWordFactor    = 0.5
	cityPartialFactor = 0.8

	minWordLen          = 3 // Shortest query or city word considered for word-level matching
	minCityQueryLen     = 4 // Shortest query for city partial and phonetic rules
	minPhoneticQueryLen = 3
	transpositionLen    = 4
)

// query is the normalized form of a search query, computed once per Score call
type query struct {
	lower   string // Trimmed and lower-cased
	upper   string
	words   []string
	length  int
	soundex string
}

func newQuery(raw string) *query {
	lower := strings.ToLower(strings.TrimSpace(raw))
	return &query{
		lower:   lower,
		upper:   strings.ToUpper(lower),
		words:   strings.Fields(lower),
		length:  runeLen(lower),
		soundex: Soundex(lower),
	}
}

// rule evaluates one scoring rule and returns the contributions it fired, if any
type rule func(w *Weights, a *types.Airport, q *query) []types.MatchReason

// firstOf returns the contributions of the first rule that fires
func firstOf(rules ...rule) rule {
	return func(w *Weights, a *types.Airport, q *query) []types.MatchReason {
		for _, r := range rules {
			if out := r(w, a, q); len(out) > 0 {
				return out
			}
		}
		return nil
	}
}

// allOf returns the contributions of every rule, in order
func allOf(rules ...rule) rule {
	return func(w *Weights, a *types.Airport, q *query) []types.MatchReason {
		var out []types.MatchReason
		for _, r := range rules {
			out = append(out, r(w, a, q)...)
		}
		return out
	}
}

// defaultRules is the scoring table: exclusive within a field group, additive across groups
func defaultRules() []rule {
	icao := codeField{
		name: "icao", label: "ICAO", code: (*types.Airport).ICAO, threshold: icaoFuzzyThreshold,
		weights: func(w *Weights) codeWeights { return codeWeights{w.ICAOExact, w.ICAOPrefix, w.ICAOFuzzy} },
	}
	iata := codeField{
		name: "iata", label: "IATA", code: (*types.Airport).IATA, threshold: iataFuzzyThreshold,
		weights: func(w *Weights) codeWeights { return codeWeights{w.IATAExact, w.IATAPrefix, w.IATAFuzzy} },
	}

	return []rule{
		firstOf(icao.exact(), icao.prefix(), icao.fuzzy()),
		firstOf(iata.exact(), iata.prefix(), iata.fuzzy()),
		firstOf(nameStartsWith, nameContains, nameWordFuzzy),
		firstOf(cityStartsWith, cityContains, allOf(cityWordFuzzy, cityWordPartial, cityPhonetic)),
		keywordsMatch,
		icaoPhonetic,
		icaoTransposition,
	}
}

func contribution(rule, description string, points float64) []types.MatchReason {
	return []types.MatchReason{{Rule: rule, Description: description, Points: points}}
}

func percent(sim float64) string {
	return fmt.Sprintf("%.1f%%", sim*100)
}

type codeWeights struct {
	exact, prefix, fuzzy float64
}

// codeField describes one airport code attribute and its rule weights
type codeField struct {
	name      string
	label     string
	code      func(*types.Airport) (string, bool)
	weights   func(*Weights) codeWeights
	threshold float64
}

func (f codeField) exact() rule {
	return func(w *Weights, a *types.Airport, q *query) []types.MatchReason {
		code, ok := f.code(a)
		if !ok || strings.ToUpper(code) != q.upper {
			return nil
		}
		return contribution(f.name+"_exact", f.label+" exact match", f.weights(w).exact)
	}
}

func (f codeField) prefix() rule {
	return func(w *Weights, a *types.Airport, q *query) []types.MatchReason {
		code, ok := f.code(a)
		if !ok || !strings.HasPrefix(strings.ToUpper(code), q.upper) {
			return nil
		}
		return contribution(f.name+"_prefix", f.label+" prefix match", f.weights(w).prefix)
	}
}

func (f codeField) fuzzy() rule {
	return func(w *Weights, a *types.Airport, q *query) []types.MatchReason {
		code, ok := f.code(a)
		if !ok {
			return nil
		}
		sim := JaroWinkler(code, q.upper)
		if sim <= f.threshold {
			return nil
		}
		return contribution(f.name+"_fuzzy",
			fmt.Sprintf("%s fuzzy match (%s)", f.label, percent(sim)),
			f.weights(w).fuzzy*sim)
	}
}

func nameStartsWith(w *Weights, a *types.Airport, q *query) []types.MatchReason {
	name, ok := a.DisplayName()
	if !ok || !strings.HasPrefix(strings.ToLower(name), q.lower) {
		return nil
	}
	return contribution("name_exact", "Name starts with query", w.NameExact)
}

func nameContains(w *Weights, a *types.Airport, q *query) []types.MatchReason {
	name, ok := a.DisplayName()
	if !ok || !strings.Contains(strings.ToLower(name), q.lower) {
		return nil
	}
	return contribution("name_partial", "Name contains query", w.NamePartial)
}

// nameWordFuzzy scores every (name word, query word) pair that is similar enough
func nameWordFuzzy(w *Weights, a *types.Airport, q *query) []types.MatchReason {
	name, ok := a.DisplayName()
	if !ok {
		return nil
	}

	var out []types.MatchReason
	for _, nameWord := range strings.Fields(strings.ToLower(name)) {
		for _, queryWord := range q.words {
			if runeLen(queryWord) < minWordLen {
				continue
			}
			sim := JaroWinkler(nameWord, queryWord)
			if sim > nameWordThreshold {
				out = append(out, types.MatchReason{
					Rule:        "name_word_fuzzy",
					Description: fmt.Sprintf("Name word fuzzy match: %q ~ %q", nameWord, queryWord),
					Points:      w.NamePartial * sim * nameWordFactor,
				})
			}
		}
	}
	return out
}

func cityStartsWith(w *Weights, a *types.Airport, q *query) []types.MatchReason {
	city, ok := a.City()
	if !ok || !strings.HasPrefix(strings.ToLower(city), q.lower) {
		return nil
	}
	return contribution("city_exact", "City starts with query", w.CityExact)
}

func cityContains(w *Weights, a *types.Airport, q *query) []types.MatchReason {
	city, ok := a.City()
	if !ok || !strings.Contains(strings.ToLower(city), q.lower) {
		return nil
	}
	return contribution("city_partial", "City contains query", w.CityPartial)
}

// cityWords returns the lower-cased words of the municipality long enough to match on
func cityWords(a *types.Airport) []string {
	city, ok := a.City()
	if !ok {
		return nil
	}
	var words []string
	for _, word := range splitCityWords(strings.ToLower(city)) {
		if runeLen(word) >= minWordLen {
			words = append(words, word)
		}
	}
	return words
}

// cityWordFuzzy scores the single best (city word, query word) pair
func cityWordFuzzy(w *Weights, a *types.Airport, q *query) []types.MatchReason {
	words := cityWords(a)
	best := 0.0
	var bestCity, bestQuery string
	for _, queryWord := range q.words {
		if runeLen(queryWord) < minWordLen {
			continue
		}
		for _, cityWord := range words {
			sim := JaroWinkler(cityWord, queryWord)
			if sim > best && sim > cityWordThreshold {
				best, bestCity, bestQuery = sim, cityWord, queryWord
			}
		}
	}
	if best <= cityWordThreshold {
		return nil
	}
	return contribution("city_fuzzy",
		fmt.Sprintf("City fuzzy match: %q ~ %q (%s)", bestCity, bestQuery, percent(best)),
		math.Round(w.CityExact*best))
}

// cityWordPartial fires when a city word and the query are prefixes of one another
func cityWordPartial(w *Weights, a *types.Airport, q *query) []types.MatchReason {
	if q.length < minCityQueryLen {
		return nil
	}
	for _, cityWord := range cityWords(a) {
		if strings.HasPrefix(cityWord, q.lower) || strings.HasPrefix(q.lower, cityWord) {
			return contribution("city_partial_fuzzy",
				fmt.Sprintf("City partial match: %q", cityWord),
				math.Round(w.CityPartial*cityPartialFactor))
		}
	}
	return nil
}

func cityPhonetic(w *Weights, a *types.Airport, q *query) []types.MatchReason {
	if q.length < minCityQueryLen {
		return nil
	}
	for _, cityWord := range cityWords(a) {
		if runeLen(cityWord) >= minCityQueryLen && Soundex(cityWord) == q.soundex {
			return contribution("city_phonetic",
				fmt.Sprintf("City phonetic match: %q", cityWord),
				w.CityPhoneticBonus)
		}
	}
	return nil
}

func keywordsMatch(w *Weights, a *types.Airport, q *query) []types.MatchReason {
	keywords, ok := a.KeywordText()
	if !ok || !strings.Contains(strings.ToLower(keywords), q.lower) {
		return nil
	}
	return contribution("keywords_match", "Keywords match", w.KeywordsMatch)
}

// icaoPhonetic rewards queries that sound like the ICAO code
func icaoPhonetic(w *Weights, a *types.Airport, q *query) []types.MatchReason {
	icao, ok := a.ICAO()
	if !ok || q.length < minPhoneticQueryLen {
		return nil
	}
	if q.soundex == "0000" || q.soundex != Soundex(icao) {
		return nil
	}
	return contribution("phonetic", "Phonetic similarity", w.PhoneticCodeBonus)
}

// icaoTransposition rewards a 4-letter query that is the ICAO code with two adjacent letters swapped.
// Both sides are upper-cased first, so a stored code in lower case still matches.
func icaoTransposition(w *Weights, a *types.Airport, q *query) []types.MatchReason {
	icao, ok := a.ICAO()
	if !ok || q.length != transpositionLen || runeLen(icao) != transpositionLen {
		return nil
	}
	if !CheckTransposition(q.upper, strings.ToUpper(icao)) {
		return nil
	}
	return contribution("transposition", "Likely character transposition", w.TranspositionBonus)
}
