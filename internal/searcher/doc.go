// Package searcher orchestrates airport search.
//
// A Searcher combines three sources: substring queries against the store,
// the fuzzy index run over the cached snapshot, and a small LRU for direct
// code lookups. It offers five search flavors:
//
//   - EnhancedSearch: store matches first, fuzzy matches fill the remaining slots
//   - FuzzySearch: fuzzy ranking over the whole snapshot
//   - Suggest: ICAO/IATA code prefixes for autocomplete
//   - SmartCodeSearch: typo-tolerant search over airports with an ICAO code
//   - FuzzyCitySearch: fuzzy ranking with exact and prefix city matches promoted
//
// Queries that are too short return empty results rather than errors. Store
// failures are wrapped and can be matched with errors.Is.
//
// # Usage
//
//	s := searcher.NewSearcher(store, searcher.WithLogger(logger))
//	airports, err := s.EnhancedSearch(ctx, "heathrow", 10)
package searcher
