// Package fuzzy implements the airport ranking engine.
//
// It has three layers. The string metrics (LevenshteinDistance, JaroWinkler,
// Soundex, CheckTransposition) are pure functions. The Scorer applies a fixed,
// weighted rule table to one airport: rules inside a field group (ICAO, IATA,
// name, city) are exclusive and the first one to fire wins, while groups add
// up. The Index scores a whole collection, filters by a minimum score and
// returns the best results.
//
// # Usage
//
//	limit := 5
//	idx := fuzzy.NewIndex(fuzzy.NewScorer())
//	results := idx.Search(airports, "heathrow", fuzzy.Options{Limit: &limit, IncludeDetails: true})
//	for _, r := range results {
//	    fmt.Println(r.Airport.Name, r.Score, r.Details.Descriptions())
//	}
//
// Queries shorter than two characters after trimming yield empty results.
// Unset Options fields fall back to DefaultLimit and DefaultMinScore; a
// MinScore of 0 is a real bound and keeps airports that scored nothing.
//
// Scorer and Index hold no mutable state and are safe for concurrent use.
package fuzzy
