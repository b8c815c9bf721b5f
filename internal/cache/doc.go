// Package cache keeps a time-bounded, in-memory snapshot of the airport
// collection so that fuzzy search does not scan the store on every query.
//
// A snapshot is published atomically and never modified afterwards; readers
// see either the previous snapshot or the new one, never a partial one. When
// the snapshot expires, the next Load triggers one store scan shared by every
// concurrent caller. There is no explicit invalidation: data changes become
// visible after at most one TTL.
package cache
