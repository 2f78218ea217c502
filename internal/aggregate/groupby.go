// Package aggregate collapses partial fills into logical trades and formats
// them as ledger records.
package aggregate

// GroupBy partitions items by key. keys lists each distinct key once, in
// first-seen order; groups preserves item order within each key.
func GroupBy[T any, K comparable](items []T, key func(T) K) (keys []K, groups map[K][]T) {
	groups = make(map[K][]T)
	for _, item := range items {
		k := key(item)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], item)
	}
	return keys, groups
}
