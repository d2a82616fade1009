package normalize

import (
	"fmt"
	"sort"
	"strings"

	"cjd/internal/errors"
)

// Normalize runs the full pipeline over a decoded JSON document:
// validate shape, deduplicate keys, partition by emptiness, sort each
// group, concatenate. Fatal on shape violations; no partial result.
func Normalize(data interface{}, opts Options) (*Result, error) {
	document, err := toDocument(data)
	if err != nil {
		return nil, err
	}

	// Single forward pass in original order. Only the first occurrence of
	// a key ever reaches the partition, so output keys are unique.
	retained := make(map[string]interface{}, len(document))
	dupIndex := make(map[string]int)
	var duplicates []DuplicateRecord
	var withValue, withoutValue []Entry
	stats := Stats{TotalEntries: len(document)}

	for _, entry := range document {
		if _, seen := retained[entry.Key]; !seen {
			retained[entry.Key] = entry.Value
			if IsEmptyValue(entry.Value) {
				withoutValue = append(withoutValue, entry)
			} else {
				withValue = append(withValue, entry)
			}
			continue
		}

		stats.DuplicatesFound++

		idx, ok := dupIndex[entry.Key]
		if !ok {
			idx = len(duplicates)
			dupIndex[entry.Key] = idx
			duplicates = append(duplicates, DuplicateRecord{Key: entry.Key})
		}
		duplicates[idx].Values = append(duplicates[idx].Values, entry.Value)

		if opts.RemoveEmptyDuplicates && IsEmptyValue(entry.Value) {
			stats.DuplicatesRemoved++
		}
		// The retained value never changes: a later non-empty duplicate of
		// a first-seen empty value is logged and dropped, not promoted.
	}

	sortEntries(withValue, opts.SortBy)
	sortEntries(withoutValue, opts.SortBy)

	stats.EntriesWithValue = len(withValue)
	stats.EntriesWithoutValue = len(withoutValue)

	entries := make([]Entry, 0, len(withValue)+len(withoutValue))
	entries = append(entries, withValue...)
	entries = append(entries, withoutValue...)

	return &Result{
		Entries:    entries,
		Stats:      stats,
		Duplicates: duplicates,
	}, nil
}

// toDocument validates the decoded JSON shape and extracts the ordered entries.
// The top level must be an array; every element must be a single-key object.
func toDocument(data interface{}) ([]Entry, error) {
	items, ok := data.([]interface{})
	if !ok {
		return nil, errors.NewShapeError("top-level JSON value is not an array")
	}

	entries := make([]Entry, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, errors.NewShapeError(fmt.Sprintf("entry %d is not an object", i)).
				WithDetails(map[string]int{"index": i})
		}
		if len(obj) != 1 {
			return nil, errors.NewShapeError(fmt.Sprintf("entry %d has %d keys, want exactly 1", i, len(obj))).
				WithDetails(map[string]int{"index": i, "keys": len(obj)})
		}
		for key, value := range obj {
			entries = append(entries, Entry{Key: key, Value: value})
		}
	}

	return entries, nil
}

// sortEntries orders a group in place, case-insensitively. Equal sort keys
// keep their first-seen relative order. Only the literal "key" mode sorts
// by key; anything else sorts by stringified value.
func sortEntries(entries []Entry, mode SortMode) {
	if mode == SortByKey {
		sort.SliceStable(entries, func(i, j int) bool {
			return strings.ToLower(entries[i].Key) < strings.ToLower(entries[j].Key)
		})
		return
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return strings.ToLower(sortText(entries[i].Value)) < strings.ToLower(sortText(entries[j].Value))
	})
}
