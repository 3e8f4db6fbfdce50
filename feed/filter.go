package feed

import (
	"strings"

	"nowtrain/livemap/tracking"
)

// Filter keeps the samples whose identifier contains query, case-normalized.
// An empty query returns the batch unchanged. Applied upstream of
// reconciliation so filtered-out trains are evicted like any other absentee.
func Filter(batch []tracking.Sample, query string) []tracking.Sample {
	if query == "" {
		return batch
	}
	q := strings.ToLower(query)
	kept := make([]tracking.Sample, 0, len(batch))
	for _, sample := range batch {
		if strings.Contains(strings.ToLower(sample.ID), q) {
			kept = append(kept, sample)
		}
	}
	return kept
}
