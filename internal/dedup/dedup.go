// Package dedup collapses tender batches into one list without duplicates.
// It is used inside adapters that merge fallback paths (HSL portal + main
// site, CPPP table + RSS) and by the orchestrator across portals.
package dedup

import "tenderscan/internal/domain"

// Merge concatenates batches, keeping the first occurrence of every dedup
// key and preserving input order. Calling it on an already-deduplicated
// list is a no-op, so repeated application is safe.
func Merge(batches ...[]domain.Tender) []domain.Tender {
	seen := map[string]struct{}{}
	var out []domain.Tender
	for _, batch := range batches {
		for _, t := range batch {
			key := t.DedupKey()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
