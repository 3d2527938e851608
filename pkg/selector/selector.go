// Package selector picks the product(s) that represent each
// (search unit, date window) bucket from the catalog's candidate records.
package selector

import (
	"sort"

	"github.com/cperrin88/sentfetch/pkg/model"
)

// Select groups candidate records by their (unit, window) bucket and picks
// one winner per bucket, or every candidate in preference order when the
// criteria allow multiple products. Ties are broken by explicit fields
// only, never by input order, so results are reproducible across runs.
// Buckets with no records simply produce no output; the caller records
// them as no-product-found.
func Select(records []model.ProductRecord, criteria model.Criteria) []model.SelectedProduct {
	groups := make(map[string][]model.ProductRecord)
	var keys []string
	for _, rec := range records {
		key := rec.GroupKey()
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], rec)
	}
	sort.Strings(keys)

	var selected []model.SelectedProduct
	for _, key := range keys {
		group := groups[key]
		sortGroup(group, criteria)
		if criteria.AllowMultiple {
			for _, rec := range group {
				selected = append(selected, model.SelectedProduct{ProductRecord: rec})
			}
			continue
		}
		selected = append(selected, model.SelectedProduct{ProductRecord: group[0]})
	}
	return selected
}

// sortGroup orders a bucket's candidates best-first using the
// mission-specific tie-break chain.
func sortGroup(group []model.ProductRecord, criteria model.Criteria) {
	sort.SliceStable(group, func(i, j int) bool {
		return prefer(group[i], group[j], criteria)
	})
}

// prefer reports whether a should be chosen over b.
func prefer(a, b model.ProductRecord, criteria model.Criteria) bool {
	switch criteria.Mission {
	case model.MissionS2:
		return preferS2(a, b, criteria)
	case model.MissionS1:
		return preferS1(a, b, criteria)
	default:
		return a.ID > b.ID
	}
}

// preferS2 chain: requested product level exact match, then latest
// processing baseline, then most recent publication, then lexically
// greatest product ID (the documented final tie-break).
func preferS2(a, b model.ProductRecord, criteria model.Criteria) bool {
	if criteria.ProductLevel != "" {
		am := a.Level() == criteria.ProductLevel
		bm := b.Level() == criteria.ProductLevel
		if am != bm {
			return am
		}
	}

	av, bv := a.Baseline(), b.Baseline()
	switch {
	case av != nil && bv == nil:
		return true
	case av == nil && bv != nil:
		return false
	case av != nil && bv != nil && !av.Equal(bv):
		return av.GreaterThan(bv)
	}

	if !a.Published.Equal(b.Published) {
		return a.Published.After(b.Published)
	}

	return a.ID > b.ID
}

// preferS1 chain: requested orbit direction exact match, then requested
// product type exact match, then most recent sensing, then lexically
// greatest product ID.
func preferS1(a, b model.ProductRecord, criteria model.Criteria) bool {
	if criteria.OrbitDirection != "" {
		am := a.OrbitDirection == criteria.OrbitDirection
		bm := b.OrbitDirection == criteria.OrbitDirection
		if am != bm {
			return am
		}
	}

	if criteria.ProductType != "" {
		am := a.Type() == criteria.ProductType
		bm := b.Type() == criteria.ProductType
		if am != bm {
			return am
		}
	}

	if !a.SensingStart.Equal(b.SensingStart) {
		return a.SensingStart.After(b.SensingStart)
	}

	return a.ID > b.ID
}
