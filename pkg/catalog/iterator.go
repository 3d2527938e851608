package catalog

import (
	"context"

	"github.com/cperrin88/sentfetch/pkg/model"
)

// Iterator walks the pages of one catalog search lazily. It is not safe
// for concurrent use; the pipeline consumes one search at a time.
type Iterator struct {
	client  *Client
	nextURL string
	mission model.Mission
	unit    model.SearchUnit
	window  model.DateWindow

	buf []model.ProductRecord
	pos int
}

// Next returns the next product record, fetching further pages on demand.
// It returns (nil, nil) when the sequence is exhausted.
func (it *Iterator) Next(ctx context.Context) (*model.ProductRecord, error) {
	for it.pos >= len(it.buf) {
		if it.nextURL == "" {
			return nil, nil
		}

		page, err := it.client.fetchPage(ctx, it.nextURL)
		if err != nil {
			return nil, err
		}
		it.nextURL = page.NextLink
		it.buf = it.recordsFromPage(page)
		it.pos = 0
	}

	rec := it.buf[it.pos]
	it.pos++
	return &rec, nil
}

func (it *Iterator) recordsFromPage(page *odataPage) []model.ProductRecord {
	records := make([]model.ProductRecord, 0, len(page.Value))
	for _, v := range page.Value {
		rec := model.ProductRecord{
			ID:           v.ID,
			Name:         v.Name,
			Mission:      it.mission,
			SensingStart: v.ContentDate.Start,
			Published:    v.PublicationDate,
			Online:       v.Online,
			Unit:         it.unit,
			Window:       it.window,
		}
		for _, attr := range v.Attributes {
			if attr.Name == "orbitDirection" {
				if s, ok := attr.Value.(string); ok {
					rec.OrbitDirection = s
				}
			}
		}
		records = append(records, rec)
	}
	return records
}
