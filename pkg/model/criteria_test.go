package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthlyWindows(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		wantStarts []string
		wantEnds   []string
	}{
		{
			name:       "single month",
			start:      date(2019, time.January, 1),
			end:        date(2019, time.January, 31),
			wantStarts: []string{"2019-01-01T00:00:00.000Z"},
			wantEnds:   []string{"2019-01-31T23:59:59.999Z"},
		},
		{
			name:  "spanning three months with partial edges",
			start: date(2023, time.January, 15),
			end:   date(2023, time.March, 10),
			wantStarts: []string{
				"2023-01-15T00:00:00.000Z",
				"2023-02-01T00:00:00.000Z",
				"2023-03-01T00:00:00.000Z",
			},
			wantEnds: []string{
				"2023-01-31T23:59:59.999Z",
				"2023-02-28T23:59:59.999Z",
				"2023-03-10T23:59:59.999Z",
			},
		},
		{
			name:       "single day",
			start:      date(2020, time.June, 5),
			end:        date(2020, time.June, 5),
			wantStarts: []string{"2020-06-05T00:00:00.000Z"},
			wantEnds:   []string{"2020-06-05T23:59:59.999Z"},
		},
		{
			name:  "crosses year boundary",
			start: date(2019, time.December, 20),
			end:   date(2020, time.January, 5),
			wantStarts: []string{
				"2019-12-20T00:00:00.000Z",
				"2020-01-01T00:00:00.000Z",
			},
			wantEnds: []string{
				"2019-12-31T23:59:59.999Z",
				"2020-01-05T23:59:59.999Z",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows := MonthlyWindows(tt.start, tt.end)
			require.Len(t, windows, len(tt.wantStarts))
			for i, w := range windows {
				assert.Equal(t, tt.wantStarts[i], w.StartParam())
				assert.Equal(t, tt.wantEnds[i], w.EndParam())
			}
		})
	}
}

func TestDateWindowKey(t *testing.T) {
	w := DateWindow{Start: date(2019, time.January, 15), End: date(2019, time.January, 31)}
	assert.Equal(t, "2019-01", w.Key())
}

func TestDateWindowContains(t *testing.T) {
	w := MonthlyWindows(date(2019, time.January, 1), date(2019, time.January, 31))[0]
	assert.True(t, w.Contains(date(2019, time.January, 1)))
	assert.True(t, w.Contains(time.Date(2019, time.January, 31, 23, 0, 0, 0, time.UTC)))
	assert.False(t, w.Contains(date(2019, time.February, 1)))
}

func TestMissionCollection(t *testing.T) {
	assert.Equal(t, "SENTINEL-1", MissionS1.Collection())
	assert.Equal(t, "SENTINEL-2", MissionS2.Collection())
	assert.Empty(t, Mission("S3").Collection())
	assert.False(t, Mission("S3").Valid())
}

func TestSearchUnitPolygonWKT(t *testing.T) {
	u := SearchUnit{
		ID:        "valley",
		Footprint: []string{"-70.1 -33.2", "-70.0 -33.2", "-70.0 -33.1", "-70.1 -33.2"},
	}
	assert.True(t, u.IsFootprint())
	assert.Equal(t, "-70.1 -33.2, -70.0 -33.2, -70.0 -33.1, -70.1 -33.2", u.PolygonWKT())

	tile := SearchUnit{ID: "T19HCC"}
	assert.False(t, tile.IsFootprint())
}
