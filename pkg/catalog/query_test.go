package catalog

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cperrin88/sentfetch/pkg/model"
)

func parseQuery(t *testing.T, rawURL string) url.Values {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u.Query()
}

func TestBuildQueryURL_Sentinel2(t *testing.T) {
	client := NewClient("https://catalog.example/odata/v1", nil, time.Second, WithPageSize(500))
	criteria := model.Criteria{
		Mission:        model.MissionS2,
		ProductLevel:   "L2A",
		RelativeOrbits: map[string]string{"T19HCC": "R096"},
	}
	unit := model.SearchUnit{ID: "T19HCC"}
	window := model.MonthlyWindows(
		time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2019, 1, 31, 0, 0, 0, 0, time.UTC))[0]

	q := parseQuery(t, client.buildQueryURL(criteria, unit, window))
	filter := q.Get("$filter")

	assert.Contains(t, filter, "Collection/Name eq 'SENTINEL-2'")
	assert.Contains(t, filter, "ContentDate/Start ge 2019-01-01T00:00:00.000Z")
	assert.Contains(t, filter, "ContentDate/End le 2019-01-31T23:59:59.999Z")
	assert.Contains(t, filter, "contains(Name, 'T19HCC')")
	assert.Contains(t, filter, "contains(Name, 'L2A')")
	assert.Contains(t, filter, "contains(Name, 'R096')")
	assert.Contains(t, filter, "Online eq true")
	assert.Equal(t, "500", q.Get("$top"))
	assert.Equal(t, "ContentDate/Start asc", q.Get("$orderby"))
	assert.Empty(t, q.Get("$expand"))
}

func TestBuildQueryURL_Sentinel2WithoutOrbit(t *testing.T) {
	client := NewClient("https://catalog.example/odata/v1", nil, time.Second)
	criteria := model.Criteria{Mission: model.MissionS2, ProductLevel: "L1C"}
	unit := model.SearchUnit{ID: "T19KCP"}
	window := model.MonthlyWindows(
		time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 6, 30, 0, 0, 0, 0, time.UTC))[0]

	filter := parseQuery(t, client.buildQueryURL(criteria, unit, window)).Get("$filter")
	assert.NotContains(t, filter, "'R0")
	assert.Contains(t, filter, "contains(Name, 'L1C')")
}

func TestBuildQueryURL_Sentinel1(t *testing.T) {
	client := NewClient("https://catalog.example/odata/v1", nil, time.Second)
	criteria := model.Criteria{
		Mission:        model.MissionS1,
		OrbitDirection: "DESCENDING",
		ProductType:    "GRDH",
	}
	unit := model.SearchUnit{
		ID:        "valley",
		Footprint: []string{"-70.1 -33.2", "-70.0 -33.2", "-70.0 -33.1", "-70.1 -33.2"},
	}
	window := model.MonthlyWindows(
		time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2019, 1, 31, 0, 0, 0, 0, time.UTC))[0]

	q := parseQuery(t, client.buildQueryURL(criteria, unit, window))
	filter := q.Get("$filter")

	assert.Contains(t, filter, "Collection/Name eq 'SENTINEL-1'")
	assert.Contains(t, filter, "OData.CSC.Intersects(area=geography'SRID=4326;POLYGON((-70.1 -33.2, -70.0 -33.2, -70.0 -33.1, -70.1 -33.2))')")
	assert.Contains(t, filter, "att/OData.CSC.StringAttribute/Value eq 'DESCENDING'")
	assert.Contains(t, filter, "contains(Name, 'GRDH')")
	assert.Contains(t, filter, "not contains(Name, 'COG')")
	assert.Equal(t, "Attributes", q.Get("$expand"))
}
