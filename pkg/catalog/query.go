package catalog

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/cperrin88/sentfetch/pkg/model"
)

// buildQueryURL translates one (unit, window) search into an OData
// Products query URL.
func (c *Client) buildQueryURL(criteria model.Criteria, unit model.SearchUnit, window model.DateWindow) string {
	clauses := []string{
		fmt.Sprintf("Collection/Name eq '%s'", criteria.Mission.Collection()),
		fmt.Sprintf("ContentDate/Start ge %s", window.StartParam()),
		fmt.Sprintf("ContentDate/End le %s", window.EndParam()),
	}

	switch criteria.Mission {
	case model.MissionS2:
		clauses = append(clauses, fmt.Sprintf("contains(Name, '%s')", unit.ID))
		if criteria.ProductLevel != "" {
			clauses = append(clauses, fmt.Sprintf("contains(Name, '%s')", criteria.ProductLevel))
		}
		if orbit := criteria.RelativeOrbit(unit.ID); orbit != "" {
			clauses = append(clauses, fmt.Sprintf("contains(Name, '%s')", orbit))
		}
	case model.MissionS1:
		clauses = append(clauses,
			fmt.Sprintf("OData.CSC.Intersects(area=geography'SRID=4326;POLYGON((%s))')", unit.PolygonWKT()))
		if criteria.OrbitDirection != "" {
			clauses = append(clauses, fmt.Sprintf(
				"Attributes/OData.CSC.StringAttribute/any(att:att/Name eq 'orbitDirection' and att/OData.CSC.StringAttribute/Value eq '%s')",
				criteria.OrbitDirection))
		}
		if criteria.ProductType != "" {
			clauses = append(clauses, fmt.Sprintf("contains(Name, '%s')", criteria.ProductType))
		}
		// COG renditions duplicate the SAFE products; skip them.
		clauses = append(clauses, "not contains(Name, 'COG')")
	}

	clauses = append(clauses, "Online eq true")

	params := url.Values{}
	params.Set("$filter", strings.Join(clauses, " and "))
	params.Set("$orderby", "ContentDate/Start asc")
	params.Set("$top", fmt.Sprintf("%d", c.pageSize))
	if criteria.Mission == model.MissionS1 {
		// Attribute values carry the orbit direction used in selection.
		params.Set("$expand", "Attributes")
	}

	return c.baseURL + "/Products?" + params.Encode()
}
