package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRecordBaseline(t *testing.T) {
	tests := []struct {
		name    string
		product string
		want    string
	}{
		{
			name:    "L2A product with baseline",
			product: "S2A_MSIL2A_20190107T143751_N0211_R096_T19HCC_20190107T165453.SAFE",
			want:    "2.11",
		},
		{
			name:    "newer baseline",
			product: "S2A_MSIL2A_20190107T143751_N0509_R096_T19HCC_20230615T101010.SAFE",
			want:    "5.9",
		},
		{
			name:    "no baseline segment",
			product: "S1A_IW_GRDH_1SDV_20190103T170131_20190103T170159_025316_02CD10_519D.SAFE",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ProductRecord{Name: tt.product}
			v := p.Baseline()
			if tt.want == "" {
				assert.Nil(t, v)
				return
			}
			require.NotNil(t, v)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestBaselineOrdering(t *testing.T) {
	older := ProductRecord{Name: "S2A_MSIL2A_20190107T143751_N0211_R096_T19HCC_20190107T165453.SAFE"}
	newer := ProductRecord{Name: "S2A_MSIL2A_20190107T143751_N0509_R096_T19HCC_20230615T101010.SAFE"}
	assert.True(t, newer.Baseline().GreaterThan(older.Baseline()))
}

func TestProductRecordLevel(t *testing.T) {
	l2a := ProductRecord{Name: "S2A_MSIL2A_20190107T143751_N0211_R096_T19HCC_20190107T165453.SAFE"}
	assert.Equal(t, "L2A", l2a.Level())

	l1c := ProductRecord{Name: "S2B_MSIL1C_20190105T143749_N0207_R096_T19HCC_20190105T162000.SAFE"}
	assert.Equal(t, "L1C", l1c.Level())

	s1 := ProductRecord{Name: "S1A_IW_GRDH_1SDV_20190103T170131_20190103T170159_025316_02CD10_519D.SAFE"}
	assert.Empty(t, s1.Level())
}

func TestProductRecordType(t *testing.T) {
	grd := ProductRecord{Name: "S1A_IW_GRDH_1SDV_20190103T170131_20190103T170159_025316_02CD10_519D.SAFE"}
	assert.Equal(t, "GRDH", grd.Type())

	slc := ProductRecord{Name: "S1B_IW_SLC__1SDV_20190104T101010_20190104T101038_014316_01AD10_AB9D.SAFE"}
	assert.Equal(t, "SLC", slc.Type())

	s2 := ProductRecord{Name: "S2A_MSIL2A_20190107T143751_N0211_R096_T19HCC_20190107T165453.SAFE"}
	assert.Empty(t, s2.Type())
}

func TestGroupKey(t *testing.T) {
	p := ProductRecord{
		Unit:   SearchUnit{ID: "T19HCC"},
		Window: MonthlyWindows(date(2019, 1, 1), date(2019, 1, 31))[0],
	}
	assert.Equal(t, "T19HCC/2019-01", p.GroupKey())
}
