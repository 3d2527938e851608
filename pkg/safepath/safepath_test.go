package safepath

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/cperrin88/sentfetch/pkg/errors"
	"github.com/cperrin88/sentfetch/pkg/model"
)

func selected(name string) model.SelectedProduct {
	return model.SelectedProduct{ProductRecord: model.ProductRecord{Name: name}}
}

func entry(relPath string) model.ManifestEntry {
	return model.ManifestEntry{Component: "B02_10m", RelPath: relPath}
}

func TestTargetPath(t *testing.T) {
	b := NewBuilder("/data/out")
	product := selected("S2A_MSIL2A_20230601T100031_N0509_R122_T33UVP_20230601T134349.SAFE")

	tests := []struct {
		name    string
		relPath string
		want    string
		wantErr error
	}{
		{
			name:    "band file under granule",
			relPath: "GRANULE/L2A_T33UVP/IMG_DATA/R10m/T33UVP_B02_10m.jp2",
			want: filepath.Join("/data/out",
				"S2A_MSIL2A_20230601T100031_N0509_R122_T33UVP_20230601T134349.SAFE",
				"GRANULE", "L2A_T33UVP", "IMG_DATA", "R10m", "T33UVP_B02_10m.jp2"),
		},
		{
			name:    "manifest at product root",
			relPath: "manifest.safe",
			want: filepath.Join("/data/out",
				"S2A_MSIL2A_20230601T100031_N0509_R122_T33UVP_20230601T134349.SAFE",
				"manifest.safe"),
		},
		{
			name:    "parent escape rejected",
			relPath: "../../etc/passwd",
			wantErr: pkgerrors.ErrInvalidPath,
		},
		{
			name:    "interior dotdot escaping the root rejected",
			relPath: "GRANULE/../../../etc/passwd",
			wantErr: pkgerrors.ErrInvalidPath,
		},
		{
			name:    "interior dotdot staying inside is allowed",
			relPath: "GRANULE/../manifest.safe",
			want: filepath.Join("/data/out",
				"S2A_MSIL2A_20230601T100031_N0509_R122_T33UVP_20230601T134349.SAFE",
				"manifest.safe"),
		},
		{
			name:    "absolute path rejected",
			relPath: "/etc/passwd",
			wantErr: pkgerrors.ErrInvalidPath,
		},
		{
			name:    "empty path rejected",
			relPath: "",
			wantErr: pkgerrors.ErrInvalidPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.TargetPath(product, entry(tt.relPath))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProductDirRejectsBadNames(t *testing.T) {
	b := NewBuilder("/data/out")
	for _, name := range []string{"", "..", ".", "a/b", `a\b`} {
		_, err := b.ProductDir(selected(name))
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidPath, "name %q", name)
	}
}

func TestArchivePath(t *testing.T) {
	b := NewBuilder("/data/out")
	got, err := b.ArchivePath(selected("S1A_IW_GRDH_1SDV_20230601T052941_20230601T053006_048761_05DCEB_3F6B.SAFE"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data/out",
		"S1A_IW_GRDH_1SDV_20230601T052941_20230601T053006_048761_05DCEB_3F6B.zip"), got)
}

