package model

import "net/url"

// ManifestEntry is one component file of a product: a band image, a
// polarization measurement, an annotation file, or the manifest itself.
type ManifestEntry struct {
	// Component is the requested component the entry satisfies
	// (band name, polarization, or "manifest").
	Component string
	// RelPath is the file's path inside the product's archive tree,
	// e.g. GRANULE/.../IMG_DATA/R10m/..._B02_10m.jp2.
	RelPath string
	// URL is the resolved remote download URL for the file.
	URL *url.URL
	// ContentType is the expected payload type, when known.
	ContentType string
	// Size is the expected file size in bytes, or 0 when unknown.
	Size int64
	// Unavailable marks a requested component that does not exist on
	// this product. Such entries are reported, never downloaded.
	Unavailable bool
}

// FileManifest is the ordered set of component files to fetch for one
// selected product.
type FileManifest struct {
	Product SelectedProduct
	Entries []ManifestEntry
}

// Downloadable returns the entries that exist on the product.
func (m FileManifest) Downloadable() []ManifestEntry {
	out := make([]ManifestEntry, 0, len(m.Entries))
	for _, e := range m.Entries {
		if !e.Unavailable {
			out = append(out, e)
		}
	}
	return out
}

// UnavailableComponents returns the requested components missing from the
// product.
func (m FileManifest) UnavailableComponents() []string {
	var out []string
	for _, e := range m.Entries {
		if e.Unavailable {
			out = append(out, e.Component)
		}
	}
	return out
}
