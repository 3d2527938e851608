// Package manifest determines the set of component files to fetch for a
// selected product and resolves their download URLs from the product's
// manifest.safe.
package manifest

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cperrin88/sentfetch/pkg/auth"
	pkgerrors "github.com/cperrin88/sentfetch/pkg/errors"
	"github.com/cperrin88/sentfetch/pkg/model"
)

// ManifestFileName is the archive skeleton file present in every product.
const ManifestFileName = "manifest.safe"

// Resolver fetches and expands product manifests into file manifests.
type Resolver struct {
	client      *http.Client
	downloadURL string
	auth        auth.TokenSource
	userAgent   string
}

// NewResolver creates a Resolver rooted at the download service's OData
// URL (e.g. https://download.example/odata/v1).
func NewResolver(downloadURL string, tokens auth.TokenSource, timeout time.Duration) *Resolver {
	return &Resolver{
		client:      &http.Client{Timeout: timeout},
		downloadURL: downloadURL,
		auth:        tokens,
		userAgent:   "sentfetch/1.0",
	}
}

// Resolve fetches the product's manifest.safe and expands the requested
// components into a file manifest. Requested components that do not exist
// on the product are kept as unavailable entries rather than failing the
// product.
func (r *Resolver) Resolve(ctx context.Context, product model.SelectedProduct, criteria model.Criteria) (model.FileManifest, error) {
	files, err := r.fetchManifest(ctx, product)
	if err != nil {
		return model.FileManifest{}, err
	}

	entries := []model.ManifestEntry{{
		Component:   "manifest",
		RelPath:     ManifestFileName,
		URL:         r.nodeURL(product, ManifestFileName),
		ContentType: "application/xml",
	}}

	switch criteria.Mission {
	case model.MissionS2:
		entries = append(entries, r.expandBands(product, criteria.BandSelection, files)...)
	case model.MissionS1:
		entries = append(entries, r.expandPolarizations(product, criteria.Polarizations, files)...)
	}

	return model.FileManifest{Product: product, Entries: entries}, nil
}

// ProductArchiveURL returns the download URL of the whole product archive.
func (r *Resolver) ProductArchiveURL(product model.SelectedProduct) *url.URL {
	u, _ := url.Parse(fmt.Sprintf("%s/Products(%s)/$value", r.downloadURL, product.ID))
	return u
}

// manifestFile is one data object listed in manifest.safe.
type manifestFile struct {
	RelPath  string
	MimeType string
	Size     int64
}

// expandBands matches each requested band against the product's IMG_DATA
// files. A band like B02_10m selects the R10m rendition of B02.
func (r *Resolver) expandBands(product model.SelectedProduct, bands []string, files []manifestFile) []model.ManifestEntry {
	var entries []model.ManifestEntry
	for _, band := range bands {
		found := false
		for _, f := range files {
			if !strings.Contains(f.RelPath, "IMG_DATA") || !strings.Contains(f.RelPath, band) {
				continue
			}
			entries = append(entries, r.entryFor(product, band, f))
			found = true
		}
		if !found {
			entries = append(entries, model.ManifestEntry{Component: band, Unavailable: true})
		}
	}
	return entries
}

// expandPolarizations selects the measurement, annotation and calibration
// files of each requested polarization. File names carry the polarization
// as a lowercase token, e.g. s1a-iw-grd-vv-...
func (r *Resolver) expandPolarizations(product model.SelectedProduct, polarizations []string, files []manifestFile) []model.ManifestEntry {
	var entries []model.ManifestEntry
	for _, pol := range polarizations {
		token := "-" + strings.ToLower(pol) + "-"
		found := false
		for _, f := range files {
			if !strings.Contains(f.RelPath, token) {
				continue
			}
			if !strings.HasPrefix(f.RelPath, "measurement/") && !strings.HasPrefix(f.RelPath, "annotation/") {
				continue
			}
			entries = append(entries, r.entryFor(product, pol, f))
			found = true
		}
		if !found {
			entries = append(entries, model.ManifestEntry{Component: pol, Unavailable: true})
		}
	}
	return entries
}

func (r *Resolver) entryFor(product model.SelectedProduct, component string, f manifestFile) model.ManifestEntry {
	return model.ManifestEntry{
		Component:   component,
		RelPath:     f.RelPath,
		URL:         r.nodeURL(product, f.RelPath),
		ContentType: f.MimeType,
		Size:        f.Size,
	}
}

// nodeURL builds the download URL for one file inside the product,
// chaining a Nodes(...) segment per path element.
func (r *Resolver) nodeURL(product model.SelectedProduct, relPath string) *url.URL {
	segments := strings.Split(relPath, "/")
	nodes := make([]string, 0, len(segments))
	for _, seg := range segments {
		nodes = append(nodes, fmt.Sprintf("Nodes(%s)", seg))
	}
	raw := fmt.Sprintf("%s/Products(%s)/Nodes(%s)/%s/$value",
		r.downloadURL, product.ID, product.Name, strings.Join(nodes, "/"))
	u, _ := url.Parse(raw)
	return u
}

// safeManifest mirrors the XFDU structure we consume from manifest.safe.
type safeManifest struct {
	DataObjects []struct {
		ByteStreams []struct {
			MimeType     string `xml:"mimeType,attr"`
			Size         int64  `xml:"size,attr"`
			FileLocation struct {
				Href string `xml:"href,attr"`
			} `xml:"fileLocation"`
		} `xml:"byteStream"`
	} `xml:"dataObjectSection>dataObject"`
}

// fetchManifest downloads and parses the product's manifest.safe.
func (r *Resolver) fetchManifest(ctx context.Context, product model.SelectedProduct) ([]manifestFile, error) {
	u := r.nodeURL(product, ManifestFileName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create manifest request")
	}
	req.Header.Set("User-Agent", r.userAgent)
	if r.auth != nil {
		if err := r.auth.Apply(ctx, req); err != nil {
			return nil, err
		}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to fetch manifest for %s", product.Name)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("manifest fetch for %s returned %d: %w",
			product.Name, resp.StatusCode, pkgerrors.ErrDownloadFailed)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read manifest body")
	}
	return parseManifest(data)
}

// parseManifest extracts the product's file list from manifest.safe XML.
func parseManifest(data []byte) ([]manifestFile, error) {
	var m safeManifest
	if err := xml.Unmarshal(data, &m); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to parse manifest.safe")
	}

	var files []manifestFile
	for _, obj := range m.DataObjects {
		for _, bs := range obj.ByteStreams {
			href := strings.TrimPrefix(bs.FileLocation.Href, "./")
			if href == "" {
				continue
			}
			files = append(files, manifestFile{
				RelPath:  href,
				MimeType: bs.MimeType,
				Size:     bs.Size,
			})
		}
	}
	return files, nil
}
