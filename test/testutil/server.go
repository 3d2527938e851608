// Package testutil provides fake identity and OData services for
// integration tests: a token endpoint, a product catalog and the
// Nodes(...) download surface, all backed by in-memory fixtures.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
)

// Credentials accepted by the fake token endpoint.
const (
	TestUsername = "user"
	TestPassword = "pass"
	testToken    = "test-token"
)

// ProductFixture describes one product served by the fake services. Files
// maps manifest-relative paths to contents; a manifest.safe listing them
// is generated automatically.
type ProductFixture struct {
	ID               string
	Name             string
	ContentDateStart string
	PublicationDate  string
	Files            map[string]string
}

// FakeServices bundles the fake endpoints of one test run.
type FakeServices struct {
	TokenURL string
	ODataURL string

	products []ProductFixture
}

// NewFakeServices starts a token endpoint and an OData endpoint serving
// the given products. Both are shut down when the test finishes.
func NewFakeServices(t *testing.T, products ...ProductFixture) *FakeServices {
	t.Helper()
	fs := &FakeServices{products: products}

	tokenSrv := httptest.NewServer(http.HandlerFunc(fs.handleToken))
	t.Cleanup(tokenSrv.Close)
	fs.TokenURL = tokenSrv.URL

	odataSrv := httptest.NewServer(http.HandlerFunc(fs.handleOData))
	t.Cleanup(odataSrv.Close)
	fs.ODataURL = odataSrv.URL

	return fs
}

func (fs *FakeServices) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("username") != TestUsername || r.PostForm.Get("password") != TestPassword {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"access_token":%q,"expires_in":600}`, testToken)
}

func (fs *FakeServices) handleOData(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+testToken {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if r.URL.Path == "/Products" {
		fs.writeCatalogPage(w)
		return
	}

	for _, p := range fs.products {
		if !strings.Contains(r.URL.Path, fmt.Sprintf("Products(%s)", p.ID)) {
			continue
		}
		if strings.Contains(r.URL.Path, "manifest.safe") {
			w.Header().Set("Content-Type", "text/xml")
			_, _ = fmt.Fprint(w, manifestXML(p))
			return
		}
		for relPath, content := range p.Files {
			if strings.HasSuffix(r.URL.Path, fmt.Sprintf("Nodes(%s)/$value", baseName(relPath))) {
				_, _ = fmt.Fprint(w, content)
				return
			}
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (fs *FakeServices) writeCatalogPage(w http.ResponseWriter) {
	values := make([]string, 0, len(fs.products))
	for _, p := range fs.products {
		start := p.ContentDateStart
		if start == "" {
			start = "2023-06-01T10:00:31.000Z"
		}
		published := p.PublicationDate
		if published == "" {
			published = "2023-06-02T08:00:00.000Z"
		}
		values = append(values, fmt.Sprintf(`{
			"Id":%q,
			"Name":%q,
			"Online":true,
			"ContentDate":{"Start":%q,"End":%q},
			"PublicationDate":%q
		}`, p.ID, p.Name, start, start, published))
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"value":[%s]}`, strings.Join(values, ","))
}

// manifestXML renders an XFDU manifest listing the fixture's files.
func manifestXML(p ProductFixture) string {
	paths := make([]string, 0, len(p.Files))
	for relPath := range p.Files {
		paths = append(paths, relPath)
	}
	sort.Strings(paths)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<xfdu:XFDU xmlns:xfdu="urn:ccsds:schema:xfdu:1">` + "\n")
	b.WriteString("  <dataObjectSection>\n")
	for i, relPath := range paths {
		fmt.Fprintf(&b, "    <dataObject ID=\"data-object-%d\">\n", i)
		fmt.Fprintf(&b, "      <byteStream mimeType=\"application/octet-stream\" size=\"%d\">\n", len(p.Files[relPath]))
		fmt.Fprintf(&b, "        <fileLocation locatorType=\"URL\" href=\"./%s\"/>\n", relPath)
		b.WriteString("      </byteStream>\n")
		b.WriteString("    </dataObject>\n")
	}
	b.WriteString("  </dataObjectSection>\n")
	b.WriteString("</xfdu:XFDU>\n")
	return b.String()
}

func baseName(relPath string) string {
	if idx := strings.LastIndex(relPath, "/"); idx >= 0 {
		return relPath[idx+1:]
	}
	return relPath
}
