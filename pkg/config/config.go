// Package config provides configuration management for acquisition runs.
// It handles loading and validating the YAML run configuration and turning
// it into the search criteria the orchestrator consumes. The package
// provides sensible defaults for the catalog endpoints and network
// settings while allowing full customization through the config file.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cperrin88/sentfetch/pkg/errors"
	"github.com/cperrin88/sentfetch/pkg/model"
)

// Config represents one acquisition run configuration.
type Config struct {
	// Mission selects the product family: "s1" or "s2".
	Mission string `yaml:"mission"`

	// TileIDs lists the Sentinel-2 tiles to fetch (e.g. T33UVP).
	TileIDs []string `yaml:"tile_ids,omitempty"`

	// FootprintsPath points to a JSON file mapping footprint names to
	// polygon rings of "lon lat" pairs; used for Sentinel-1 searches.
	FootprintsPath string `yaml:"footprints_path,omitempty"`

	// RelativeOrbits optionally pins a relative orbit per tile
	// (e.g. T33UVP: R122).
	RelativeOrbits map[string]string `yaml:"relative_orbits,omitempty"`

	// InitialDate and LastDate bound the sensing period (YYYY-MM-DD).
	InitialDate string `yaml:"initial_date"`
	LastDate    string `yaml:"last_date"`

	// Sentinel-2 filters.
	ProductLevel  string   `yaml:"product_level,omitempty"` // L1C or L2A
	BandSelection []string `yaml:"band_selection,omitempty"`

	// Sentinel-1 filters.
	OrbitDirection   string   `yaml:"orbit_direction,omitempty"` // ASCENDING or DESCENDING
	ProductType      string   `yaml:"product_type,omitempty"`    // e.g. GRDH, SLC
	PolarizationMode []string `yaml:"polarization_mode,omitempty"`

	OutputDir string `yaml:"output_dir"`

	// DownloadMode is "files" (manifest-driven, default) or "archive"
	// (whole product zip).
	DownloadMode string `yaml:"download_mode,omitempty"`

	// AllowMultiple keeps every matching product per tile and month
	// instead of selecting a single one.
	AllowMultiple bool `yaml:"allow_multiple,omitempty"`

	Settings Settings `yaml:"settings"`
}

// Settings represents general application settings.
type Settings struct {
	// Network settings
	HTTPTimeout     time.Duration `yaml:"http_timeout"`
	DownloadTimeout time.Duration `yaml:"download_timeout"`
	MaxRetries      int           `yaml:"max_retries"`
	Concurrency     int           `yaml:"concurrency"`

	// UnitDelay is the politeness pause between search units.
	UnitDelay time.Duration `yaml:"unit_delay"`
	PageSize  int           `yaml:"page_size"`

	// Endpoints
	CatalogURL  string `yaml:"catalog_url,omitempty"`
	DownloadURL string `yaml:"download_url,omitempty"`
	TokenURL    string `yaml:"token_url,omitempty"`

	LogLevel string `yaml:"log_level"` // error, warn, info, debug
}

// Default configuration values.
const (
	// DefaultHTTPTimeout is the default timeout for catalog and token
	// requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultDownloadTimeout bounds a single file download end to end.
	DefaultDownloadTimeout = 15 * time.Minute

	// DefaultMaxRetries is the default attempt bound per request.
	DefaultMaxRetries = 3

	// DefaultConcurrency is the default download worker count.
	DefaultConcurrency = 3

	// DefaultUnitDelay is the default pause between search units.
	DefaultUnitDelay = 10 * time.Second

	// DefaultPageSize is the default catalog page size.
	DefaultPageSize = 100

	// DefaultCatalogURL is the product catalog root.
	DefaultCatalogURL = "https://catalogue.dataspace.copernicus.eu/odata/v1"

	// DefaultDownloadURL is the download service root.
	DefaultDownloadURL = "https://download.dataspace.copernicus.eu/odata/v1"

	// DefaultTokenURL is the identity token endpoint.
	DefaultTokenURL = "https://identity.dataspace.copernicus.eu/auth/realms/CDSE/protocol/openid-connect/token"

	dateFormat = "2006-01-02"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Mission:      "s2",
		ProductLevel: "L2A",
		DownloadMode: "files",
		OutputDir:    "data",
		Settings: Settings{
			HTTPTimeout:     DefaultHTTPTimeout,
			DownloadTimeout: DefaultDownloadTimeout,
			MaxRetries:      DefaultMaxRetries,
			Concurrency:     DefaultConcurrency,
			UnitDelay:       DefaultUnitDelay,
			PageSize:        DefaultPageSize,
			CatalogURL:      DefaultCatalogURL,
			DownloadURL:     DefaultDownloadURL,
			TokenURL:        DefaultTokenURL,
			LogLevel:        "info",
		},
	}
}

// LoadConfig loads configuration from a file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Mission == "" {
		c.Mission = def.Mission
	}
	if c.DownloadMode == "" {
		c.DownloadMode = def.DownloadMode
	}
	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
	if c.mission() == model.MissionS2 && c.ProductLevel == "" {
		c.ProductLevel = def.ProductLevel
	}
	if c.Settings.HTTPTimeout <= 0 {
		c.Settings.HTTPTimeout = def.Settings.HTTPTimeout
	}
	if c.Settings.DownloadTimeout <= 0 {
		c.Settings.DownloadTimeout = def.Settings.DownloadTimeout
	}
	if c.Settings.MaxRetries <= 0 {
		c.Settings.MaxRetries = def.Settings.MaxRetries
	}
	if c.Settings.Concurrency <= 0 {
		c.Settings.Concurrency = def.Settings.Concurrency
	}
	if c.Settings.UnitDelay < 0 {
		c.Settings.UnitDelay = def.Settings.UnitDelay
	}
	if c.Settings.PageSize <= 0 {
		c.Settings.PageSize = def.Settings.PageSize
	}
	if c.Settings.CatalogURL == "" {
		c.Settings.CatalogURL = def.Settings.CatalogURL
	}
	if c.Settings.DownloadURL == "" {
		c.Settings.DownloadURL = def.Settings.DownloadURL
	}
	if c.Settings.TokenURL == "" {
		c.Settings.TokenURL = def.Settings.TokenURL
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = def.Settings.LogLevel
	}
}

// Validate checks if the configuration is structurally usable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}

	mission := c.mission()
	if !mission.Valid() {
		return errors.Wrapf(errors.ErrConfigValidation, "unknown mission %q", c.Mission)
	}

	switch mission {
	case model.MissionS2:
		if len(c.TileIDs) == 0 {
			return errors.Wrap(errors.ErrConfigValidation, "tile_ids must not be empty for a Sentinel-2 run")
		}
		if c.ProductLevel != "L1C" && c.ProductLevel != "L2A" {
			return errors.Wrapf(errors.ErrConfigValidation, "unknown product_level %q", c.ProductLevel)
		}
	case model.MissionS1:
		if c.FootprintsPath == "" {
			return errors.Wrap(errors.ErrConfigValidation, "footprints_path is required for a Sentinel-1 run")
		}
		if d := c.OrbitDirection; d != "" && d != "ASCENDING" && d != "DESCENDING" {
			return errors.Wrapf(errors.ErrConfigValidation, "unknown orbit_direction %q", d)
		}
	}

	start, err := c.initialDate()
	if err != nil {
		return err
	}
	end, err := c.lastDate()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return errors.Wrapf(errors.ErrConfigValidation, "last_date %s precedes initial_date %s", c.LastDate, c.InitialDate)
	}

	if m := c.DownloadMode; m != "files" && m != "archive" {
		return errors.Wrapf(errors.ErrConfigValidation, "unknown download_mode %q", m)
	}

	return nil
}

// mission returns the normalized mission value; the config accepts the
// lowercase "s1"/"s2" spelling used on the command line.
func (c *Config) mission() model.Mission {
	return model.Mission(strings.ToUpper(c.Mission))
}

func (c *Config) initialDate() (time.Time, error) {
	return c.parseDate("initial_date", c.InitialDate)
}

func (c *Config) lastDate() (time.Time, error) {
	return c.parseDate("last_date", c.LastDate)
}

func (c *Config) parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.Wrapf(errors.ErrConfigValidation, "%s is required", field)
	}
	t, err := time.Parse(dateFormat, value)
	if err != nil {
		return time.Time{}, errors.Wrapf(errors.ErrConfigValidation, "%s: invalid date %q", field, value)
	}
	return t, nil
}

// ToCriteria converts the validated configuration into run criteria. For
// Sentinel-1 runs the footprints file is loaded here.
func (c *Config) ToCriteria() (model.Criteria, error) {
	start, err := c.initialDate()
	if err != nil {
		return model.Criteria{}, err
	}
	end, err := c.lastDate()
	if err != nil {
		return model.Criteria{}, err
	}

	criteria := model.Criteria{
		Mission:        c.mission(),
		InitialDate:    start,
		LastDate:       end,
		ProductLevel:   c.ProductLevel,
		BandSelection:  c.BandSelection,
		RelativeOrbits: c.RelativeOrbits,
		OrbitDirection: c.OrbitDirection,
		ProductType:    c.ProductType,
		Polarizations:  c.PolarizationMode,
		AllowMultiple:  c.AllowMultiple,
	}

	switch criteria.Mission {
	case model.MissionS2:
		criteria.Units = make([]model.SearchUnit, 0, len(c.TileIDs))
		for _, tile := range c.TileIDs {
			criteria.Units = append(criteria.Units, model.SearchUnit{ID: strings.TrimSpace(tile)})
		}
	case model.MissionS1:
		units, err := LoadFootprints(c.FootprintsPath)
		if err != nil {
			return model.Criteria{}, err
		}
		criteria.Units = units
	}

	if len(criteria.Units) == 0 {
		return model.Criteria{}, fmt.Errorf("%w: no search units", errors.ErrConfigValidation)
	}

	return criteria, nil
}
