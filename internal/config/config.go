package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/worldview-aggregation/internal/logging"
	"github.com/i474232898/worldview-aggregation/internal/worldview"
)

// LayerConfig holds cache and refresh settings for one layer.
type LayerConfig struct {
	Enabled bool

	// TTL is how long a fetch is served before the next request refetches.
	TTL time.Duration

	// RefreshInterval drives background cache warming (0 = on demand only).
	RefreshInterval time.Duration

	// Limit truncates the layer after validity filtering (0 = unlimited).
	Limit int
}

type AppConfig struct {
	Port        string
	HTTPTimeout time.Duration

	LogLevel  string
	LogFormat string

	// MaxStale bounds how old data served after upstream failures may be
	// (0 = unbounded).
	MaxStale time.Duration

	Layers map[worldview.Layer]LayerConfig

	OpenSkyURL      string
	OpenSkyUsername string
	OpenSkyPassword string
	ADSBURL         string
	USGSFeedURL     string
	CelesTrakURL    string
	CelesTrakGroup  string

	TfLURL          string
	TfLAppKey       string
	NY511URL        string
	NY511APIKey     string
	OpenWebcamDBURL string
	OpenWebcamDBKey string
	CameraCatalog   string

	NominatimURL    string
	GeocoderAPIKey  string
	GeoCacheTTL     time.Duration
	GeoCacheEntries int

	StreamCacheTTL time.Duration

	SnapshotHosts    []string
	SnapshotTTL      time.Duration
	SnapshotEntries  int
	SnapshotMaxBytes int64
}

// Load reads configuration from environment with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logging.Debug().Err(err).Msg("no .env file loaded")
	}
	cfg := &AppConfig{}
	var err error

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getenvDefault("LOG_FORMAT", "json")

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.MaxStale, err = getenvDuration("STALE_MAX_AGE", "0"); err != nil {
		return nil, err
	}

	// Defaults follow the dashboard's polling cadence and upstream limits.
	defaults := map[worldview.Layer]struct {
		ttl, refresh string
		limit        int
	}{
		worldview.LayerFlights:     {"30s", "30s", 5000},
		worldview.LayerMilitary:    {"60s", "60s", 1000},
		worldview.LayerEarthquakes: {"5m", "5m", 2000},
		worldview.LayerSatellites:  {"2h", "2h", 3000}, // CelesTrak asks for at most one download per two hours
		worldview.LayerCCTV:        {"5m", "5m", 5000},
	}

	cfg.Layers = make(map[worldview.Layer]LayerConfig, len(defaults))
	for _, layer := range worldview.Layers {
		d := defaults[layer]
		prefix := strings.ToUpper(string(layer)) + "_"

		lc := LayerConfig{
			Enabled: getenvBool(prefix+"ENABLED", true),
			Limit:   getenvInt(prefix+"LIMIT", d.limit),
		}
		if lc.TTL, err = getenvDuration(prefix+"TTL", d.ttl); err != nil {
			return nil, err
		}
		if lc.RefreshInterval, err = getenvDuration(prefix+"REFRESH_INTERVAL", d.refresh); err != nil {
			return nil, err
		}
		if lc.TTL <= 0 {
			return nil, fmt.Errorf("invalid %sTTL: must be positive", prefix)
		}
		cfg.Layers[layer] = lc
	}

	cfg.OpenSkyURL = os.Getenv("OPENSKY_URL")
	cfg.OpenSkyUsername = os.Getenv("OPENSKY_USERNAME")
	cfg.OpenSkyPassword = os.Getenv("OPENSKY_PASSWORD")
	cfg.ADSBURL = os.Getenv("ADSB_URL")
	cfg.USGSFeedURL = os.Getenv("USGS_FEED_URL")
	cfg.CelesTrakURL = os.Getenv("CELESTRAK_URL")
	cfg.CelesTrakGroup = getenvDefault("CELESTRAK_GROUP", "active")

	cfg.TfLURL = os.Getenv("TFL_URL")
	cfg.TfLAppKey = os.Getenv("TFL_APP_KEY")
	cfg.NY511URL = os.Getenv("NY511_URL")
	cfg.NY511APIKey = os.Getenv("NY511_API_KEY")
	cfg.OpenWebcamDBURL = os.Getenv("OPENWEBCAMDB_URL")
	cfg.OpenWebcamDBKey = os.Getenv("OPENWEBCAMDB_API_KEY")
	cfg.CameraCatalog = os.Getenv("CCTV_CATALOG_FILE")

	cfg.NominatimURL = os.Getenv("NOMINATIM_URL")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	if cfg.GeoCacheTTL, err = getenvDuration("GEOSEARCH_CACHE_TTL", "24h"); err != nil {
		return nil, err
	}
	cfg.GeoCacheEntries = getenvInt("GEOSEARCH_CACHE_ENTRIES", 500)

	if cfg.StreamCacheTTL, err = getenvDuration("STREAM_CACHE_TTL", "10m"); err != nil {
		return nil, err
	}

	cfg.SnapshotHosts = splitList(getenvDefault("CCTV_SNAPSHOT_HOSTS",
		"s3-eu-west-1.amazonaws.com,tfl.gov.uk,511ny.org,nyctmc.org,openwebcamdb.com"))
	if cfg.SnapshotTTL, err = getenvDuration("CCTV_SNAPSHOT_TTL", "10s"); err != nil {
		return nil, err
	}
	cfg.SnapshotEntries = getenvInt("CCTV_SNAPSHOT_ENTRIES", 256)
	cfg.SnapshotMaxBytes = int64(getenvInt("CCTV_SNAPSHOT_MAX_BYTES", 5<<20))

	return cfg, nil
}

// RefreshIntervals returns the background refresh interval of enabled layers.
func (c *AppConfig) RefreshIntervals() map[worldview.Layer]time.Duration {
	out := make(map[worldview.Layer]time.Duration, len(c.Layers))
	for layer, lc := range c.Layers {
		if lc.Enabled && lc.RefreshInterval > 0 {
			out[layer] = lc.RefreshInterval
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
