package main

import (
	"net/http"

	"github.com/i474232898/worldview-aggregation/internal/config"
	"github.com/i474232898/worldview-aggregation/internal/logging"
	"github.com/i474232898/worldview-aggregation/internal/store"
	"github.com/i474232898/worldview-aggregation/internal/worldview"
	"github.com/i474232898/worldview-aggregation/internal/worldview/providers"
)

// buildService wires providers, caches and lookups from configuration.
func buildService(cfg *config.AppConfig) *worldview.Service {
	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	opts := func(layer worldview.Layer) worldview.FeedOptions {
		lc := cfg.Layers[layer]
		return worldview.FeedOptions{
			TTL:      lc.TTL,
			MaxStale: cfg.MaxStale,
			Timeout:  2 * cfg.HTTPTimeout,
			Limit:    lc.Limit,
		}
	}
	enabled := func(layer worldview.Layer) bool { return cfg.Layers[layer].Enabled }

	var feeds worldview.Feeds

	if enabled(worldview.LayerFlights) {
		feeds.Flights = worldview.NewFeed(worldview.LayerFlights, []worldview.Provider[worldview.FlightState]{
			providers.NewOpenSkyProvider(httpClient, cfg.OpenSkyURL, cfg.OpenSkyUsername, cfg.OpenSkyPassword, cfg.Layers[worldview.LayerFlights].Limit),
		}, opts(worldview.LayerFlights))
	}

	if enabled(worldview.LayerMilitary) {
		feeds.Military = worldview.NewFeed(worldview.LayerMilitary, []worldview.Provider[worldview.FlightState]{
			providers.NewADSBMilitaryProvider(httpClient, cfg.ADSBURL, cfg.Layers[worldview.LayerMilitary].Limit),
		}, opts(worldview.LayerMilitary))
	}

	if enabled(worldview.LayerEarthquakes) {
		feeds.Earthquakes = worldview.NewFeed(worldview.LayerEarthquakes, []worldview.Provider[worldview.EarthquakeFeature]{
			providers.NewUSGSProvider(httpClient, cfg.USGSFeedURL, cfg.Layers[worldview.LayerEarthquakes].Limit),
		}, opts(worldview.LayerEarthquakes))
	}

	if enabled(worldview.LayerSatellites) {
		feeds.Satellites = worldview.NewFeed(worldview.LayerSatellites, []worldview.Provider[worldview.SatelliteRecord]{
			providers.NewCelesTrakProvider(httpClient, cfg.CelesTrakURL, cfg.CelesTrakGroup, cfg.Layers[worldview.LayerSatellites].Limit),
		}, opts(worldview.LayerSatellites))
	}

	owdb := providers.NewOpenWebcamDBProvider(httpClient, cfg.OpenWebcamDBURL, cfg.OpenWebcamDBKey, 0)

	if enabled(worldview.LayerCCTV) {
		cams := []worldview.Provider[worldview.CCTVCamera]{
			providers.NewTfLJamCamProvider(httpClient, cfg.TfLURL, cfg.TfLAppKey),
		}
		// Keyed sources are only polled when credentials are present.
		if cfg.NY511APIKey != "" {
			cams = append(cams, providers.NewNY511Provider(httpClient, cfg.NY511URL, cfg.NY511APIKey))
		}
		if cfg.OpenWebcamDBKey != "" {
			cams = append(cams, owdb)
		}
		if cfg.CameraCatalog != "" {
			cams = append(cams, providers.NewCatalogProvider(cfg.CameraCatalog))
		}
		feeds.Cameras = worldview.NewFeed(worldview.LayerCCTV, cams, opts(worldview.LayerCCTV))
	}

	geocoders := []worldview.Geocoder{
		providers.NewNominatimGeocoder(httpClient, cfg.NominatimURL, ""),
	}
	if cfg.GeocoderAPIKey != "" {
		geocoders = append(geocoders, providers.NewGoogleGeocoder(cfg.GeocoderAPIKey))
	}

	svcOpts := []worldview.Option{
		worldview.WithLookupTimeout(cfg.HTTPTimeout),
		worldview.WithGeocoders(store.NewMemoryStore[[]worldview.GeoResult](cfg.GeoCacheTTL, cfg.GeoCacheEntries, 0), 8, geocoders...),
		worldview.WithSnapshots(
			providers.NewSnapshotProxy(httpClient, cfg.SnapshotHosts, cfg.SnapshotMaxBytes),
			store.NewMemoryStore[worldview.Snapshot](cfg.SnapshotTTL, cfg.SnapshotEntries, 0),
		),
	}
	if cfg.OpenWebcamDBKey != "" {
		svcOpts = append(svcOpts, worldview.WithStreamResolver(owdb,
			store.NewMemoryStore[worldview.StreamInfo](cfg.StreamCacheTTL, 1000, 0)))
	}

	logging.Info().
		Bool("flights", feeds.Flights != nil).
		Bool("military", feeds.Military != nil).
		Bool("earthquakes", feeds.Earthquakes != nil).
		Bool("satellites", feeds.Satellites != nil).
		Bool("cctv", feeds.Cameras != nil).
		Int("geocoders", len(geocoders)).
		Msg("service wired")

	return worldview.NewService(feeds, svcOpts...)
}
