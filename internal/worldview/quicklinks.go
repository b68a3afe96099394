package worldview

// QuickLinks are offered for an empty place search.
var QuickLinks = []GeoResult{
	// A wide box so the altitude formula reaches its 18 000 km ceiling.
	quickLink("Global Orbit", "Global Orbit", "", "orbit", 15, 0, [4]float64{-80, 80, -80, 80}),
	quickLink("New York City, USA", "New York City", "USA", "city", 40.7128, -74.006, [4]float64{40.5, 40.9, -74.3, -73.7}),
	quickLink("London, UK", "London", "UK", "city", 51.5074, -0.1278, [4]float64{51.28, 51.69, -0.51, 0.33}),
	quickLink("Dubai, UAE", "Dubai", "UAE", "city", 25.2048, 55.2708, [4]float64{24.8, 25.4, 54.9, 55.6}),
	quickLink("Tokyo, Japan", "Tokyo", "Japan", "city", 35.6762, 139.6503, [4]float64{35.5, 35.9, 139.4, 139.9}),
	quickLink("Washington DC, USA", "Washington DC", "USA", "city", 38.9072, -77.0369, [4]float64{38.79, 39.0, -77.12, -76.9}),
	quickLink("Paris, France", "Paris", "France", "city", 48.8566, 2.3522, [4]float64{48.81, 48.9, 2.22, 2.47}),
	quickLink("Beijing, China", "Beijing", "China", "city", 39.9042, 116.4074, [4]float64{39.6, 40.2, 116.0, 116.8}),
	quickLink("Moscow, Russia", "Moscow", "Russia", "city", 55.7558, 37.6176, [4]float64{55.49, 56.0, 37.32, 37.91}),
	quickLink("Sydney, Australia", "Sydney", "Australia", "city", -33.8688, 151.2093, [4]float64{-34.17, -33.58, 150.65, 151.63}),
}

func quickLink(display, short, country, typ string, lat, lon float64, box [4]float64) GeoResult {
	return GeoResult{
		DisplayName:  display,
		ShortName:    short,
		Country:      country,
		Type:         typ,
		Lat:          lat,
		Lon:          lon,
		BoundingBox:  &box,
		ViewAltitude: AltitudeForBBox(&box),
	}
}
