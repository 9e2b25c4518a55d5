package sources

// Natural Earth admin 0 country borders, GeoJSON.
const (
	NaturalEarthCountriesURL   = "https://raw.githubusercontent.com/nvkelso/natural-earth-vector/master/geojson/ne_110m_admin_0_countries.geojson"
	NaturalEarthCountries50URL = "https://raw.githubusercontent.com/nvkelso/natural-earth-vector/master/geojson/ne_50m_admin_0_countries.geojson"
)
