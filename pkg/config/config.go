// Package config loads the globe Setting from defaults and an optional
// JSON, YAML or TOML file.
package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/spf13/viper"
	"github.com/sudorandom/globe-lines/pkg/curve"
	"github.com/sudorandom/globe-lines/pkg/geo"
)

var (
	ErrInvalidRadius    = errors.New("earthAttr.radius must be positive")
	ErrInvalidEarth     = errors.New("invalid earthAttr")
	ErrInvalidFlyLine   = errors.New("invalid flyLineAttr")
	ErrInvalidCurveType = errors.New("flyLineAttr.curveType must be greatCircle or bezier")
	ErrInvalidPoint     = errors.New("invalid pointCloudAttr")
	ErrInvalidWave      = errors.New("invalid waveAttr")
	ErrInvalidCountries = errors.New("invalid countriesAttr")
	ErrInvalidCamera    = errors.New("invalid cameraAttr")
)

const (
	DefaultHeightFactor = 1.3
	DefaultArcAlt       = 0.1
)

// Arc is one fly line between two coordinates.
type Arc struct {
	StartLat     float64 `json:"startLat" mapstructure:"startLat"`
	StartLng     float64 `json:"startLng" mapstructure:"startLng"`
	EndLat       float64 `json:"endLat" mapstructure:"endLat"`
	EndLng       float64 `json:"endLng" mapstructure:"endLng"`
	Color        string  `json:"color" mapstructure:"color"`
	HeightFactor float64 `json:"heightFactor" mapstructure:"heightFactor"`
	ArcAlt       float64 `json:"arcAlt" mapstructure:"arcAlt"`
	Name         string  `json:"name" mapstructure:"name"`
}

func (a Arc) Start() geo.GeoPoint { return geo.GeoPoint{Lat: a.StartLat, Lng: a.StartLng} }
func (a Arc) End() geo.GeoPoint   { return geo.GeoPoint{Lat: a.EndLat, Lng: a.EndLng} }

// Peak is the great circle height multiplier, defaulted when unset.
func (a Arc) Peak() float64 {
	if a.HeightFactor > 0 {
		return a.HeightFactor
	}
	return DefaultHeightFactor
}

// Altitude is the Bezier apex altitude fraction, defaulted when unset.
func (a Arc) Altitude() float64 {
	if a.ArcAlt > 0 {
		return a.ArcAlt
	}
	return DefaultArcAlt
}

// Point is one location of the point cloud.
type Point struct {
	Lat    float64 `json:"lat" mapstructure:"lat"`
	Lng    float64 `json:"lng" mapstructure:"lng"`
	Color  string  `json:"color" mapstructure:"color"`
	Size   float64 `json:"size" mapstructure:"size"`
	Name   string  `json:"name" mapstructure:"name"`
	Region string  `json:"region" mapstructure:"region"`
}

func (p Point) LatLng() (float64, float64) { return p.Lat, p.Lng }

type MarkerData struct {
	Name string  `json:"name" mapstructure:"name"`
	Lat  float64 `json:"lat" mapstructure:"lat"`
	Lng  float64 `json:"lng" mapstructure:"lng"`
}

type EarthAttr struct {
	Radius     float64 `mapstructure:"radius"`
	Segments   int     `mapstructure:"segments"`
	GlobeColor string  `mapstructure:"globeColor"`
}

type AtmosphereAttr struct {
	ShowAtmosphere     bool    `mapstructure:"showAtmosphere"`
	AtmosphereColor    string  `mapstructure:"atmosphereColor"`
	AtmosphereAltitude float64 `mapstructure:"atmosphereAltitude"`
}

type FlyLineAttr struct {
	FlyLineOpacity     float64      `mapstructure:"flyLineOpacity"`
	FlyingLineLength   float64      `mapstructure:"flyingLineLength"`
	FlowSpeed          float64      `mapstructure:"flowSpeed"`
	GrowthDuration     float64      `mapstructure:"growthDuration"`
	ShowFlyingParticle bool         `mapstructure:"showFlyingParticle"`
	ParticleSize       float64      `mapstructure:"particleSize"`
	CurveType          curve.Family `mapstructure:"curveType"`
	Segments           int          `mapstructure:"segments"`
	FlyLineData        []Arc        `mapstructure:"flyLineData"`
}

type PointCloudAttr struct {
	PointSize  float64 `mapstructure:"pointSize"`
	PointColor string  `mapstructure:"pointColor"`
	PointsData []Point `mapstructure:"pointsData"`
}

type CountriesAttr struct {
	PolygonColor   string  `mapstructure:"polygonColor"`
	PolygonOpacity float64 `mapstructure:"polygonOpacity"`
	Altitude       float64 `mapstructure:"altitude"`
	Source         string  `mapstructure:"source"`
}

type WaveAttr struct {
	WaveCount      int     `mapstructure:"waveCount"`
	WaveDuration   float64 `mapstructure:"waveDuration"`
	WaveThickness  float64 `mapstructure:"waveThickness"`
	MaxRings       float64 `mapstructure:"maxRings"`
	WavePointScale float64 `mapstructure:"wavePointScale"`
}

type MarkerAttr struct {
	LabelOffset float64      `mapstructure:"labelOffset"`
	Markers     []MarkerData `mapstructure:"markers"`
}

type CameraAttr struct {
	Distance        float64 `mapstructure:"distance"`
	Fov             float64 `mapstructure:"fov"`
	AutoRotate      bool    `mapstructure:"autoRotate"`
	AutoRotateSpeed float64 `mapstructure:"autoRotateSpeed"`
}

type FeedAttr struct {
	URL string `mapstructure:"url"`
}

// Setting is everything the globe reads at construction.
type Setting struct {
	EarthAttr      EarthAttr      `mapstructure:"earthAttr"`
	AtmosphereAttr AtmosphereAttr `mapstructure:"atmosphereAttr"`
	FlyLineAttr    FlyLineAttr    `mapstructure:"flyLineAttr"`
	PointCloudAttr PointCloudAttr `mapstructure:"pointCloudAttr"`
	CountriesAttr  CountriesAttr  `mapstructure:"countriesAttr"`
	WaveAttr       WaveAttr       `mapstructure:"waveAttr"`
	MarkerAttr     MarkerAttr     `mapstructure:"markerAttr"`
	CameraAttr     CameraAttr     `mapstructure:"cameraAttr"`
	FeedAttr       FeedAttr       `mapstructure:"feedAttr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("earthAttr.radius", 100)
	v.SetDefault("earthAttr.segments", 64)
	v.SetDefault("earthAttr.globeColor", "#26398c")

	v.SetDefault("atmosphereAttr.showAtmosphere", true)
	v.SetDefault("atmosphereAttr.atmosphereColor", "#a6e6ff")
	v.SetDefault("atmosphereAttr.atmosphereAltitude", 0.05)

	v.SetDefault("flyLineAttr.flyLineOpacity", 0.5)
	v.SetDefault("flyLineAttr.flyingLineLength", 0.2)
	v.SetDefault("flyLineAttr.flowSpeed", 4)
	v.SetDefault("flyLineAttr.growthDuration", 0.5)
	v.SetDefault("flyLineAttr.showFlyingParticle", true)
	v.SetDefault("flyLineAttr.particleSize", 0.5)
	v.SetDefault("flyLineAttr.curveType", string(curve.GreatCircleFamily))
	v.SetDefault("flyLineAttr.segments", 100)

	v.SetDefault("pointCloudAttr.pointSize", 0.5)
	v.SetDefault("pointCloudAttr.pointColor", "#7df9ff")

	v.SetDefault("countriesAttr.polygonColor", "#7df9ff")
	v.SetDefault("countriesAttr.polygonOpacity", 0.1)
	v.SetDefault("countriesAttr.altitude", 0.1)
	v.SetDefault("countriesAttr.source", "")

	v.SetDefault("waveAttr.waveCount", 6)
	v.SetDefault("waveAttr.waveDuration", 2)
	v.SetDefault("waveAttr.waveThickness", 0.05)
	v.SetDefault("waveAttr.maxRings", 1.5)
	v.SetDefault("waveAttr.wavePointScale", 1.0)

	v.SetDefault("markerAttr.labelOffset", 0)

	v.SetDefault("cameraAttr.distance", 350)
	v.SetDefault("cameraAttr.fov", 45)
	v.SetDefault("cameraAttr.autoRotate", true)
	v.SetDefault("cameraAttr.autoRotateSpeed", 0.5)

	v.SetDefault("feedAttr.url", "")
}

// Default returns the Setting with every default applied and no data.
func Default() *Setting {
	s, err := Load("")
	if err != nil {
		// unreachable: the defaults are valid
		panic(err)
	}
	return s
}

// Load reads path, when given, over the defaults and validates the result.
func Load(path string) (*Setting, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var s Setting
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func positive(f float64) bool { return f > 0 && !math.IsInf(f, 0) }

// Validate checks every numeric setting the geometry depends on.
func (s *Setting) Validate() error {
	if !positive(s.EarthAttr.Radius) {
		return fmt.Errorf("%w: %v", ErrInvalidRadius, s.EarthAttr.Radius)
	}
	if s.EarthAttr.Segments < 4 {
		return fmt.Errorf("%w: segments %d", ErrInvalidEarth, s.EarthAttr.Segments)
	}

	fl := s.FlyLineAttr
	if !positive(fl.FlyingLineLength) {
		return fmt.Errorf("%w: flyingLineLength %v", ErrInvalidFlyLine, fl.FlyingLineLength)
	}
	if !positive(fl.FlowSpeed) {
		return fmt.Errorf("%w: flowSpeed %v", ErrInvalidFlyLine, fl.FlowSpeed)
	}
	if !positive(fl.GrowthDuration) {
		return fmt.Errorf("%w: growthDuration %v", ErrInvalidFlyLine, fl.GrowthDuration)
	}
	if fl.Segments < 1 {
		return fmt.Errorf("%w: segments %d", ErrInvalidFlyLine, fl.Segments)
	}
	if !positive(fl.ParticleSize) {
		return fmt.Errorf("%w: particleSize %v", ErrInvalidFlyLine, fl.ParticleSize)
	}
	if fl.FlyLineOpacity < 0 || fl.FlyLineOpacity > 1 {
		return fmt.Errorf("%w: flyLineOpacity %v", ErrInvalidFlyLine, fl.FlyLineOpacity)
	}
	switch fl.CurveType {
	case curve.GreatCircleFamily, curve.BezierFamily, "":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCurveType, fl.CurveType)
	}

	if s.PointCloudAttr.PointSize < 0 {
		return fmt.Errorf("%w: pointSize %v", ErrInvalidPoint, s.PointCloudAttr.PointSize)
	}

	if s.CountriesAttr.PolygonOpacity < 0 || s.CountriesAttr.PolygonOpacity > 1 {
		return fmt.Errorf("%w: polygonOpacity %v", ErrInvalidCountries, s.CountriesAttr.PolygonOpacity)
	}
	if s.CountriesAttr.Altitude < 0 {
		return fmt.Errorf("%w: altitude %v", ErrInvalidCountries, s.CountriesAttr.Altitude)
	}

	w := s.WaveAttr
	if w.WaveCount < 0 || !positive(w.WaveDuration) || w.WaveThickness < 0 || w.WaveThickness > 1 ||
		w.MaxRings < 0 || w.WavePointScale < 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidWave, w)
	}

	c := s.CameraAttr
	if !positive(c.Distance) || c.Distance <= s.EarthAttr.Radius {
		return fmt.Errorf("%w: distance %v must exceed the radius", ErrInvalidCamera, c.Distance)
	}
	if !(c.Fov > 0 && c.Fov < 180) {
		return fmt.Errorf("%w: fov %v", ErrInvalidCamera, c.Fov)
	}
	return nil
}
