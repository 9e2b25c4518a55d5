// Package sources loads the data files the globe is drawn from: country
// borders and arc/point datasets, local or remote.
package sources

import (
	"fmt"
	"io"
	"log"
	"os"

	geojson "github.com/paulmach/go.geojson"
	"github.com/sudorandom/globe-lines/pkg/borders"
	"github.com/sudorandom/globe-lines/pkg/utils"
)

// Open returns a reader for a local path or an http(s) URL. Remote sources
// go through the download cache when useCache is set.
func Open(source string, useCache bool, logPrefix string) (io.ReadCloser, error) {
	if utils.IsRemote(source) {
		return utils.GetCachedReader(source, useCache, logPrefix)
	}
	return os.Open(source)
}

func readAll(source string, useCache bool, logPrefix string) ([]byte, error) {
	r, err := Open(source, useCache, logPrefix)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := r.Close(); err != nil {
			log.Printf("%s Error closing %s: %v", logPrefix, source, err)
		}
	}()
	return io.ReadAll(r)
}

// LoadCountries reads a country border FeatureCollection. An empty source
// falls back to the Natural Earth 1:110m countries.
func LoadCountries(source string, useCache bool) (*geojson.FeatureCollection, error) {
	if source == "" {
		source = NaturalEarthCountriesURL
	}
	data, err := readAll(source, useCache, "[BORDERS]")
	if err != nil {
		return nil, fmt.Errorf("failed to read borders: %w", err)
	}
	fc, err := borders.Parse(data)
	if err != nil {
		return nil, err
	}
	log.Printf("[BORDERS] Loaded %d features from %s", len(fc.Features), source)
	return fc, nil
}
