// Package utils downloads remote data files and keeps a local cache of them.
package utils

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var ErrNotFound = errors.New("file not found on server")

// DefaultCacheDir is where GetCachedReader keeps downloads.
const DefaultCacheDir = "data/cache"

type progressWriter struct {
	io.Writer
	total uint64
	last  uint64
	label string
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.total += uint64(n)
	if pw.total-pw.last > 5*1024*1024 { // Log every 5MB
		log.Printf("%s: Downloaded %d MB", pw.label, pw.total/1024/1024)
		pw.last = pw.total
	}
	return n, err
}

// DownloadFile downloads a file from a URL to a local path safely.
func DownloadFile(url, path string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Error closing response body: %v", err)
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	// Temp file in the target directory so the rename is atomic
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()
	defer func() {
		if err := os.Remove(tmpName); err != nil && !os.IsNotExist(err) {
			log.Printf("Error removing temp file %s: %v", tmpName, err)
		}
	}()

	pw := &progressWriter{Writer: tmpFile, label: filepath.Base(path)}
	if _, err := io.Copy(pw, resp.Body); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// GetCacheFileName returns the local file name for url. The sanitized
// logPrefix keeps files of different sources with the same base name apart.
func GetCacheFileName(url, logPrefix string) string {
	urlParts := strings.Split(url, "/")
	fileName := urlParts[len(urlParts)-1]

	sanitizedPrefix := strings.Trim(logPrefix, "[]")
	sanitizedPrefix = strings.ReplaceAll(sanitizedPrefix, " ", "_")
	if sanitizedPrefix != "" {
		fileName = sanitizedPrefix + "_" + fileName
	}
	return fileName
}

// Cache serves remote files from a local directory, downloading on a miss.
type Cache struct {
	Dir string
}

// Reader returns a reader for url, downloading it into the cache first if
// needed.
func (c Cache) Reader(url, logPrefix string) (io.ReadCloser, error) {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	localPath := filepath.Join(c.Dir, GetCacheFileName(url, logPrefix))

	if _, err := os.Stat(localPath); os.IsNotExist(err) {
		log.Printf("%s Downloading %s", logPrefix, url)
		if err := DownloadFile(url, localPath); err != nil {
			return nil, err
		}
	} else {
		log.Printf("%s Using cached file: %s", logPrefix, localPath)
	}
	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return f, nil
}

// GetCachedReader returns a reader for the given URL, using the default
// cache directory if enabled.
func GetCachedReader(url string, useCache bool, logPrefix string) (io.ReadCloser, error) {
	if useCache {
		return Cache{Dir: DefaultCacheDir}.Reader(url, logPrefix)
	}

	log.Printf("%s Streaming from %s", logPrefix, url)
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Error closing response body: %v", err)
		}
		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}
	return resp.Body, nil
}

// IsRemote reports whether source is an http(s) URL rather than a path.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
