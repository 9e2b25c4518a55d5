package viewer

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

func (v *Viewer) captureFrame(img *ebiten.Image, suffix string, timestamp time.Time) {
	if v.CaptureDir == "" {
		return
	}
	if err := os.MkdirAll(v.CaptureDir, 0o755); err != nil {
		log.Printf("[CAPTURE] Error creating capture directory: %v", err)
		return
	}

	path := filepath.Join(v.CaptureDir, captureName(timestamp, suffix))

	// Copy the pixels now; the encode runs after the frame is reused.
	rgba := image.NewRGBA(img.Bounds())
	img.ReadPixels(rgba.Pix)

	go func() {
		if err := writePNG(path, rgba); err != nil {
			log.Printf("[CAPTURE] %v", err)
			return
		}
		log.Printf("[CAPTURE] Captured frame: %s", path)
	}()
}

func captureName(timestamp time.Time, suffix string) string {
	return fmt.Sprintf("globe-%s-%s.png", timestamp.Format("20060102-150405"), suffix)
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create capture file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close capture file: %w", cerr)
		}
	}()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode capture: %w", err)
	}
	return nil
}
