package viewer

import (
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dhowden/tag"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/go-mp3"
)

const (
	sampleRate      = 44100
	defaultFade     = 5 * time.Second
	soundtrackRetry = 5 * time.Second
)

// Track is the song currently playing.
type Track struct {
	Song, Artist string

	// Album is the tag album, or the parent directory when untagged.
	Album string
}

func (t Track) String() string {
	if t.Artist == "" {
		return t.Song
	}
	return t.Song + " - " + t.Artist
}

// Soundtrack loops random MP3 files from Dir behind the globe, fading each
// track in and out.
type Soundtrack struct {
	Dir  string
	Fade time.Duration

	ctx      *audio.Context
	mu       sync.Mutex
	current  Track
	started  bool
	stopping bool
	stop     chan struct{}
	stopped  chan struct{}
}

func NewSoundtrack(dir string) *Soundtrack {
	return &Soundtrack{
		Dir:     dir,
		Fade:    defaultFade,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (s *Soundtrack) Current() Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Soundtrack) isStopping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopping
}

// Shutdown fades out the current track and waits for playback to end.
func (s *Soundtrack) Shutdown() {
	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		return
	}
	s.stopping = true
	started := s.started
	s.mu.Unlock()
	if !started {
		return
	}

	log.Println("[AUDIO] Shutting down with fade-out...")
	close(s.stop)
	<-s.stopped
	log.Println("[AUDIO] Stopped.")
}

func (s *Soundtrack) wait(d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-s.stop:
		return false
	}
}

func (s *Soundtrack) Start() {
	s.mu.Lock()
	if s.started || s.stopping {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		for !s.isStopping() {
			tracks, err := findTracks(s.Dir)
			if err != nil || len(tracks) == 0 {
				if err != nil {
					log.Printf("[AUDIO] Failed to read audio directory: %v", err)
				} else {
					log.Printf("[AUDIO] No MP3 files found in %s", s.Dir)
				}
				if !s.wait(soundtrackRetry) {
					return
				}
				continue
			}

			path := tracks[rand.Intn(len(tracks))]
			if err := s.play(path); err != nil {
				log.Printf("[AUDIO] Failed to play track %s: %v", path, err)
				if !s.wait(soundtrackRetry) {
					return
				}
			}
		}
	}()
}

// findTracks lists every .mp3 below dir.
func findTracks(dir string) ([]string, error) {
	var tracks []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(strings.ToLower(info.Name()), ".mp3") {
			tracks = append(tracks, path)
		}
		return nil
	})
	return tracks, err
}

// trackInfo reads the ID3 tags of r, falling back to an "Artist - Song"
// file name and the parent directory.
func trackInfo(root, path string, r io.ReadSeeker) Track {
	var t Track
	if m, err := tag.ReadFrom(r); err == nil {
		t = Track{Song: m.Title(), Artist: m.Artist(), Album: m.Album()}
	}
	if t.Song == "" {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		t.Song = name
		if parts := strings.SplitN(name, " - ", 2); len(parts) == 2 {
			t.Artist, t.Song = parts[0], parts[1]
		}
	}
	if t.Album == "" {
		if parent := filepath.Dir(path); parent != filepath.Clean(root) && parent != "." {
			t.Album = filepath.Base(parent)
		}
	}
	return t
}

// fadeVolume is the gain for a track with remaining playtime left. Once
// stopping, a second fade runs from the stop request.
func fadeVolume(remaining, sinceStop, fade time.Duration, stopping bool) float64 {
	vol := 1.0
	if fade <= 0 {
		fade = defaultFade
	}
	if remaining <= fade {
		vol = float64(remaining) / float64(fade)
	}
	if stopping {
		vol = min(vol, 1-float64(sinceStop)/float64(fade))
	}
	return max(0, vol)
}

func (s *Soundtrack) play(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	t := trackInfo(s.Dir, path, f)
	s.mu.Lock()
	s.current = t
	s.mu.Unlock()

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	d, err := mp3.NewDecoder(f)
	if err != nil {
		return err
	}

	if s.ctx == nil {
		s.ctx = audio.NewContext(sampleRate)
	}
	player, err := s.ctx.NewPlayer(d)
	if err != nil {
		return err
	}
	defer func() { _ = player.Close() }()
	player.Play()
	log.Printf("[AUDIO] Playing: %s", t)

	// 4 bytes per stereo 16-bit frame.
	duration := time.Duration(d.Length()) * time.Second / time.Duration(d.SampleRate()*4)
	start := time.Now()
	var stoppingAt time.Time
	for player.IsPlaying() {
		stopping := s.isStopping()
		if stopping && stoppingAt.IsZero() {
			stoppingAt = time.Now()
		}
		remaining := duration - time.Since(start)
		vol := fadeVolume(remaining, time.Since(stoppingAt), s.Fade, stopping)
		player.SetVolume(vol)
		if remaining <= 0 || (stopping && vol <= 0) {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	return nil
}
