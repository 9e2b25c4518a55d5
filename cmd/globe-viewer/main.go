package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/hajimehoshi/ebiten/v2"
	_ "github.com/silbinarywolf/preferdiscretegpu"
	"github.com/sudorandom/globe-lines/pkg/config"
	"github.com/sudorandom/globe-lines/pkg/feed"
	"github.com/sudorandom/globe-lines/pkg/globe"
	"github.com/sudorandom/globe-lines/pkg/scene"
	"github.com/sudorandom/globe-lines/pkg/sources"
	"github.com/sudorandom/globe-lines/pkg/viewer"
)

var cli struct {
	Config       string        `short:"c" type:"path" help:"Settings file (JSON, YAML or TOML). Built-in defaults when empty."`
	Data         string        `help:"Arc/point dataset, local path or URL. Replaces the arcs and points in the settings."`
	Countries    string        `help:"Country border GeoJSON, local path or URL. Overrides countriesAttr.source."`
	NoCountries  bool          `help:"Do not load country borders."`
	NoCache      bool          `help:"Stream remote files instead of caching them under data/cache."`
	Feed         string        `help:"Websocket URL of a live arc feed. Overrides feedAttr.url."`
	Width        int           `default:"1920" help:"Internal rendering width."`
	Height       int           `default:"1080" help:"Internal rendering height."`
	WindowWidth  int           `default:"1280" help:"Initial window width."`
	WindowHeight int           `default:"720" help:"Initial window height."`
	TPS          int           `name:"tps" default:"60" help:"Ticks per second (engine updates)."`
	CaptureDir   string        `type:"path" help:"Directory for PNG frame captures (P key)."`
	CaptureEvery time.Duration `help:"Also capture a frame on this interval."`
	AudioDir     string        `type:"path" help:"Play MP3 files from this directory in the background."`
}

func loadSetting() *config.Setting {
	if cli.Config == "" {
		return config.Default()
	}
	s, err := config.Load(cli.Config)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	return s
}

func main() {
	kong.Parse(&cli,
		kong.Name("globe-viewer"),
		kong.Description("Interactive globe with animated fly lines, points and markers."),
		kong.UsageOnError(),
	)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	setting := loadSetting()
	if cli.Data != "" {
		ds, err := sources.LoadDataset(cli.Data, !cli.NoCache)
		if err != nil {
			log.Fatalf("Failed to load dataset: %v", err)
		}
		ds.Apply(setting)
	}

	g, err := globe.New(setting, &scene.Root{})
	if err != nil {
		log.Fatalf("Failed to build globe: %v", err)
	}

	if !cli.NoCountries {
		source := cli.Countries
		if source == "" {
			source = setting.CountriesAttr.Source
		}
		fc, err := sources.LoadCountries(source, !cli.NoCache)
		if err != nil {
			log.Printf("[BORDERS] Continuing without borders: %v", err)
		} else {
			g.SetCountries(fc)
		}
	}

	v := viewer.New(g, cli.Width, cli.Height)
	v.CaptureDir = cli.CaptureDir
	v.CaptureEvery = cli.CaptureEvery
	if cli.AudioDir != "" {
		v.Soundtrack = viewer.NewSoundtrack(cli.AudioDir)
		v.Soundtrack.Start()
	}
	defer v.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	feedURL := cli.Feed
	if feedURL == "" {
		feedURL = setting.FeedAttr.URL
	}
	if feedURL != "" {
		client := feed.New(feedURL, feed.DefaultBuffer)
		v.SetFeed(client.Arcs())
		go func() {
			if err := client.Run(ctx); err != nil && ctx.Err() == nil {
				log.Printf("[FEED] Stopped: %v", err)
			}
		}()
	}

	ebiten.SetTPS(cli.TPS)
	ebiten.SetWindowSize(cli.WindowWidth, cli.WindowHeight)
	ebiten.SetWindowTitle("Globe Lines")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(v); err != nil {
		log.Printf("Viewer exited: %v", err)
	}
}
