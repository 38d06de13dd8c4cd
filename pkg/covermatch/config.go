package covermatch

import "time"

// Config holds everything a Pipeline needs: the four collaborators, the
// reference library, a logger, and per-stage timeouts.
type Config struct {
	Downloader  Downloader
	Extractor   FeatureExtractor
	Transcriber Transcriber
	Library     *Library
	Logger      Logger

	DownloadTimeout   time.Duration
	ExtractTimeout    time.Duration
	TranscribeTimeout time.Duration
	MatchTimeout      time.Duration
}

type Option func(*Config)

func WithDownloader(d Downloader) Option {
	return func(c *Config) {
		c.Downloader = d
	}
}

func WithExtractor(e FeatureExtractor) Option {
	return func(c *Config) {
		c.Extractor = e
	}
}

func WithTranscriber(t Transcriber) Option {
	return func(c *Config) {
		c.Transcriber = t
	}
}

func WithLibrary(l *Library) Option {
	return func(c *Config) {
		c.Library = l
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStageTimeouts(download, extract, transcribe, match time.Duration) Option {
	return func(c *Config) {
		c.DownloadTimeout = download
		c.ExtractTimeout = extract
		c.TranscribeTimeout = transcribe
		c.MatchTimeout = match
	}
}

func defaultConfig() *Config {
	return &Config{
		DownloadTimeout:   5 * time.Minute,
		ExtractTimeout:    2 * time.Minute,
		TranscribeTimeout: 2 * time.Minute,
		MatchTimeout:      30 * time.Second,
	}
}
