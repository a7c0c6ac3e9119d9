// Package config resolves runtime options from defaults, an optional
// subplay.yaml, SUBPLAY_* environment variables and command flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix = "SUBPLAY"
	FileName  = "subplay"
)

const (
	KeySettingsFile         = "settings.file"
	KeyHTTPAddr             = "http.addr"
	KeyFrameInterval        = "clock.frame_interval"
	KeyDiscoveryInterval    = "discovery.interval"
	KeyNavigationDelay      = "discovery.navigation_delay"
	KeyWatchPattern         = "discovery.watch_pattern"
	KeyBrowserHeadless      = "browser.headless"
	KeyVideoSelector        = "browser.video_selector"
	KeyContainerSelector    = "browser.container_selector"
	KeyAssJSURL             = "browser.assjs_url"
	KeyTerminalWidth        = "terminal.width"
	KeyTerminalHeight       = "terminal.height"
	KeyTranslateProvider    = "translate.provider"
	KeyTranslateModel       = "translate.model"
	KeyTranslateBatchSize   = "translate.batch_size"
	KeyTranslateConcurrency = "translate.concurrency"
)

type Config struct {
	SettingsFile  string
	HTTPAddr      string
	FrameInterval time.Duration

	Discovery Discovery
	Browser   Browser
	Terminal  Terminal
	Translate Translate
}

type Discovery struct {
	Interval        time.Duration
	NavigationDelay time.Duration
	WatchPattern    string
}

type Browser struct {
	Headless          bool
	VideoSelector     string
	ContainerSelector string
	AssJSURL          string
}

type Terminal struct {
	Width  int
	Height int
}

type Translate struct {
	Provider    string
	Model       string
	BatchSize   int
	Concurrency int
}

// New returns a viper instance with defaults and environment lookup in
// place. Flags are bound by the caller.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeySettingsFile, defaultSettingsFile())
	v.SetDefault(KeyHTTPAddr, "127.0.0.1:8765")
	v.SetDefault(KeyFrameInterval, 16*time.Millisecond)
	v.SetDefault(KeyDiscoveryInterval, time.Second)
	v.SetDefault(KeyNavigationDelay, time.Second)
	v.SetDefault(KeyWatchPattern, "/watch")
	v.SetDefault(KeyBrowserHeadless, false)
	v.SetDefault(KeyVideoSelector, "video")
	v.SetDefault(KeyContainerSelector, "")
	v.SetDefault(KeyAssJSURL, "https://cdn.jsdelivr.net/npm/assjs/dist/ass.min.js")
	v.SetDefault(KeyTerminalWidth, 80)
	v.SetDefault(KeyTerminalHeight, 24)
	v.SetDefault(KeyTranslateProvider, "gemini")
	v.SetDefault(KeyTranslateModel, "")
	v.SetDefault(KeyTranslateBatchSize, 50)
	v.SetDefault(KeyTranslateConcurrency, 3)
}

func defaultSettingsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".subplay-settings.json"
	}
	return filepath.Join(dir, "subplay", "settings.json")
}

// Load reads file, or looks for subplay.yaml in the working directory and
// the user config directory when file is empty. Only an explicitly named
// file has to exist.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "subplay"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return FromViper(v), nil
}

func FromViper(v *viper.Viper) *Config {
	return &Config{
		SettingsFile:  v.GetString(KeySettingsFile),
		HTTPAddr:      v.GetString(KeyHTTPAddr),
		FrameInterval: v.GetDuration(KeyFrameInterval),
		Discovery: Discovery{
			Interval:        v.GetDuration(KeyDiscoveryInterval),
			NavigationDelay: v.GetDuration(KeyNavigationDelay),
			WatchPattern:    v.GetString(KeyWatchPattern),
		},
		Browser: Browser{
			Headless:          v.GetBool(KeyBrowserHeadless),
			VideoSelector:     v.GetString(KeyVideoSelector),
			ContainerSelector: v.GetString(KeyContainerSelector),
			AssJSURL:          v.GetString(KeyAssJSURL),
		},
		Terminal: Terminal{
			Width:  v.GetInt(KeyTerminalWidth),
			Height: v.GetInt(KeyTerminalHeight),
		},
		Translate: Translate{
			Provider:    v.GetString(KeyTranslateProvider),
			Model:       v.GetString(KeyTranslateModel),
			BatchSize:   v.GetInt(KeyTranslateBatchSize),
			Concurrency: v.GetInt(KeyTranslateConcurrency),
		},
	}
}
