package livemap

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0"`
}

type FeedConfig struct {
	VehiclePositionsURL string `yaml:"vehiclePositionsURL" validate:"omitempty,url"`
	TripUpdatesURL      string `yaml:"tripUpdatesURL" validate:"omitempty,url"`
	APIKey              string `yaml:"apiKey"`
	UpdateIntervalMS    int    `yaml:"updateIntervalMS" validate:"gte=0"`
	TimeoutMS           int    `yaml:"timeoutMS" validate:"gte=0"`
}

type TrackingConfig struct {
	RouteID          string `yaml:"routeID"`
	TrainFilter      string `yaml:"trainFilter"`
	HighlightedTrain string `yaml:"highlightedTrain"`
	FrameIntervalMS  int    `yaml:"frameIntervalMS" validate:"gte=0"`
	// StaleAfterMS evicts trains not updated for this long; 0 keeps the
	// default behavior of freezing them in place during feed outages.
	StaleAfterMS int `yaml:"staleAfterMS" validate:"gte=0"`
}

type RoutesConfig struct {
	File            string  `yaml:"file"`
	GapThresholdDeg float64 `yaml:"gapThresholdDeg" validate:"gte=0"`
}

type AppConfig struct {
	Server   ServerConfig   `yaml:"server" validate:"required"`
	Feed     FeedConfig     `yaml:"feed"`
	Tracking TrackingConfig `yaml:"tracking"`
	Routes   RoutesConfig   `yaml:"routes"`
}

var Config AppConfig

func LoadAppConfig() error {
	paths := []string{"config.yml", "./config/config.yml"}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			return loadAppConfig(data)
		}
	}
	return err
}

// LoadAppConfigFrom loads configuration from an explicit path (used by the
// -config flag and tests).
func LoadAppConfigFrom(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return loadAppConfig(data)
}

func loadAppConfig(data []byte) error {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}
	applyDefaults(&cfg)
	v := validator.New()
	if err := v.Struct(cfg.Server); err != nil {
		return err
	}
	if err := v.Struct(cfg.Feed); err != nil {
		return err
	}
	if err := v.Struct(cfg.Tracking); err != nil {
		return err
	}
	if err := v.Struct(cfg.Routes); err != nil {
		return err
	}
	Config = cfg
	return nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 17280
	}
	if cfg.Feed.UpdateIntervalMS == 0 {
		cfg.Feed.UpdateIntervalMS = 2000
	}
	if cfg.Feed.TimeoutMS == 0 {
		cfg.Feed.TimeoutMS = 10000
	}
	if cfg.Tracking.FrameIntervalMS == 0 {
		cfg.Tracking.FrameIntervalMS = 50
	}
	if cfg.Routes.File == "" {
		cfg.Routes.File = "routes.json"
	}
	if cfg.Routes.GapThresholdDeg == 0 {
		cfg.Routes.GapThresholdDeg = 0.02
	}
}

// UpdateInterval is the expected time between feed batches, which doubles as
// the interpolation window.
func (c FeedConfig) UpdateInterval() time.Duration {
	return time.Duration(c.UpdateIntervalMS) * time.Millisecond
}

func (c FeedConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func (c TrackingConfig) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMS) * time.Millisecond
}

func (c TrackingConfig) StaleAfter() time.Duration {
	return time.Duration(c.StaleAfterMS) * time.Millisecond
}
