package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

// Widget holds everything an embedder can tune without touching code.
type Widget struct {
	LogLevel     string   `koanf:"loglevel"`
	DefaultView  string   `koanf:"defaultview"`
	WeekStartDay int      `koanf:"weekstartday"` // 0 = Sunday, 1 = Monday
	Use24Hour    bool     `koanf:"use24hour"`
	Filters      []string `koanf:"filters"`
	Grid         Grid     `koanf:"grid"`
	Google       Google   `koanf:"google"`
}

// Grid carries the day/week time-grid metrics. Only the ratios derived from
// them are load-bearing; the absolute pixel values belong to the embedder.
type Grid struct {
	HourHeight     float64 `koanf:"hourheight"`
	MinEventHeight float64 `koanf:"mineventheight"`
}

type Google struct {
	ClientId     string `koanf:"clientid"`
	ClientSecret string `koanf:"clientsecret"`
	CalendarId   string `koanf:"calendarid"`
}

func Load(path string) (Widget, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Widget{
		LogLevel:     "info",
		DefaultView:  "month",
		WeekStartDay: 1,
		Filters:      []string{"blue", "green", "yellow", "purple", "red"},
		Grid: Grid{
			HourHeight:     60,
			MinEventHeight: 24,
		},
		Google: Google{
			CalendarId: "primary",
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Widget{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Widget{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "KALENDO_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "KALENDO_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Widget{}, err
	}

	var w Widget
	if err := k.Unmarshal("", &w); err != nil {
		return Widget{}, err
	}

	return w, nil
}
