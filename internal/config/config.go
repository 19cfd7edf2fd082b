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

type Application struct {
	Host     string   `koanf:"host"`
	Google   Google   `koanf:"google"`
	Calendar Calendar `koanf:"calendar"`
	Database Database `koanf:"db"`
	Redis    Redis    `koanf:"redis"`
}

type Google struct {
	ClientId          string `koanf:"clientid"`
	ClientSecret      string `koanf:"clientsecret"`
	DefaultCalendarId string `koanf:"defaultcalendarid"`
}

type Calendar struct {
	// DefaultTimezone is attached to timed provider events when the
	// request does not carry a timezone of its own.
	DefaultTimezone string `koanf:"defaulttimezone"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Redis struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Host: "http://localhost:3000",
		Google: Google{
			DefaultCalendarId: "primary",
		},
		Calendar: Calendar{
			DefaultTimezone: "Europe/Warsaw",
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "daymark",
			Pass:   "",
			Name:   "daymark",
			Schema: "daymark",
		},
		Redis: Redis{
			Addr: "localhost:6379",
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "DAYMARK_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "DAYMARK_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
