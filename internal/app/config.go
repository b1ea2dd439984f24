package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ScenePath  string // a .scene file or a directory of them
	ConfigPath string // optional project file

	DataDirs  []string
	Bindings  map[string]string
	EventsURL string

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ScenePath == "" {
		return nil, errors.New("ScenePath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
