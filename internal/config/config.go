package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Host string `yaml:"host"`
	} `yaml:"server"`

	Firebase struct {
		CredentialsFile  string `yaml:"credentials_file"`
		Bucket           string `yaml:"bucket"`
		DictionaryPrefix string `yaml:"dictionary_prefix"`
		ClipExtension    string `yaml:"clip_extension"`
	} `yaml:"firebase"`

	Gemini struct {
		Model  string `yaml:"model"`
		APIKey string `yaml:"-"`
	} `yaml:"gemini"`

	Video struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
		FPS    int `yaml:"fps"`
	} `yaml:"video"`

	Storage struct {
		TempDir  string `yaml:"temp_dir"`
		Database string `yaml:"database"`
	} `yaml:"storage"`

	Cleanup struct {
		IntervalMinutes int `yaml:"interval_minutes"`
		MaxAgeHours     int `yaml:"max_age_hours"`
	} `yaml:"cleanup"`
}

// Load reads the YAML config file and applies environment overrides.
// PORT, GEMINI_API_KEY and GOOGLE_APPLICATION_CREDENTIALS take precedence
// over the file so the service can be configured entirely from the
// process environment on hosted platforms.
func Load(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT value %q: %v", port, err)
		}
		config.Server.Port = p
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
		config.Firebase.CredentialsFile = creds
	}
	if bucket := os.Getenv("FIREBASE_STORAGE_BUCKET"); bucket != "" {
		config.Firebase.Bucket = bucket
	}

	config.applyDefaults()

	return &config, nil
}

// applyDefaults fills zero values with working defaults
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Firebase.DictionaryPrefix == "" {
		c.Firebase.DictionaryPrefix = "Dictionary/"
	}
	if c.Firebase.ClipExtension == "" {
		c.Firebase.ClipExtension = ".mp4"
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Video.Width == 0 {
		c.Video.Width = 640
	}
	if c.Video.Height == 0 {
		c.Video.Height = 480
	}
	if c.Video.FPS == 0 {
		c.Video.FPS = 30
	}
	if c.Storage.TempDir == "" {
		c.Storage.TempDir = "temp"
	}
}
