package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

const (
	defaultRequestTimeout       = 30 * time.Second
	defaultTagLookupConcurrency = 8
)

type Config struct {
	Public  Public
	private Private
}

type Public struct {
	API      API      `yaml:"api"`
	Log      Log      `yaml:"log"`
	Comments Comments `yaml:"comments"`
	MockAPI  MockAPI  `yaml:"mockapi"`
}

type API struct {
	BaseURL        string        `yaml:"base_url" validate:"required,url"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gte=0"` // zero disables the client timeout
}

type Log struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	JSON  bool   `yaml:"json"`
}

type Comments struct {
	TagLookupConcurrency int `yaml:"tag_lookup_concurrency" validate:"gte=0"` // parallel tag lookups per fetch
}

type MockAPI struct {
	Addr           string   `yaml:"addr"`
	MetricsAddr    string   `yaml:"metrics_addr"`
	StoragePath    string   `yaml:"storage_path"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Private struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

func (s *Config) Username() string {
	return s.private.Username
}

func (s *Config) Password() string {
	return s.private.Password
}

// WithCredentials returns a copy of the config with the private credentials
// replaced. Used by flags that override private.yaml.
func (s *Config) WithCredentials(username, password string) *Config {
	c := *s
	c.private = Private{Username: username, Password: password}
	return &c
}

func (p *Public) setDefaults() {
	if p.API.RequestTimeout == 0 {
		p.API.RequestTimeout = defaultRequestTimeout
	}
	if p.Log.Level == "" {
		p.Log.Level = "info"
	}
	if p.Comments.TagLookupConcurrency == 0 {
		p.Comments.TagLookupConcurrency = defaultTagLookupConcurrency
	}
	if p.MockAPI.Addr == "" {
		p.MockAPI.Addr = ":8000"
	}
	if p.MockAPI.StoragePath == "" {
		p.MockAPI.StoragePath = "objects"
	}
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic(fmt.Sprintf("can't unmarshal config file %s: %v", configPath, err))
	}
}

// MustLoad reads public.yaml and private.yaml from configFolder. private.yaml
// is optional; every command that needs credentials also takes them as flags.
func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)
	public.setDefaults()

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(public); err != nil {
		panic("invalid config: " + err.Error())
	}

	var private Private
	privatePath := path.Join(configFolder, "private.yaml")
	if _, err := os.Stat(privatePath); err == nil {
		mustLoadPath(privatePath, &private)
	}

	return &Config{public, private}
}
