// Package config loads the osmapi CLI configuration from a YAML file and
// merges it with command line flags. Flags win over file values.
package config

import (
	"flag"
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type Config struct {
	BaseURL   string `yaml:"base_url"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	UserAgent string `yaml:"user_agent"`
}

// Base holds the options shared by all osmapi subcommands.
type Base struct {
	BaseURL    string
	User       string
	Password   string
	UserAgent  string
	ConfigFile string
	Debug      bool
}

// Bind registers the shared flags on fs. Call Resolve after fs.Parse.
func (b *Base) Bind(fs *flag.FlagSet) {
	fs.StringVar(&b.BaseURL, "url", "", "API endpoint, including version prefix")
	fs.StringVar(&b.User, "user", "", "user name for basic auth")
	fs.StringVar(&b.Password, "password", "", "password for basic auth")
	fs.StringVar(&b.UserAgent, "useragent", "", "User-Agent header")
	fs.StringVar(&b.ConfigFile, "config", "", "YAML configuration file")
	fs.BoolVar(&b.Debug, "debug", false, "log each request")
}

// Resolve merges in values from the configuration file, if one was given.
// Options already set by flags are kept.
func (b *Base) Resolve() error {
	if b.ConfigFile == "" {
		return nil
	}
	conf, err := load(b.ConfigFile)
	if err != nil {
		return err
	}
	if b.BaseURL == "" {
		b.BaseURL = conf.BaseURL
	}
	if b.User == "" {
		b.User = conf.User
	}
	if b.Password == "" {
		b.Password = conf.Password
	}
	if b.UserAgent == "" {
		b.UserAgent = conf.UserAgent
	}
	return nil
}

func load(filename string) (*Config, error) {
	buf, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}
	conf := &Config{}
	if err := yaml.Unmarshal(buf, conf); err != nil {
		return nil, errors.Wrapf(err, "parsing config file %s", filename)
	}
	return conf, nil
}
