package config

import (
	"bytes"
	"os"

	"github.com/frusdelion/crocodoc/pkg/client"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Address string

	clients map[string]*client.Client
}

func Parse(path string) (*Config, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, err
	}

	return ParseData(data)
}

func ParseData(data []byte) (*Config, error) {
	file, err := parseData(data)

	if err != nil {
		return nil, err
	}

	c := &Config{
		Address: ":8080",
	}

	if file.Address != "" {
		c.Address = file.Address
	}

	if err := c.registerAccounts(file); err != nil {
		return nil, err
	}

	return c, nil
}

type configFile struct {
	Address string `yaml:"address"`

	Accounts yaml.Node `yaml:"accounts"`
}

func parseData(data []byte) (*configFile, error) {
	data = []byte(os.ExpandEnv(string(data)))

	var config configFile

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
