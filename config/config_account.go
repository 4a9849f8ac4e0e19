package config

import (
	"errors"
	"strings"

	"github.com/frusdelion/crocodoc/pkg/client"
	"github.com/frusdelion/crocodoc/pkg/limiter"
	"github.com/frusdelion/crocodoc/pkg/otel"
)

// RegisterClient adds a named client. The first registered client also
// serves as the default, looked up with an empty id.
func (cfg *Config) RegisterClient(id string, c *client.Client) {
	if cfg.clients == nil {
		cfg.clients = make(map[string]*client.Client)
	}

	if _, ok := cfg.clients[""]; !ok {
		cfg.clients[""] = c
	}

	cfg.clients[id] = c
}

func (cfg *Config) Client(id string) (*client.Client, error) {
	if cfg.clients != nil {
		if c, ok := cfg.clients[id]; ok {
			return c, nil
		}
	}

	return nil, errors.New("account not found: " + id)
}

type accountConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`

	Limit *int `yaml:"limit"`
}

func (cfg *Config) registerAccounts(f *configFile) error {
	if f.Accounts.Kind == 0 {
		return nil
	}

	var configs map[string]accountConfig

	if err := f.Accounts.Decode(&configs); err != nil {
		return err
	}

	// mapping node content alternates key and value nodes
	for i := 0; i+1 < len(f.Accounts.Content); i += 2 {
		id := f.Accounts.Content[i].Value

		config, ok := configs[id]

		if !ok {
			continue
		}

		c, err := createClient(config)

		if err != nil {
			return err
		}

		cfg.RegisterClient(id, c)
	}

	return nil
}

func createClient(cfg accountConfig) (*client.Client, error) {
	if cfg.URL != "" && !strings.HasPrefix(cfg.URL, "http://") && !strings.HasPrefix(cfg.URL, "https://") {
		return nil, errors.New("invalid account url: " + cfg.URL)
	}

	var options []client.RequestOption

	options = append(options, client.WithClient(otel.HTTPClient()))

	if cfg.Token != "" {
		options = append(options, client.WithToken(cfg.Token))
	}

	if cfg.Limit != nil {
		l := limiter.New(*cfg.Limit)
		options = append(options, client.WithMiddleware(limiter.Middleware(l)))
	}

	options = append(options, client.WithMiddleware(otel.Middleware("crocodoc")))

	return client.New(cfg.URL, options...), nil
}
