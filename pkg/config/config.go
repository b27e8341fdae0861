package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/contenthub/postnotify/pkg/audit"
	"github.com/contenthub/postnotify/pkg/directory"
	"github.com/contenthub/postnotify/pkg/mail"
	"github.com/contenthub/postnotify/pkg/notify"
)

type Server struct {
	ListenAddress  string   `yaml:"listenAddress"`
	TLSCertFile    string   `yaml:"tlsCertFile"`
	TLSKeyFile     string   `yaml:"tlsKeyFile"`
	TrustedProxies []string `yaml:"trustedProxies"` // IPs/CIDRs to trust for X-Forwarded-For headers
	Debug          bool     `yaml:"debug"`
}

// Marker selects the backing store for the update rate-limit markers.
// RedisAddress empty means the in-process store.
type Marker struct {
	RedisAddress  string `yaml:"redisAddress"`
	SweepInterval string `yaml:"sweepInterval"`
}

// RateLimit bounds inbound API traffic per client IP.
type RateLimit struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

type Config struct {
	Server        Server                `yaml:"server"`
	Site          notify.Site           `yaml:"site"`
	Notifications notify.Settings       `yaml:"notifications"`
	SMTP          mail.SMTPSettings     `yaml:"smtp"`
	Directory     directory.HTTPConfig  `yaml:"directory"`
	Marker        Marker                `yaml:"marker"`
	Audit         audit.KafkaSinkConfig `yaml:"audit"`
	RateLimit     RateLimit             `yaml:"rateLimit"`
}

// Load loads the service configuration from a file path.
// If configPath is empty, defaults to "./config.yaml".
// The config file path can also be overridden via the POSTNOTIFY_CONFIG_PATH
// environment variable.
func Load(configPath ...string) (Config, error) {
	var path string

	if len(configPath) > 0 && configPath[0] != "" {
		path = configPath[0]
	} else if env := os.Getenv("POSTNOTIFY_CONFIG_PATH"); env != "" {
		path = env
	} else {
		path = "./config.yaml"
	}

	var config Config

	content, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("trying to open config file %s: %v", path, err)
	}

	err = yaml.Unmarshal(content, &config)
	if err != nil {
		return config, fmt.Errorf("error unmarshaling YAML %s: %v", path, err)
	}

	applyDefaults(&config)

	if err := validate(config); err != nil {
		return config, err
	}
	return config, nil
}

func applyDefaults(c *Config) {
	if c.Server.ListenAddress == "" {
		c.Server.ListenAddress = ":8080"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.SMTP.Encryption == "" {
		c.SMTP.Encryption = mail.EncryptionTLS
	}
	if c.RateLimit.RequestsPerSecond <= 0 {
		c.RateLimit.RequestsPerSecond = 10
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 20
	}
}

func validate(c Config) error {
	if c.Site.Name == "" {
		return fmt.Errorf("site.name must be set")
	}
	if c.Site.URL == "" {
		return fmt.Errorf("site.url must be set")
	}
	switch c.SMTP.Encryption {
	case mail.EncryptionNone, mail.EncryptionSSL, mail.EncryptionTLS:
	default:
		return fmt.Errorf("smtp.encryption must be one of none, ssl, tls; got %q", c.SMTP.Encryption)
	}
	for _, k := range c.Notifications.EnabledKinds {
		if _, err := notify.ParseKind(string(k)); err != nil {
			return fmt.Errorf("notifications.enabledKinds: %w", err)
		}
	}
	return nil
}
