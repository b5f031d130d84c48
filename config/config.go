package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const defaultPath = "."

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port int `json:"port" yaml:"port" validate:"required,min=1,max=65535"`

		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	// Storage configures the local sqlite file holding the device record
	// and the unread snapshot.
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Registration configures the retry/backoff state machine driving
	// push-token registration.
	Registration RegistrationConfig `json:"registration" yaml:"registration"`

	// Registry configures the remote push-token registry client.
	Registry RegistryConfig `json:"registry" yaml:"registry"`

	// Directory configures the membership/profile lookup client.
	Directory DirectoryConfig `json:"directory" yaml:"directory"`

	// Feed configures the real-time message feed source.
	Feed *FeedConfig `json:"feed" yaml:"feed"`

	// Toast configures the single-slot presentation queue.
	Toast ToastConfig `json:"toast" yaml:"toast"`

	// Navigation configures the host callback invoked on notification taps.
	Navigation *NavigationConfig `json:"navigation" yaml:"navigation"`
}

// Log defines logger output options.
type Log struct {
	Level  string `json:"level" yaml:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty"`
}

// StorageConfig defines local persistence options.
type StorageConfig struct {
	Path string `json:"path" yaml:"path" validate:"required"`
}

// RegistrationConfig defines the backoff parameters of the registration
// coordinator. Cooldown after n failed attempts is
// backoffBase * 2^min(n, backoffCapExponent).
type RegistrationConfig struct {
	MaxRetries         int           `json:"maxRetries" yaml:"maxRetries" validate:"min=1"`
	BackoffBase        time.Duration `json:"backoffBase" yaml:"backoffBase" validate:"required"`
	BackoffCapExponent int           `json:"backoffCapExponent" yaml:"backoffCapExponent" validate:"min=0"`
	LongResetDelay     time.Duration `json:"longResetDelay" yaml:"longResetDelay" validate:"required"`
}

// RegistryConfig defines the push-token registry endpoint and the secret
// used to sign the device assertion sent with each registration.
type RegistryConfig struct {
	Endpoint        string        `json:"endpoint" yaml:"endpoint" validate:"required,url"`
	Platform        string        `json:"platform" yaml:"platform" validate:"required,oneof=ios android"`
	AssertionSecret string        `json:"assertionSecret" yaml:"assertionSecret" validate:"required"`
	Timeout         time.Duration `json:"timeout" yaml:"timeout"`
}

// DirectoryConfig defines the backend lookup endpoints for conversation
// membership, sender display info and the authoritative unread count.
type DirectoryConfig struct {
	Endpoint string        `json:"endpoint" yaml:"endpoint" validate:"required,url"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
}

// FeedConfig selects the real-time feed provider.
type FeedConfig struct {
	// Provider type: "nats" or "google". Empty disables the feed.
	Provider string `json:"provider" yaml:"provider" validate:"omitempty,oneof=nats google"`

	// NATS settings (for nats provider)
	NATS *NATSFeedConfig `json:"nats" yaml:"nats"`

	// Google Cloud Pub/Sub settings (for google provider)
	Google *GoogleFeedConfig `json:"google" yaml:"google"`
}

// NATSFeedConfig defines the NATS subscription carrying chat events.
type NATSFeedConfig struct {
	Servers       []string      `json:"servers" yaml:"servers"`
	SubjectPrefix string        `json:"subjectPrefix" yaml:"subjectPrefix"`
	Name          string        `json:"name" yaml:"name"`
	ReconnectWait time.Duration `json:"reconnectWait" yaml:"reconnectWait"`
	Timeout       time.Duration `json:"timeout" yaml:"timeout"`
}

// GoogleFeedConfig defines the Pub/Sub subscription carrying chat events.
type GoogleFeedConfig struct {
	ProjectID      string `json:"projectId" yaml:"projectId"`
	SubscriptionID string `json:"subscriptionId" yaml:"subscriptionId"`
}

// ToastConfig defines presentation queue timing.
type ToastConfig struct {
	TTL           time.Duration `json:"ttl" yaml:"ttl"`
	PreviewLength int           `json:"previewLength" yaml:"previewLength" validate:"min=0"`
}

// NavigationConfig defines the host webhook invoked when the user taps a
// displayed notification.
type NavigationConfig struct {
	CallbackURL string        `json:"callbackUrl" yaml:"callbackUrl" validate:"omitempty,url"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
}

// Defaults applied after loading.
const (
	defaultMaxRetries     = 3
	defaultBackoffBase    = 5 * time.Minute
	defaultBackoffCapExp  = 5
	defaultLongResetDelay = 30 * time.Minute
	defaultToastTTL       = 4 * time.Second
	defaultPreviewLength  = 80
	defaultClientTimeout  = 10 * time.Second
)

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: REGISTRATION_MAXRETRIES -> registration.maxRetries
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Registration.MaxRetries == 0 {
		cfg.Registration.MaxRetries = defaultMaxRetries
	}
	if cfg.Registration.BackoffBase == 0 {
		cfg.Registration.BackoffBase = defaultBackoffBase
	}
	if cfg.Registration.BackoffCapExponent == 0 {
		cfg.Registration.BackoffCapExponent = defaultBackoffCapExp
	}
	if cfg.Registration.LongResetDelay == 0 {
		cfg.Registration.LongResetDelay = defaultLongResetDelay
	}
	if cfg.Toast.TTL == 0 {
		cfg.Toast.TTL = defaultToastTTL
	}
	if cfg.Toast.PreviewLength == 0 {
		cfg.Toast.PreviewLength = defaultPreviewLength
	}
	if cfg.Registry.Timeout == 0 {
		cfg.Registry.Timeout = defaultClientTimeout
	}
	if cfg.Directory.Timeout == 0 {
		cfg.Directory.Timeout = defaultClientTimeout
	}
	if cfg.Navigation != nil && cfg.Navigation.Timeout == 0 {
		cfg.Navigation.Timeout = defaultClientTimeout
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
