package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ClaimsConfig holds operator-tunable claims handling policy. Unlike Config
// it may be reloaded at runtime from a mounted file.
type ClaimsConfig struct {
	Uploads       UploadPolicy       `mapstructure:"uploads"`
	Notifications NotificationPolicy `mapstructure:"notifications"`
}

type UploadPolicy struct {
	MaxSizeBytes      int64    `mapstructure:"maxSizeBytes"`
	AllowedExtensions []string `mapstructure:"allowedExtensions"`
}

type NotificationPolicy struct {
	EmailEnabled bool `mapstructure:"emailEnabled"`
	InAppEnabled bool `mapstructure:"inAppEnabled"`
}

func DefaultClaimsConfig() ClaimsConfig {
	return ClaimsConfig{
		Uploads: UploadPolicy{
			MaxSizeBytes:      10 * 1024 * 1024,
			AllowedExtensions: []string{".pdf", ".jpg", ".jpeg", ".png", ".doc", ".docx"},
		},
		Notifications: NotificationPolicy{
			EmailEnabled: true,
			InAppEnabled: true,
		},
	}
}

// ClaimsConfigHolder exposes the current ClaimsConfig and hot-reloads it when
// the backing file changes. Invalid updates are ignored.
type ClaimsConfigHolder struct {
	current atomic.Value // holds ClaimsConfig
}

func NewClaimsConfigHolder() (*ClaimsConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("claims")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/claimdesk/config")
	v.AddConfigPath("/etc/claimdesk")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CLAIMDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultClaimsConfig()
		v.SetDefault("claims.uploads", defaults.Uploads)
		v.SetDefault("claims.notifications", defaults.Notifications)
	}

	var cfg ClaimsConfig
	if err := v.UnmarshalKey("claims", &cfg); err != nil {
		return nil, err
	}
	applyClaimsDefaults(&cfg)
	if err := validateClaimsConfig(cfg); err != nil {
		return nil, err
	}

	holder := &ClaimsConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ClaimsConfig
		if err := v.UnmarshalKey("claims", &updated); err != nil {
			log.Printf("[claims-config] reload failed: %v", err)
			return
		}
		applyClaimsDefaults(&updated)
		if err := validateClaimsConfig(updated); err != nil {
			log.Printf("[claims-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[claims-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *ClaimsConfigHolder) Current() ClaimsConfig {
	return h.current.Load().(ClaimsConfig)
}

func applyClaimsDefaults(cfg *ClaimsConfig) {
	defaults := DefaultClaimsConfig()
	if cfg.Uploads.MaxSizeBytes == 0 {
		cfg.Uploads.MaxSizeBytes = defaults.Uploads.MaxSizeBytes
	}
	if len(cfg.Uploads.AllowedExtensions) == 0 {
		cfg.Uploads.AllowedExtensions = defaults.Uploads.AllowedExtensions
	}
}

func validateClaimsConfig(cfg ClaimsConfig) error {
	if cfg.Uploads.MaxSizeBytes <= 0 {
		return errors.New("claims.uploads.maxSizeBytes must be positive")
	}
	if len(cfg.Uploads.AllowedExtensions) == 0 {
		return errors.New("claims.uploads.allowedExtensions cannot be empty")
	}
	return nil
}
