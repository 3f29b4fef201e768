package mediaforge

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// HTTPServerSettings configures the preview HTTP server (C10).
type HTTPServerSettings struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// CoordinatorSettings configures the ingestion pipeline's upstream (C7/C9).
type CoordinatorSettings struct {
	Enabled          bool   `mapstructure:"enabled"`
	Address          string `mapstructure:"address"`
	FetchBatchSize   uint32 `mapstructure:"fetch_batch_size"`
	NumberOfWorkers  uint32 `mapstructure:"number_of_workers"`
}

// ObjectStoreSettings configures the S3-compatible backing store (C5).
type ObjectStoreSettings struct {
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SessionToken    string `mapstructure:"session_token"`
	BucketForMedia  string `mapstructure:"bucket_for_media"`
}

// MarshalLogObject implements zapcore.ObjectMarshaler, masking every
// credential field (all but its first two characters) before it can reach
// a log line (§2c, invariant 9 of §8).
func (s ObjectStoreSettings) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("region", s.Region)
	enc.AddString("endpoint", s.Endpoint)
	enc.AddString("bucket_for_media", s.BucketForMedia)
	enc.AddString("access_key_id", maskCredential(s.AccessKeyID))
	enc.AddString("secret_access_key", maskCredential(s.SecretAccessKey))
	enc.AddString("session_token", maskCredential(s.SessionToken))
	return nil
}

// String renders the settings with the same credential masking as
// MarshalLogObject, so fmt-style printing never shows a credential in full.
func (s ObjectStoreSettings) String() string {
	return fmt.Sprintf("{region:%s endpoint:%s bucket_for_media:%s access_key_id:%s secret_access_key:%s session_token:%s}",
		s.Region, s.Endpoint, s.BucketForMedia,
		maskCredential(s.AccessKeyID), maskCredential(s.SecretAccessKey), maskCredential(s.SessionToken))
}

// maskCredential replaces every character beyond the first two with '*',
// matching the original store's mask_creds behavior.
func maskCredential(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(s)
	keep := 2
	if len(runes) < keep {
		keep = len(runes)
	}
	masked := string(runes[:keep])
	for i := keep; i < len(runes); i++ {
		masked += "*"
	}
	return masked
}

// AssetProcessorSettings configures image normalization and the download
// size cap (C3/C4).
type AssetProcessorSettings struct {
	ResizeTo         uint32 `mapstructure:"resize_to"`
	FileMaxSizeBytes int64  `mapstructure:"file_max_size_bytes"`
}

// MetricsSettings gates the /metrics endpoint (C11).
type MetricsSettings struct {
	Enabled bool `mapstructure:"enabled"`
}

// Settings is the fully resolved, typed configuration tree (§3a).
type Settings struct {
	HTTPServer     HTTPServerSettings     `mapstructure:"http_server"`
	Coordinator    CoordinatorSettings    `mapstructure:"coordinator"`
	ObjectStore    ObjectStoreSettings    `mapstructure:"object_store"`
	AssetProcessor AssetProcessorSettings `mapstructure:"asset_processor"`
	Metrics        MetricsSettings        `mapstructure:"metrics"`
	Env            string                 `mapstructure:"env"`
}

// LoadSettings resolves Settings by layering, in ascending precedence,
// default.toml, {env}.toml (optional) and APP_-prefixed environment
// variables with "__" as the nesting separator (§6a).
func LoadSettings(configDir, env string) (*Settings, error) {
	v := viper.New()
	v.SetConfigName("default")
	v.AddConfigPath(configDir)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("mediaforge: reading default config: %w", err)
	}

	v.SetConfigName(env)
	if err := v.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("mediaforge: merging %s config: %w", env, err)
		}
	}

	v.SetEnvPrefix("app")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("mediaforge: unmarshaling settings: %w", err)
	}
	settings.Env = env
	return &settings, nil
}
