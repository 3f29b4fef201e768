package mediaforge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func writeConfig(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".toml"), []byte(contents), 0o644))
}

func TestLoadSettings_defaultsOnly(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "default", `
env = "local"

[http_server]
enabled = true
port = 8080

[coordinator]
enabled = true
address = "127.0.0.1:9090"
fetch_batch_size = 50
number_of_workers = 10

[object_store]
bucket_for_media = "media-previews"

[asset_processor]
resize_to = 400
file_max_size_bytes = 10485760

[metrics]
enabled = true
`)

	settings, err := LoadSettings(dir, "local")
	require.NoError(t, err)
	assert.Equal(t, 8080, settings.HTTPServer.Port)
	assert.Equal(t, uint32(50), settings.Coordinator.FetchBatchSize)
	assert.Equal(t, uint32(400), settings.AssetProcessor.ResizeTo)
	assert.Equal(t, "local", settings.Env)
}

func TestLoadSettings_envOverlayTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "default", `
[http_server]
port = 8080

[coordinator]
fetch_batch_size = 50

[object_store]
bucket_for_media = "media-previews"

[asset_processor]
resize_to = 400
`)
	writeConfig(t, dir, "staging", `
[http_server]
port = 9999
`)

	settings, err := LoadSettings(dir, "staging")
	require.NoError(t, err)
	assert.Equal(t, 9999, settings.HTTPServer.Port, "env overlay must win over default")
	assert.Equal(t, uint32(50), settings.Coordinator.FetchBatchSize, "unset-in-overlay fields keep their default")
}

func TestLoadSettings_missingEnvOverlayIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "default", `
[http_server]
port = 8080
`)

	_, err := LoadSettings(dir, "nonexistent")
	require.NoError(t, err)
}

func TestLoadSettings_envVarOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "default", `
[http_server]
port = 8080
`)
	t.Setenv("APP_HTTP_SERVER__PORT", "7777")

	settings, err := LoadSettings(dir, "local")
	require.NoError(t, err)
	assert.Equal(t, 7777, settings.HTTPServer.Port)
}

func TestMaskCredential(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"a", "a"},
		{"ab", "ab"},
		{"abcdef", "ab****"},
		{"AKIAEXAMPLE123", "AK************"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, maskCredential(tc.in))
	}
}

func TestObjectStoreSettings_maskedLogging(t *testing.T) {
	s := ObjectStoreSettings{
		AccessKeyID:     "AKIAEXAMPLE",
		SecretAccessKey: "supersecretvalue",
		SessionToken:    "tok12345",
		BucketForMedia:  "media-previews",
	}
	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, s.MarshalLogObject(enc))
	assert.Equal(t, maskCredential(s.AccessKeyID), enc.Fields["access_key_id"])
	assert.Equal(t, maskCredential(s.SecretAccessKey), enc.Fields["secret_access_key"])
	assert.Equal(t, maskCredential(s.SessionToken), enc.Fields["session_token"])
	assert.Equal(t, "media-previews", enc.Fields["bucket_for_media"])
	assert.NotContains(t, enc.Fields["secret_access_key"], "persecretvalue")
}
