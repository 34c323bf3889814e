package configloader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Server struct {
		Port         int           `koanf:"port"`
		Timeout      time.Duration `koanf:"timeout"`
		MaxBodyBytes int64         `koanf:"maxBodyBytes"`
	} `koanf:"server"`
	Breaker struct {
		OpenTimeout time.Duration `koanf:"openTimeout"`
	} `koanf:"circuitBreaker"`
	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
	Origins []string `koanf:"origins"`
}

func (c *testConfig) Validate() error {
	if c.Server.Port == 0 {
		return errors.New("port is required")
	}
	return nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func Test_LoadFrom(t *testing.T) {
	const yamlCfg = `
server:
  port: 8080
  timeout: 5s
  maxBodyBytes: 1024
circuitBreaker:
  openTimeout: 30s
log:
  level: info
origins:
  - https://a.example
`
	testCases := []struct {
		name        string
		yaml        string
		dotenv      string
		env         map[string]string
		expectError bool
		assertFn    func(t *testing.T, cfg *testConfig)
	}{
		{
			name: "yaml only",
			yaml: yamlCfg,
			assertFn: func(t *testing.T, cfg *testConfig) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.Timeout)
				assert.Equal(t, "info", cfg.Log.Level)
				assert.Equal(t, []string{"https://a.example"}, cfg.Origins)
				assert.Equal(t, int64(1024), cfg.Server.MaxBodyBytes)
				assert.Equal(t, 30*time.Second, cfg.Breaker.OpenTimeout)
			},
		},
		{
			name: "system env overrides camelCase yaml keys",
			yaml: yamlCfg,
			env: map[string]string{
				"TESTSVC_SERVER_MAXBODYBYTES":        "2048",
				"TESTSVC_CIRCUITBREAKER_OPENTIMEOUT": "7s",
			},
			assertFn: func(t *testing.T, cfg *testConfig) {
				assert.Equal(t, int64(2048), cfg.Server.MaxBodyBytes)
				assert.Equal(t, 7*time.Second, cfg.Breaker.OpenTimeout)
				assert.Equal(t, 8080, cfg.Server.Port)
			},
		},
		{
			name:   ".env overrides camelCase yaml keys",
			yaml:   yamlCfg,
			dotenv: "TESTSVC_SERVER_MAXBODYBYTES=4096\n",
			assertFn: func(t *testing.T, cfg *testConfig) {
				assert.Equal(t, int64(4096), cfg.Server.MaxBodyBytes)
			},
		},
		{
			name:   ".env overrides yaml",
			yaml:   yamlCfg,
			dotenv: "TESTSVC_LOG_LEVEL=debug\nOTHER_LOG_LEVEL=error\n",
			assertFn: func(t *testing.T, cfg *testConfig) {
				assert.Equal(t, "debug", cfg.Log.Level)
				assert.Equal(t, 8080, cfg.Server.Port)
			},
		},
		{
			name:   "system env overrides .env",
			yaml:   yamlCfg,
			dotenv: "TESTSVC_LOG_LEVEL=debug\n",
			env:    map[string]string{"TESTSVC_LOG_LEVEL": "warn", "TESTSVC_SERVER_PORT": "9090"},
			assertFn: func(t *testing.T, cfg *testConfig) {
				assert.Equal(t, "warn", cfg.Log.Level)
				assert.Equal(t, 9090, cfg.Server.Port)
			},
		},
		{
			name: "env only",
			env:  map[string]string{"TESTSVC_SERVER_PORT": "7070", "TESTSVC_SERVER_TIMEOUT": "2s"},
			assertFn: func(t *testing.T, cfg *testConfig) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, 2*time.Second, cfg.Server.Timeout)
			},
		},
		{
			name:        "validation error",
			yaml:        "log:\n  level: info\n",
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			dir := t.TempDir()
			src := Sources{
				ConfigFile: filepath.Join(dir, "missing.yaml"),
				EnvFile:    filepath.Join(dir, "missing.env"),
			}
			if tc.yaml != "" {
				src.ConfigFile = writeFile(t, dir, "config.yaml", tc.yaml)
			}
			if tc.dotenv != "" {
				src.EnvFile = writeFile(t, dir, ".env", tc.dotenv)
			}
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			// when
			cfg, err := LoadFrom[*testConfig]("testsvc", src)

			// then
			if tc.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tc.assertFn(t, cfg)
		})
	}
}

func Test_LoadFrom_MalformedYAML(t *testing.T) {
	// given
	dir := t.TempDir()
	src := Sources{ConfigFile: writeFile(t, dir, "config.yaml", "server: [port")}

	// when
	_, err := LoadFrom[*testConfig]("testsvc", src)

	// then
	require.Error(t, err)
}

func Test_keyTransformer(t *testing.T) {
	transform := keyTransformer("PRODUCT_", []string{"server.maxBodyBytes", "nats.circuitBreaker.openTimeout"})
	assert.Equal(t, "server.timeout.read", transform("PRODUCT_SERVER_TIMEOUT_READ"))
	assert.Equal(t, "log.level", transform("product_log_level"))
	assert.Equal(t, "server.maxBodyBytes", transform("PRODUCT_SERVER_MAXBODYBYTES"))
	assert.Equal(t, "nats.circuitBreaker.openTimeout", transform("PRODUCT_NATS_CIRCUITBREAKER_OPENTIMEOUT"))
}
