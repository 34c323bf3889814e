// Package configloader assembles service configuration from a YAML file, a .env file and the process environment.
package configloader

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Validator interface {
	Validate() error
}

// Sources names the files the loader reads. Missing files are skipped.
type Sources struct {
	ConfigFile string
	EnvFile    string
}

// DefaultSources are the files read from the working directory.
var DefaultSources = Sources{
	ConfigFile: "config.yaml",
	EnvFile:    ".env",
}

// Load reads the configuration for serviceName from the default sources.
// Environment variables are prefixed with the upper-cased service name, e.g. PRODUCT_SERVER_PORT.
func Load[T Validator](serviceName string) (T, error) {
	return LoadFrom[T](serviceName, DefaultSources)
}

// LoadFrom reads the configuration from the given sources, lowest priority first:
// YAML file, .env file, system environment.
func LoadFrom[T Validator](serviceName string, src Sources) (T, error) {
	var cfg T
	k := koanf.New(".")

	envPrefix := fmt.Sprintf("%s_", strings.ToUpper(serviceName))

	// 1. Load configuration from yaml file
	if src.ConfigFile != "" {
		if err := k.Load(file.Provider(src.ConfigFile), yaml.Parser()); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return cfg, fmt.Errorf("error loading YAML config file '%s': %w", src.ConfigFile, err)
			}
		}
	}

	// Env keys are case-insensitive; fold them onto the camelCase keys the YAML file declared.
	envTransformer := keyTransformer(envPrefix, k.Keys())

	// 2. Load environment variables from .env file
	if src.EnvFile != "" {
		if envFileMap, err := godotenv.Read(src.EnvFile); err == nil {
			envMap := make(map[string]any)
			for key, value := range envFileMap {
				if !strings.HasPrefix(strings.ToUpper(key), envPrefix) {
					continue
				}
				envMap[envTransformer(key)] = value
			}
			if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
				log.Printf("WARN: error loading .env config: %v", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("WARN: error reading .env file: %v", err)
		}
	}

	// 3. Load environment variables from the system, the highest priority
	if err := k.Load(env.Provider(envPrefix, ".", envTransformer), nil); err != nil {
		log.Printf("WARN: error loading system env vars: %v", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// keyTransformer maps PRODUCT_SERVER_TIMEOUT_READ to server.timeout.read.
// A key matching one of knownKeys regardless of case takes that key's spelling,
// so PRODUCT_SERVER_MAXBODYBYTES overrides server.maxBodyBytes.
func keyTransformer(envPrefix string, knownKeys []string) func(string) string {
	prefix := strings.ToLower(envPrefix)
	known := make(map[string]string, len(knownKeys))
	for _, key := range knownKeys {
		known[strings.ToLower(key)] = key
	}
	return func(key string) string {
		key = strings.ToLower(key)
		key = strings.TrimPrefix(key, prefix)
		key = strings.ReplaceAll(key, "_", ".")
		if original, ok := known[key]; ok {
			return original
		}
		return key
	}
}
