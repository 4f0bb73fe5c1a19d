// SPDX-License-Identifier: MPL-2.0

// Package config loads the texbox configuration: defaults, then an optional
// TOML config file, then TEXBOX_* environment variables, in increasing
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name, used for the config directory.
	AppName = "texbox"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"

	envPrefix = "TEXBOX"
)

// configFilePathOverride holds the --config flag value, set before Load.
var configFilePathOverride string

type (
	// Config is the effective texbox configuration.
	Config struct {
		// Engine selects the container runtime.
		Engine EngineName `mapstructure:"engine" toml:"engine"`
		// ImagePrefix is prepended to every image and container name.
		ImagePrefix ImagePrefix `mapstructure:"image_prefix" toml:"image_prefix"`
		// Paths locates the document sources on the host.
		Paths PathsConfig `mapstructure:"paths" toml:"paths"`
		// Container holds the in-container filesystem layout.
		Container ContainerConfig `mapstructure:"container" toml:"container"`
		// Build describes the document build.
		Build BuildConfig `mapstructure:"build" toml:"build"`
	}

	// PathsConfig locates the document sources on the host, relative to the
	// project root unless absolute.
	PathsConfig struct {
		// Source is the directory holding the document sources.
		Source string `mapstructure:"source" toml:"source"`
		// Resources is the directory holding shared assets (fonts, images).
		Resources string `mapstructure:"resources" toml:"resources"`
		// Output is the directory build artifacts are written to.
		Output string `mapstructure:"output" toml:"output"`
	}

	// ContainerConfig holds the in-container filesystem layout. The entry
	// stage mounts a union view of SourceDir onto WorkDir before the build
	// command runs.
	ContainerConfig struct {
		// WorkDir is the union mount point and working directory.
		WorkDir string `mapstructure:"work_dir" toml:"work_dir"`
		// SourceDir is where the host source directory is bind-mounted.
		SourceDir string `mapstructure:"source_dir" toml:"source_dir"`
		// ResourcesDir is where the host resources directory is bind-mounted.
		ResourcesDir string `mapstructure:"resources_dir" toml:"resources_dir"`
		// OutputDir is where the host output directory is bind-mounted.
		OutputDir string `mapstructure:"output_dir" toml:"output_dir"`
	}

	// BuildConfig describes the document build.
	BuildConfig struct {
		// Command is the build command line, split with shell quoting rules;
		// $TEXBOX_* variables are expanded from the container layout.
		Command string `mapstructure:"command" toml:"command"`
		// Artifact is the primary output file, relative to the output directory.
		Artifact string `mapstructure:"artifact" toml:"artifact"`
		// Shell is the interactive shell started by `texbox shell`.
		Shell string `mapstructure:"shell" toml:"shell"`
	}
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Engine:      EngineAuto,
		ImagePrefix: "texbox",
		Paths: PathsConfig{
			Source:    "resume",
			Resources: "resources",
			Output:    filepath.Join("build", "resume"),
		},
		Container: ContainerConfig{
			WorkDir:      "/texbox/work",
			SourceDir:    "/code",
			ResourcesDir: "/texbox/resources",
			OutputDir:    "/texbox/output",
		},
		Build: BuildConfig{
			Command:  "latexmk -f -pdfxe -xelatex -shell-escape -output-directory=$TEXBOX_OUTPUT -jobname=main",
			Artifact: "main.pdf",
			Shell:    "/bin/bash",
		},
	}
}

// Validate returns an error if any Config field is invalid.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Engine.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.ImagePrefix.Validate(); err != nil {
		errs = append(errs, err)
	}
	required := []struct {
		name  string
		value string
	}{
		{"paths.source", c.Paths.Source},
		{"paths.output", c.Paths.Output},
		{"container.work_dir", c.Container.WorkDir},
		{"container.source_dir", c.Container.SourceDir},
		{"container.output_dir", c.Container.OutputDir},
		{"build.command", c.Build.Command},
		{"build.artifact", c.Build.Artifact},
		{"build.shell", c.Build.Shell},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			errs = append(errs, fmt.Errorf("%s must be non-empty", field.name))
		}
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrs: errs}
	}
	return nil
}

// SetConfigFilePathOverride routes Load to an explicit config file
// (the --config flag). An empty value restores the default search.
func SetConfigFilePathOverride(path string) {
	configFilePathOverride = path
}

// ConfigDir returns the texbox configuration directory using platform
// conventions: %APPDATA% on Windows, ~/Library/Application Support on macOS,
// $XDG_CONFIG_HOME (default ~/.config) elsewhere.
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// ConfigFilePath returns the path Load will read the config file from.
func ConfigFilePath() (string, error) {
	if configFilePathOverride != "" {
		return configFilePathOverride, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// Load reads the configuration. A missing config file is not an error; an
// unreadable or invalid one is.
func Load() (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("engine", string(defaults.Engine))
	v.SetDefault("image_prefix", string(defaults.ImagePrefix))
	v.SetDefault("paths.source", defaults.Paths.Source)
	v.SetDefault("paths.resources", defaults.Paths.Resources)
	v.SetDefault("paths.output", defaults.Paths.Output)
	v.SetDefault("container.work_dir", defaults.Container.WorkDir)
	v.SetDefault("container.source_dir", defaults.Container.SourceDir)
	v.SetDefault("container.resources_dir", defaults.Container.ResourcesDir)
	v.SetDefault("container.output_dir", defaults.Container.OutputDir)
	v.SetDefault("build.command", defaults.Build.Command)
	v.SetDefault("build.artifact", defaults.Build.Artifact)
	v.SetDefault("build.shell", defaults.Build.Shell)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFilePathOverride != "" {
		v.SetConfigFile(configFilePathOverride)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFilePathOverride, err)
		}
	} else {
		cfgDir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileExt)
		v.AddConfigPath(cfgDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
