// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	t.Parallel()

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "bad engine",
			mutate:  func(c *Config) { c.Engine = "lxc" },
			wantErr: ErrInvalidEngineName,
		},
		{
			name:    "bad image prefix",
			mutate:  func(c *Config) { c.ImagePrefix = "My Project" },
			wantErr: ErrInvalidImagePrefix,
		},
		{
			name:    "empty build command",
			mutate:  func(c *Config) { c.Build.Command = "  " },
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "empty work dir",
			mutate:  func(c *Config) { c.Container.WorkDir = "" },
			wantErr: ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want errors.Is(%v)", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	// Point the config search at an empty directory so the host config
	// cannot leak into the test.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine != EngineAuto {
		t.Errorf("Engine = %q, want %q", cfg.Engine, EngineAuto)
	}
	if cfg.ImagePrefix != "texbox" {
		t.Errorf("ImagePrefix = %q, want %q", cfg.ImagePrefix, "texbox")
	}
}

func TestLoad_ConfigFileOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "texbox.toml")
	content := "engine = \"docker\"\nimage_prefix = \"cv\"\n\n[build]\nartifact = \"cv.pdf\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	SetConfigFilePathOverride(path)
	t.Cleanup(func() { SetConfigFilePathOverride("") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine != EngineDocker {
		t.Errorf("Engine = %q, want %q", cfg.Engine, EngineDocker)
	}
	if cfg.ImagePrefix != "cv" {
		t.Errorf("ImagePrefix = %q, want %q", cfg.ImagePrefix, "cv")
	}
	if cfg.Build.Artifact != "cv.pdf" {
		t.Errorf("Build.Artifact = %q, want %q", cfg.Build.Artifact, "cv.pdf")
	}
	// Unset fields keep their defaults.
	if cfg.Build.Shell != "/bin/bash" {
		t.Errorf("Build.Shell = %q, want default %q", cfg.Build.Shell, "/bin/bash")
	}
}

func TestLoad_MissingOverrideFile(t *testing.T) {
	SetConfigFilePathOverride(filepath.Join(t.TempDir(), "nope.toml"))
	t.Cleanup(func() { SetConfigFilePathOverride("") })

	if _, err := Load(); err == nil {
		t.Error("Load with missing --config file = nil error, want error")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TEXBOX_ENGINE", "podman")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine != EnginePodman {
		t.Errorf("Engine = %q, want env override %q", cfg.Engine, EnginePodman)
	}
}
