package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	Extra string `yaml:"extra"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnvAndKeepsDefaults(t *testing.T) {
	t.Setenv("SCALESMITH_TEST_NAME", "chords")
	path := writeFile(t, "name: ${SCALESMITH_TEST_NAME}\nport: 9000\n")

	cfg := sample{Extra: "kept"}
	if err := Load(path, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "chords" || cfg.Port != 9000 || cfg.Extra != "kept" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_ValidationFails(t *testing.T) {
	path := writeFile(t, "port: 0\n")
	cfg := sample{}
	err := Load(path, &cfg)
	if err == nil || !strings.Contains(err.Error(), "config validation failed") {
		t.Errorf("err = %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeFile(t, "port: [1, 2\n")
	cfg := sample{Port: 1}
	if err := Load(path, &cfg); err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("err = %v", err)
	}
}

func TestLoadIfExists(t *testing.T) {
	cfg := sample{Port: 8080}
	loaded, err := LoadIfExists(filepath.Join(t.TempDir(), "missing.yaml"), &cfg)
	if err != nil || loaded {
		t.Fatalf("missing file: loaded=%v err=%v", loaded, err)
	}

	bad := sample{}
	if _, err := LoadIfExists(filepath.Join(t.TempDir(), "missing.yaml"), &bad); err == nil {
		t.Error("defaults must still be validated")
	}

	path := writeFile(t, "port: 7000\n")
	loaded, err = LoadIfExists(path, &cfg)
	if err != nil || !loaded || cfg.Port != 7000 {
		t.Errorf("existing file: loaded=%v err=%v cfg=%+v", loaded, err, cfg)
	}
}
