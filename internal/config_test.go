package internal

import (
	"strings"
	"testing"

	"github.com/starford/scalesmith/internal/chord"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	prefs, err := cfg.Chords.Preferences()
	if err != nil {
		t.Fatal(err)
	}
	if prefs.Level != chord.LevelBasic || prefs.Symbology != chord.SymbologyRaw {
		t.Errorf("prefs = %+v", prefs)
	}
}

func TestChordsConfig_Validate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     ChordsConfig
		wantErr bool
	}{
		{"off is valid", ChordsConfig{Level: "off", Symbology: "jazz"}, false},
		{"case insensitive", ChordsConfig{Level: "ALL", Symbology: "Common"}, false},
		{"unknown level", ChordsConfig{Level: "most", Symbology: "raw"}, true},
		{"unknown symbology", ChordsConfig{Level: "basic", Symbology: "greek"}, true},
		{"empty level", ChordsConfig{Symbology: "raw"}, true},
	}
	for _, tc := range cases {
		err := tc.cfg.Validate()
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: err = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestLibraryConfig_Validate(t *testing.T) {
	cfg := LibraryConfig{Path: "./scales", Include: []string{"custom/*.yaml"}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid library config: %v", err)
	}
	cfg.Include = []string{"[broken"}
	if err := cfg.Validate(); err == nil {
		t.Error("invalid glob should fail validation")
	}
	cfg = LibraryConfig{}
	if err := cfg.Validate(); err == nil {
		t.Error("empty path should fail validation")
	}
}

func TestAuthConfig_JWTMode(t *testing.T) {
	cfg := AuthConfig{Mode: "jwt"}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "secret is empty") {
		t.Fatalf("jwt mode without secret: %v", err)
	}
	cfg.Secret = "s3cret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("jwt mode with secret should pass: %v", err)
	}
	if !cfg.AuthEnabled() || cfg.Middleware() == nil {
		t.Error("jwt mode should be enabled with a middleware")
	}
}

func TestAuthConfig_DisabledHasNoMiddleware(t *testing.T) {
	cfg := AuthConfig{Mode: AuthModeDisabled}
	if cfg.Middleware() != nil {
		t.Error("disabled mode should not install middleware")
	}
}
