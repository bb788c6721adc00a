package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bmatcuk/doublestar/v4"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/scalesmith/internal/api"
	"github.com/starford/scalesmith/internal/chord"
	"github.com/starford/scalesmith/internal/library"
	"github.com/starford/scalesmith/internal/scaleservice"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
	AuthModeJWT      = "jwt"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Library LibraryConfig     `yaml:"library"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Auth    AuthConfig        `yaml:"auth"`
	Chords  ChordsConfig      `yaml:"chords"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Library.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Chords.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// LibraryConfig holds the scale library directory and the glob patterns of
// the files loaded from it. An empty Include selects library.DefaultInclude.
type LibraryConfig struct {
	Path    string   `yaml:"path"`
	Include []string `yaml:"include"`
}

// Validate validates the library configuration.
func (c *LibraryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Include, validation.Each(validation.Required, validation.By(validGlob))),
	)
}

func validGlob(value interface{}) error {
	pattern, _ := value.(string)
	if !doublestar.ValidatePattern(pattern) {
		return errors.New("invalid glob pattern")
	}
	return nil
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
//   - "jwt": Bearer JWT signed with HS256; Secret must be non-empty.
type AuthConfig struct {
	Mode   string `yaml:"mode"`
	Token  string `yaml:"token"`
	Secret string `yaml:"secret"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// An empty mode means disabled.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken, AuthModeJWT)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	if c.Mode == AuthModeJWT && c.Secret == "" {
		return fmt.Errorf("auth: mode is %q but secret is empty", AuthModeJWT)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken || c.Mode == AuthModeJWT
}

// Middleware returns the API auth middleware for the mode, or nil when
// authentication is disabled.
func (c *AuthConfig) Middleware() func(http.Handler) http.Handler {
	switch c.Mode {
	case AuthModeToken:
		return api.AuthMiddleware(true, c.Token)
	case AuthModeJWT:
		return api.JWTMiddleware([]byte(c.Secret))
	default:
		return nil
	}
}

// ChordsConfig holds the chord display preferences used when a request
// leaves them out.
type ChordsConfig struct {
	Level     string `yaml:"level"`
	Symbology string `yaml:"symbology"`
}

// Validate validates the chord preferences.
func (c *ChordsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.Required, validation.By(func(value interface{}) error {
			_, err := chord.ParseLevel(value.(string))
			return err
		})),
		validation.Field(&c.Symbology, validation.Required, validation.By(func(value interface{}) error {
			_, err := chord.ParseSymbology(value.(string))
			return err
		})),
	)
}

// Preferences converts the validated chord settings for the scale service.
func (c *ChordsConfig) Preferences() (scaleservice.Preferences, error) {
	lvl, err := chord.ParseLevel(c.Level)
	if err != nil {
		return scaleservice.Preferences{}, err
	}
	sym, err := chord.ParseSymbology(c.Symbology)
	if err != nil {
		return scaleservice.Preferences{}, err
	}
	return scaleservice.Preferences{Level: lvl, Symbology: sym}, nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Library: LibraryConfig{
			Path:    "./scales",
			Include: append([]string(nil), library.DefaultInclude...),
		},
		SQLite: SQLiteConfig{
			Path: "./scalesmith.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Chords: ChordsConfig{
			Level:     chord.LevelBasic.String(),
			Symbology: chord.SymbologyRaw.String(),
		},
	}
}
