// Package config loads the CLI configuration from ~/.inline-edit/config.toml
// and IE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/inline-edit/internal/application"
	"github.com/bnema/inline-edit/internal/domain"
	"github.com/bnema/inline-edit/internal/logging"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "IE"
	configDir  = ".inline-edit"
	configName = "config"
	configType = "toml"

	KeyBackend         = "documents.backend"
	KeyDocumentsPath   = "documents.path"
	KeyDraftsPath      = "drafts.path"
	KeyDebounce        = "editor.debounce"
	KeyAutosave        = "editor.autosave"
	KeyHistorySize     = "editor.history_size"
	KeySavedDisplay    = "editor.saved_display"
	KeyHistoryCoalesce = "editor.history_coalesce"
	KeyRenderStyle     = "render.style"
	KeyLogLevel        = "log.level"
	KeyLogFile         = "log.file"
	KeyAssistCommand   = "assist.command"
)

type Backend string

const (
	BackendMarkdown Backend = "markdown"
	BackendTOML     Backend = "toml"
)

type Config struct {
	Backend Backend
	// DocumentsPath is empty when the backend default applies.
	DocumentsPath string
	DraftsPath    string
	Editor        EditorConfig
	RenderStyle   string
	LogLevel      string
	LogFile       string
	AssistCommand string
}

type EditorConfig struct {
	Debounce        time.Duration
	Autosave        bool
	HistorySize     int
	SavedDisplay    time.Duration
	HistoryCoalesce time.Duration
}

// Setup registers defaults, the environment binding and the config file on v.
// An explicit file must exist; the default location is optional.
func Setup(v *viper.Viper, file string) error {
	v.SetDefault(KeyBackend, string(BackendMarkdown))
	v.SetDefault(KeyDebounce, application.DefaultDebounce)
	v.SetDefault(KeyAutosave, true)
	v.SetDefault(KeyHistorySize, domain.DefaultMaxHistorySize)
	v.SetDefault(KeySavedDisplay, application.DefaultSavedDisplay)
	v.SetDefault(KeyHistoryCoalesce, time.Duration(0))
	v.SetDefault(KeyRenderStyle, "dark")
	v.SetDefault(KeyLogLevel, logging.DefaultLevel)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}
	v.SetDefault(KeyDraftsPath, filepath.Join(homeDir, configDir, "drafts"))

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", file, err)
		}
		return nil
	}

	v.AddConfigPath(filepath.Join(homeDir, configDir))
	v.SetConfigName(configName)
	v.SetConfigType(configType)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Backend:       Backend(strings.ToLower(strings.TrimSpace(v.GetString(KeyBackend)))),
		DocumentsPath: v.GetString(KeyDocumentsPath),
		DraftsPath:    v.GetString(KeyDraftsPath),
		Editor: EditorConfig{
			Debounce:        v.GetDuration(KeyDebounce),
			Autosave:        v.GetBool(KeyAutosave),
			HistorySize:     v.GetInt(KeyHistorySize),
			SavedDisplay:    v.GetDuration(KeySavedDisplay),
			HistoryCoalesce: v.GetDuration(KeyHistoryCoalesce),
		},
		RenderStyle:   v.GetString(KeyRenderStyle),
		LogLevel:      v.GetString(KeyLogLevel),
		LogFile:       v.GetString(KeyLogFile),
		AssistCommand: strings.TrimSpace(v.GetString(KeyAssistCommand)),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.Backend {
	case BackendMarkdown, BackendTOML:
	default:
		errs = append(errs, fmt.Errorf("%s: unsupported backend %q", KeyBackend, c.Backend))
	}
	if c.DraftsPath == "" {
		errs = append(errs, fmt.Errorf("%s is empty", KeyDraftsPath))
	}
	if c.Editor.Debounce <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", KeyDebounce))
	}
	if c.Editor.HistorySize < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1", KeyHistorySize))
	}
	if c.Editor.SavedDisplay <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", KeySavedDisplay))
	}
	if c.Editor.HistoryCoalesce < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", KeyHistoryCoalesce))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", KeyLogLevel, err))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c Config) Session() application.SessionConfig {
	return application.SessionConfig{
		Debounce:        c.Editor.Debounce,
		DisableAutosave: !c.Editor.Autosave,
		MaxHistorySize:  c.Editor.HistorySize,
		SavedDisplay:    c.Editor.SavedDisplay,
		HistoryCoalesce: c.Editor.HistoryCoalesce,
	}
}
