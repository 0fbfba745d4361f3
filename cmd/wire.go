package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	assistexec "github.com/bnema/inline-edit/internal/adapters/assist/exec"
	"github.com/bnema/inline-edit/internal/adapters/drafts"
	markdownrender "github.com/bnema/inline-edit/internal/adapters/render/markdown"
	statusadapter "github.com/bnema/inline-edit/internal/adapters/render/status"
	markdownrepo "github.com/bnema/inline-edit/internal/adapters/repo/markdown"
	tomlrepo "github.com/bnema/inline-edit/internal/adapters/repo/toml"
	"github.com/bnema/inline-edit/internal/application"
	"github.com/bnema/inline-edit/internal/config"
	"github.com/bnema/inline-edit/internal/logging"
	"github.com/bnema/inline-edit/internal/ports"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	config  config.Config
	service *application.DocumentService
	drafts  ports.DraftStore
	logger  *slog.Logger

	// watchDir is the directory holding one file per document; empty when the
	// backend cannot report external changes.
	watchDir      string
	lastSelfWrite func() time.Time

	statusRenderer func([]application.DocumentSummary, statusadapter.RenderOptions) (string, error)
	newTransformer func(command string) (ports.SelectionTransformer, error)
	now            func() time.Time

	logCloser io.Closer
}

func (a *app) wire(cmd *cobra.Command, v *viper.Viper, configFile string) error {
	if err := config.Setup(v, configFile); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	a.config = cfg

	if err := a.wireLogger(cmd, cfg); err != nil {
		return fmt.Errorf("wire logger: %w", err)
	}

	var repo ports.DocumentRepository
	switch cfg.Backend {
	case config.BackendTOML:
		tomlRepo, err := tomlrepo.NewRepository(v)
		if err != nil {
			return fmt.Errorf("wire document repository: %w", err)
		}
		repo = tomlRepo
	default:
		mdRepo, err := markdownrepo.NewRepository(v)
		if err != nil {
			return fmt.Errorf("wire document repository: %w", err)
		}
		repo = mdRepo
		a.watchDir = mdRepo.Root()
		a.lastSelfWrite = mdRepo.LastSelfWrite
	}

	a.service = application.NewDocumentService(repo, ports.SystemClock{}, a.logger, cfg.Session())
	a.drafts = drafts.NewStore(cfg.DraftsPath)
	a.statusRenderer = statusadapter.Render
	a.newTransformer = func(command string) (ports.SelectionTransformer, error) {
		transformer, err := assistexec.NewTransformer(command)
		if err != nil {
			return nil, err
		}
		return transformer, nil
	}
	a.now = time.Now

	a.logger.Debug("wired", "backend", cfg.Backend, "documents", v.GetString(config.KeyDocumentsPath))
	return nil
}

func (a *app) wireLogger(cmd *cobra.Command, cfg config.Config) error {
	if cfg.LogFile != "" {
		logger, closer, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
		if err != nil {
			return err
		}
		a.logger, a.logCloser = logger, closer
		return nil
	}

	if _, ok := cmd.Annotations[annotationTUI]; ok {
		a.logger = logging.Discard()
		return nil
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func (a *app) markdownRenderer(width int) (*markdownrender.Renderer, error) {
	return markdownrender.NewRenderer(markdownrender.Options{Style: a.config.RenderStyle, Width: width})
}

// close releases every open session and the log file.
func (a *app) close() error {
	if a.service != nil {
		a.service.CloseAll()
	}
	if a.logCloser == nil {
		return nil
	}
	err := a.logCloser.Close()
	a.logCloser = nil
	return err
}
