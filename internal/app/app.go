// -----------------------------------------------------------------------
// App - Composition root wiring configuration, services, and handlers
// -----------------------------------------------------------------------

package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/medeor/internal/common"
	"github.com/ternarybob/medeor/internal/connectors/github"
	"github.com/ternarybob/medeor/internal/handlers"
	"github.com/ternarybob/medeor/internal/interfaces"
	"github.com/ternarybob/medeor/internal/models"
	"github.com/ternarybob/medeor/internal/services/agent"
	"github.com/ternarybob/medeor/internal/services/ranking"
	"github.com/ternarybob/medeor/internal/services/registry"
	"github.com/ternarybob/medeor/internal/services/research"
	"github.com/ternarybob/medeor/internal/services/scheduler"
	"github.com/ternarybob/medeor/internal/storage/badger"
)

// App holds the wired application: configuration, storage, services, and
// HTTP handlers. The server package builds its routes from here.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	BadgerDB     *badger.BadgerDB
	AuditStorage interfaces.AuditStorage

	Registry       *registry.Registry
	Admission      *research.Admission
	StatusReporter *scheduler.StatusReporter

	WebhookHandler *handlers.WebhookHandler
	JobHandler     *handlers.JobHandler
	APIHandler     *handlers.APIHandler
}

// New wires the application from configuration. A missing GitHub token
// degrades to jobs failing with a fixed message; a missing Anthropic key
// is a startup error because no job could ever make progress without the
// reasoning agent.
func New(config *common.Config) (*App, error) {
	logger := common.GetLogger()

	a := &App{
		Config: config,
		Logger: logger,
	}

	db, err := badger.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audit database: %w", err)
	}
	a.BadgerDB = db
	a.AuditStorage = badger.NewAuditStorage(db, logger)

	reasoningAgent, err := agent.NewClaudeAgent(&config.Claude, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize reasoning agent: %w", err)
	}

	var host interfaces.RepositoryHost
	githubHost, err := github.NewHost(&config.GitHub, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Repository host unavailable, jobs will fail until a token is configured")
	} else {
		host = githubHost
	}

	a.Registry = registry.NewRegistry(logger)

	processor := research.NewProcessor(host, reasoningAgent, a.AuditStorage, config.Research.WorkspaceDir, logger)

	repositories := buildRepositoryProfiles(config)
	logger.Info().Int("repositories", len(repositories)).Msg("Candidate repositories configured")

	a.Admission = research.NewAdmission(
		ranking.NewRanker(logger),
		a.Registry,
		processor,
		repositories,
		config.Alerts.IgnorePatterns,
		logger,
	)

	a.StatusReporter = scheduler.NewStatusReporter(a.Registry, logger)
	if config.Scheduler.Enabled {
		if err := a.StatusReporter.Start(config.Scheduler.StatusSchedule); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to start status reporter: %w", err)
		}
	}

	a.WebhookHandler = handlers.NewWebhookHandler(a.Admission)
	a.JobHandler = handlers.NewJobHandler(a.Registry)
	a.APIHandler = handlers.NewAPIHandler(a.Registry)

	return a, nil
}

// buildRepositoryProfiles converts configured repository entries into
// ranking profiles with defaults applied.
func buildRepositoryProfiles(config *common.Config) []*models.RepositoryProfile {
	profiles := make([]*models.RepositoryProfile, 0, len(config.GitHub.Repositories))
	for _, rc := range config.GitHub.Repositories {
		profile := models.NewRepositoryProfile(rc.Owner, rc.Name)
		if rc.Branch != "" {
			profile.Branch = rc.Branch
		}
		if len(rc.FilePatterns) > 0 {
			profile.FilePatterns = rc.FilePatterns
		}
		if len(rc.Keywords) > 0 {
			profile.Keywords = rc.Keywords
		}
		if rc.Priority != "" {
			profile.Priority = models.RepositoryPriority(rc.Priority)
		}
		profiles = append(profiles, profile)
	}
	return profiles
}

// Close releases application resources
func (a *App) Close() error {
	if a.StatusReporter != nil {
		a.StatusReporter.Stop()
	}
	if a.BadgerDB != nil {
		if err := a.BadgerDB.Close(); err != nil {
			return fmt.Errorf("failed to close audit database: %w", err)
		}
	}
	return nil
}
