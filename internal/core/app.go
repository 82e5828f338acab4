package core

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/ardenvale/illuminator-go/internal/bulkop"
	"github.com/ardenvale/illuminator-go/internal/config"
	"github.com/ardenvale/illuminator-go/internal/db"
	"github.com/ardenvale/illuminator-go/internal/illuminate"
	"github.com/ardenvale/illuminator-go/internal/jobs"
	"github.com/ardenvale/illuminator-go/internal/models"
	"github.com/ardenvale/illuminator-go/internal/pills"
	"github.com/ardenvale/illuminator-go/internal/store"
	"github.com/ardenvale/illuminator-go/internal/websocket"
	"github.com/ardenvale/illuminator-go/internal/worldimport"
	"github.com/ardenvale/illuminator-go/migrations"
)

// App holds the core components of the application shared between the HTTP
// server, the background jobs, and the bulk operation controllers.
type App struct {
	cfg        *config.Config
	database   *sql.DB
	st         *store.Store
	hub        *websocket.Hub
	jobManager *jobs.JobManager
	bulk       *bulkop.Registry
	pills      *pills.Registry
	version    string
	runCtx     context.Context
	runCancel  context.CancelFunc
}

// New sets up and returns a new App instance. It loads configuration, opens
// and migrates the database, starts the websocket hub, and wires one bulk
// operation controller per operation kind.
func New(version string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.RunMigrations(database, migrations.FS); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	var client illuminate.Client
	if cfg.LLM.APIKey != "" {
		client, err = illuminate.NewGenAIClient(context.Background(), cfg.LLM.APIKey)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to create model client: %w", err)
		}
	} else {
		log.Println("No API key configured, model calls will fail until one is set.")
	}

	app := assemble(cfg, database, client, version)
	log.Println("Core application setup complete.")
	return app, nil
}

// NewWithComponents builds an App from pre-constructed parts. Tests use this
// to inject an in-memory database and a fake model client.
func NewWithComponents(cfg *config.Config, database *sql.DB, client illuminate.Client, version string) *App {
	return assemble(cfg, database, client, version)
}

func assemble(cfg *config.Config, database *sql.DB, client illuminate.Client, version string) *App {
	hub := websocket.NewHub()
	go hub.Run()

	runCtx, runCancel := context.WithCancel(context.Background())
	app := &App{
		cfg:        cfg,
		runCtx:     runCtx,
		runCancel:  runCancel,
		database:   database,
		st:         store.New(database),
		hub:        hub,
		jobManager: jobs.NewManager(),
		bulk:       bulkop.NewRegistry(),
		pills:      pills.NewRegistry(),
		version:    version,
	}

	app.jobManager.Register("cohesion-sweep", "Cohesion Sweep", jobs.RunCohesionSweep)
	app.jobManager.Register("world-import", "World Import", worldimport.RunImportJob)

	svc := illuminate.NewService(client, app.st, cfg)
	for _, op := range svc.Operations() {
		c := bulkop.NewController(op.Kind, op.Label, op.Dispatch)
		app.bulk.Register(c)
		bulkop.BindPills(c, app.pills)
		app.watchProgress(c)
	}

	return app
}

// watchProgress mirrors every controller state change onto the websocket hub
// so connected workspaces can render progress live.
func (a *App) watchProgress(c *bulkop.Controller) {
	c.Subscribe(func(p bulkop.Progress) {
		a.hub.BroadcastJSON(bulkop.Update(p))
	})
}

func (a *App) DB() *sql.DB                  { return a.database }
func (a *App) Config() *config.Config       { return a.cfg }
func (a *App) Store() *store.Store          { return a.st }
func (a *App) WsHub() *websocket.Hub        { return a.hub }
func (a *App) JobManager() *jobs.JobManager { return a.jobManager }
func (a *App) Bulk() *bulkop.Registry       { return a.bulk }
func (a *App) Pills() *pills.Registry       { return a.pills }
func (a *App) Version() string              { return a.version }

// RunContext returns the app-lifetime context bulk runs execute under. It is
// cancelled when the app shuts down so in-flight dispatches can stop early.
func (a *App) RunContext() context.Context { return a.runCtx }

// WorkItemsFor resolves the records an operation kind runs over into the
// controller's work list, in the interleaved order the workspace shows.
func (a *App) WorkItemsFor(kind string, chronicleIDs, entityIDs []int64) ([]models.WorkItem, error) {
	var chronicles []models.WorkItem
	for _, id := range chronicleIDs {
		c, err := a.st.GetChronicle(id)
		if err != nil {
			return nil, fmt.Errorf("chronicle %d not found: %w", id, err)
		}
		chronicles = append(chronicles, models.ChronicleItem(c))
	}

	var entities []models.WorkItem
	for _, id := range entityIDs {
		e, err := a.st.GetEntity(id)
		if err != nil {
			return nil, fmt.Errorf("entity %d not found: %w", id, err)
		}
		entities = append(entities, models.EntityItem(e))
	}

	return illuminate.BuildInterleavedQueue(chronicles, entities), nil
}

// Close gracefully closes the application's resources, like the DB connection.
func (a *App) Close() {
	if a.runCancel != nil {
		a.runCancel()
	}
	if a.database != nil {
		a.database.Close()
	}
}
