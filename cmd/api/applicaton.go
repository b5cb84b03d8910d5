package main

import (
	"log/slog"
	"time"

	"cinelog/proj/internal/api/tasks"
	"cinelog/proj/internal/clients/metadata"
	"cinelog/proj/internal/config"
	"cinelog/proj/internal/services/movies"
	"cinelog/proj/internal/services/reviews"
	"cinelog/proj/internal/services/search"
	"cinelog/proj/internal/storage/postgres"
	storagemodels "cinelog/proj/internal/storage/postgres/models"

	govalidator "github.com/go-playground/validator/v10"
)

type Application struct {
	cfg       *config.Config
	log       *slog.Logger
	Http      *Http
	validator *govalidator.Validate
	tasks     *tasks.BackgroundTasks
	search    *search.Registry
	movies    *movies.Assembler
	reviews   reviews.ReviewStorage
	sweepStop chan struct{}
	sweepDone chan struct{}
}

func NewApplication(cfg *config.Config, log *slog.Logger, storage *postgres.Storage) *Application {
	models := storagemodels.New(storage)
	metadataClient, err := metadata.New(log, cfg.Metadata.BaseURL, cfg.Metadata.APIKey, cfg.Metadata.Timeout)
	if err != nil {
		panic(err)
	}
	bgTasks := tasks.New(log, cfg.Tasks.Workers, cfg.Tasks.QueueSize)
	bgTasks.Run()
	searchRegistry := search.NewRegistry(
		log,
		metadataClient,
		bgTasks,
		cfg.Search.DebounceWindow,
		cfg.Search.SessionTTL,
	)
	app := &Application{
		cfg:       cfg,
		log:       log,
		validator: govalidator.New(govalidator.WithRequiredStructEnabled()),
		tasks:     bgTasks,
		search:    searchRegistry,
		reviews:   models.Reviews,
		Http: &Http{
			log: log,
			cfg: cfg,
		},
	}
	app.movies = movies.New(log, metadataClient, func(scope reviews.Scope) movies.ReviewLoader {
		return app.reviewManager(scope)
	})
	app.runSweeper(cfg.Search.SessionTTL)
	return app
}

// runSweeper queues a session sweep onto the task pool once per
// interval until stopSweeper is called.
func (app *Application) runSweeper(interval time.Duration) {
	app.sweepStop = make(chan struct{})
	app.sweepDone = make(chan struct{})
	go func() {
		defer close(app.sweepDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				app.tasks.Add(app.search.Sweep)
			case <-app.sweepStop:
				return
			}
		}
	}()
}

// stopSweeper blocks until the sweeper goroutine has exited. It must
// complete before the task pool shuts down, so no sweep is queued onto
// the pool's closed channel.
func (app *Application) stopSweeper() {
	close(app.sweepStop)
	<-app.sweepDone
}

// reviewManager builds the lifecycle manager for one scope. Managers
// are cheap; one is created per request and torn down with it.
func (app *Application) reviewManager(scope reviews.Scope) *reviews.Manager {
	return reviews.New(app.log, app.reviews, app.validator, scope)
}
