package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/fitsync/fitsync/internal/apiclient"
	"github.com/fitsync/fitsync/internal/config"
	"github.com/fitsync/fitsync/internal/netmon"
	"github.com/fitsync/fitsync/internal/queue"
	"github.com/fitsync/fitsync/internal/repo"
	"github.com/fitsync/fitsync/internal/store"
)

// App wires the core components for one CLI invocation.
type App struct {
	Store      *store.Store
	API        *apiclient.Client
	Monitor    *netmon.Monitor
	Queue      *queue.Queue
	Profiles   *repo.ProfileRepo
	Foods      *repo.FoodRepo
	Diaries    *repo.DiaryRepo
	Activities *repo.ActivityRepo
}

// openApp opens the database and wires client, monitor, queue, repositories
// and replay handlers. Handler registration happens here, before any drain.
func openApp(ctx context.Context) (*App, error) {
	dir, err := config.DataDir()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(dir)
	if err != nil {
		return nil, err
	}

	api := apiclient.New(config.GetServerURL())
	api.SetToken(config.GetToken())
	api.SetLocale(config.GetLocale())

	interval := 30 * time.Second
	if cfg, err := config.Load(); err == nil && cfg.ProbeSeconds > 0 {
		interval = time.Duration(cfg.ProbeSeconds) * time.Second
	}
	mon := netmon.New(func(ctx context.Context) error {
		_, err := api.Health(ctx)
		return err
	}, interval)

	registry := queue.NewRegistry()
	q := queue.New(st, registry)

	app := &App{
		Store:      st,
		API:        api,
		Monitor:    mon,
		Queue:      q,
		Profiles:   repo.NewProfileRepo(st, api, mon),
		Foods:      repo.NewFoodRepo(st, api, mon),
		Diaries:    repo.NewDiaryRepo(st, api, mon, q),
		Activities: repo.NewActivityRepo(st, api, mon, q),
	}
	app.Diaries.RegisterHandlers(q)
	app.Activities.RegisterHandlers(q)

	// Reachability returning drains whatever queued up while offline.
	mon.OnBecameReachable(func() {
		if _, err := q.ProcessQueue(context.Background()); err != nil {
			fmt.Println("queue drain:", err)
		}
	})

	// Establish the initial snapshot so repositories can choose a side. The
	// startup probe gets a tight deadline; a black-holed network must not
	// stall every command for the full probe timeout.
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	mon.CheckNow(probeCtx)
	cancel()

	return app, nil
}

// Close releases the database.
func (a *App) Close() {
	a.Store.Close()
}

// drainAfterMutation runs a quick queue drain after a mutating command when
// auto-sync is on and the server is reachable. Errors are printed, not fatal.
func (a *App) drainAfterMutation(ctx context.Context) {
	if !config.AutoSyncEnabled() || !a.Monitor.IsReachable() {
		return
	}
	if _, err := a.Queue.ProcessQueue(ctx); err != nil {
		fmt.Println("auto-sync:", err)
	}
}
