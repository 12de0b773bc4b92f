package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

func (r *Runtime) Run(ctx context.Context) error {
	r.logger.Info("minewatch runtime starting",
		"addr", r.cfg.HTTPAddr,
		"persistence", r.cfg.PersistenceEnabled(),
		"llm_provider", r.cfg.LLMProvider,
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return r.runTracked(groupCtx, "api", func() error {
			err := r.httpServer.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		})
	})
	if r.alerts != nil {
		group.Go(func() error {
			return r.runTracked(groupCtx, "alerts", func() error {
				return r.alerts.Start(groupCtx)
			})
		})
	}
	if r.inbox != nil {
		group.Go(func() error {
			return r.runTracked(groupCtx, "inbox", func() error {
				return r.inbox.Start(groupCtx)
			})
		})
	}
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return r.httpServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// runTracked reports the component's lifecycle to the health registry
// and keeps its beat fresh while the component runs.
func (r *Runtime) runTracked(ctx context.Context, component string, run func() error) error {
	r.health.Starting(component, "starting")

	beatCtx, stopBeats := context.WithCancel(ctx)
	defer stopBeats()
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		r.health.Beat(component, "running")
		for {
			select {
			case <-beatCtx.Done():
				return
			case <-ticker.C:
				r.health.Beat(component, "running")
			}
		}
	}()

	err := run()
	if err != nil && ctx.Err() == nil {
		r.health.Degrade(component, "exited with error", err)
		return err
	}
	r.health.Stopped(component, "stopped")
	return err
}

// Ask runs one question through the chat pipeline without serving HTTP.
func (r *Runtime) Ask(ctx context.Context, question string) (string, error) {
	return r.chat.Answer(ctx, question)
}

func (r *Runtime) Close() error {
	if r.store == nil {
		return nil
	}
	return r.store.Close()
}
