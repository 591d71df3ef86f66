package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"prepmate/internal/app"
	"prepmate/internal/events"
	"prepmate/internal/httputil"
	"prepmate/internal/objstore"
	"prepmate/internal/store"
)

func main() {
	deps, err := app.BuildArchiver("prepmate-archiver")
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		return deps.Bus.Worker(ctx, events.KindSessionCompleted, archiveHandler(deps.Log, deps.Store, deps.Uploader))
	})
	g.Go(func() error {
		return httputil.ServeHealth(deps.Log, deps.Config.HealthPort, "prepmate-archiver")
	})

	deps.Log.Info("archiver running")
	if err := g.Wait(); err != nil {
		deps.Log.Error("archiver stopped", "err", err)
		os.Exit(1)
	}
}

// archiveHandler writes the full session document to the bucket once the
// prep sheet has been delivered. Returning an error leaves the event for
// the bus to log; completed sessions are immutable so a retry is safe.
func archiveHandler(log *slog.Logger, st store.Store, uploader objstore.Uploader) events.Handler {
	return func(ctx context.Context, ev events.Event) error {
		sess, err := st.GetSession(ctx, ev.SessionID)
		if err != nil {
			return fmt.Errorf("failed to load session %s: %w", ev.SessionID, err)
		}
		data, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("failed to encode session %s: %w", ev.SessionID, err)
		}
		name := fmt.Sprintf("archive/%s.json", ev.SessionID)
		url, err := uploader.Upload(ctx, name, data, "application/json")
		if err != nil {
			return fmt.Errorf("failed to upload archive for session %s: %w", ev.SessionID, err)
		}
		log.Info("session archived", "session_id", ev.SessionID, "url", url)
		return nil
	}
}
