package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/khanijo/minewatch/internal/store"
)

// Inbox watches a directory for dropped incident JSON files and inserts
// each one. A processed file is renamed with a .done suffix so repeated
// events for the same path are harmless.
type Inbox struct {
	dir     string
	sink    Sink
	hub     Broadcaster
	logger  *slog.Logger
	watcher *fsnotify.Watcher
}

func NewInbox(dir string, sink Sink, hub Broadcaster, logger *slog.Logger) (*Inbox, error) {
	fileWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &Inbox{
		dir:     dir,
		sink:    sink,
		hub:     hub,
		logger:  logger,
		watcher: fileWatcher,
	}, nil
}

func (in *Inbox) Start(ctx context.Context) error {
	defer in.watcher.Close()

	if err := os.MkdirAll(in.dir, 0o755); err != nil {
		return fmt.Errorf("create inbox dir: %w", err)
	}
	if err := in.watcher.Add(in.dir); err != nil {
		return fmt.Errorf("watch inbox dir %s: %w", in.dir, err)
	}
	in.logger.Info("incident inbox started", "dir", in.dir)

	// Files already sitting in the inbox get processed on startup.
	in.drainExisting(ctx)

	for {
		select {
		case <-ctx.Done():
			in.logger.Info("incident inbox stopped")
			return nil
		case event := <-in.watcher.Events:
			in.handleEvent(ctx, event)
		case err := <-in.watcher.Errors:
			if err != nil {
				in.logger.Error("inbox watcher error", "error", err)
			}
		}
	}
}

func (in *Inbox) drainExisting(ctx context.Context) {
	entries, err := os.ReadDir(in.dir)
	if err != nil {
		in.logger.Error("scan inbox dir failed", "error", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		in.processFile(ctx, filepath.Join(in.dir, entry.Name()))
	}
}

func (in *Inbox) handleEvent(ctx context.Context, event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}
	in.processFile(ctx, event.Name)
}

func (in *Inbox) processFile(ctx context.Context, filePath string) {
	if strings.ToLower(filepath.Ext(filePath)) != ".json" {
		return
	}
	raw, err := os.ReadFile(filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			in.logger.Error("read inbox file failed", "path", filePath, "error", err)
		}
		return
	}
	var input store.InsertIncidentInput
	if err := json.Unmarshal(raw, &input); err != nil {
		in.logger.Error("inbox file is not valid incident json", "path", filePath, "error", err)
		return
	}
	incident, err := in.sink.InsertIncident(ctx, input)
	if err != nil {
		in.logger.Error("insert inbox incident failed", "path", filePath, "error", err)
		return
	}
	if in.hub != nil {
		in.hub.Broadcast(incident)
	}
	if err := os.Rename(filePath, filePath+".done"); err != nil {
		in.logger.Warn("mark inbox file done failed", "path", filePath, "error", err)
	}
	in.logger.Info("inbox incident ingested", "path", filePath, "incident_id", incident.ID)
}
