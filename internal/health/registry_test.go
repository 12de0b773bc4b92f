package health

import (
	"errors"
	"testing"
	"time"
)

func TestSnapshotMarksStaleComponent(t *testing.T) {
	registry := NewRegistry()
	registry.Beat("alerts", "poll cycle completed")

	registry.mu.Lock()
	entry := registry.components["alerts"]
	entry.lastBeatAt = time.Now().UTC().Add(-3 * time.Minute)
	registry.components["alerts"] = entry
	registry.mu.Unlock()

	snapshot := registry.Snapshot(time.Minute)
	if snapshot.Overall != StateDegraded {
		t.Fatalf("expected degraded overall, got %s", snapshot.Overall)
	}
	if len(snapshot.Components) != 1 || snapshot.Components[0].State != StateStale {
		t.Fatalf("expected one stale component, got %+v", snapshot.Components)
	}
}

func TestSnapshotReportsWorstState(t *testing.T) {
	registry := NewRegistry()
	registry.Beat("api", "serving")
	registry.Degrade("alerts", "poll failed", errors.New("connection refused"))

	snapshot := registry.Snapshot(0)
	if snapshot.Overall != StateDegraded {
		t.Fatalf("expected degraded overall, got %s", snapshot.Overall)
	}
	if snapshot.Components[0].Name != "alerts" || snapshot.Components[0].Error != "connection refused" {
		t.Fatalf("unexpected components: %+v", snapshot.Components)
	}
}

func TestSnapshotEmptyRegistryIsHealthy(t *testing.T) {
	registry := NewRegistry()
	snapshot := registry.Snapshot(time.Minute)
	if snapshot.Overall != StateHealthy || len(snapshot.Components) != 0 {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
}

func TestStoppedComponentNeverGoesStale(t *testing.T) {
	registry := NewRegistry()
	registry.Stopped("inbox", "shut down")

	registry.mu.Lock()
	entry := registry.components["inbox"]
	entry.lastBeatAt = time.Now().UTC().Add(-time.Hour)
	registry.components["inbox"] = entry
	registry.mu.Unlock()

	snapshot := registry.Snapshot(time.Minute)
	if snapshot.Components[0].State != StateStopped {
		t.Fatalf("expected stopped, got %s", snapshot.Components[0].State)
	}
	if snapshot.Overall != StateHealthy {
		t.Fatalf("expected healthy overall, got %s", snapshot.Overall)
	}
}
