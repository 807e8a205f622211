package session

import (
	"sync"
	"testing"
)

func TestInitGeneratesIDWhenBlank(t *testing.T) {
	store := NewStore()
	id := store.Init("")
	if id == "" {
		t.Fatalf("expected generated session id")
	}
	if _, err := store.Get(id); err != nil {
		t.Fatalf("expected session to exist: %v", err)
	}
}

func TestInitResetsExistingSession(t *testing.T) {
	store := NewStore()
	id := store.Init("abc")
	store.SetProfile(id, Profile{Location: "United Kingdom"})

	store.Init(id)
	sess, err := store.Get(id)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if sess.Profile.Location != "" {
		t.Fatalf("expected profile to be reset, got %q", sess.Profile.Location)
	}
}

func TestSetProfileCreatesSessionForUnknownID(t *testing.T) {
	store := NewStore()
	id := store.SetProfile("stale-id", Profile{Age: "25-34"})
	if id != "stale-id" {
		t.Fatalf("expected provided id to be kept, got %q", id)
	}
	sess, err := store.Get(id)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if sess.Profile.Age != "25-34" {
		t.Fatalf("profile not stored: %+v", sess.Profile)
	}
}

func TestMarkRunningRejectsSecondRun(t *testing.T) {
	store := NewStore()
	id := store.Init("")

	if !store.MarkRunning(id) {
		t.Fatalf("first MarkRunning should succeed")
	}
	if store.MarkRunning(id) {
		t.Fatalf("second MarkRunning should be rejected while in flight")
	}
	if !store.ClearRunning(id) {
		t.Fatalf("ClearRunning should report the flag was set")
	}
	if store.ClearRunning(id) {
		t.Fatalf("ClearRunning on idle session should report false")
	}
	if !store.MarkRunning(id) {
		t.Fatalf("MarkRunning should succeed again after clear")
	}
}

func TestDeleteRemovesSessionAndRunningFlag(t *testing.T) {
	store := NewStore()
	id := store.Init("")
	store.MarkRunning(id)

	if err := store.Delete(id); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := store.Get(id); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if store.IsRunning(id) {
		t.Fatalf("running flag should be gone after delete")
	}
	if err := store.Delete(id); err != ErrNotFound {
		t.Fatalf("double delete should return ErrNotFound, got %v", err)
	}
}

func TestSaveResultsAndStats(t *testing.T) {
	store := NewStore()
	a := store.Init("a")
	store.Init("b")
	store.MarkRunning("b")

	if err := store.SaveResults(a, map[string]string{"status": "success"}); err != nil {
		t.Fatalf("SaveResults returned error: %v", err)
	}
	if err := store.SaveResults("missing", nil); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown session, got %v", err)
	}

	sess, _ := store.Get(a)
	if !sess.HasResult {
		t.Fatalf("expected HasResult after SaveResults")
	}

	stats := store.Stats()
	if stats.TotalSessions != 2 || stats.ActiveRequests != 1 || stats.SessionsWithResult != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(stats.ActiveSessionIDs) != 1 || stats.ActiveSessionIDs[0] != "b" {
		t.Fatalf("unexpected active sessions: %v", stats.ActiveSessionIDs)
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore()
	id := store.Init("shared")

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.MarkRunning(id) {
				store.ClearRunning(id)
			}
			store.SetProfile(id, Profile{Interests: "music"})
			store.Get(id)
			store.Stats()
		}()
	}
	wg.Wait()

	if store.IsRunning(id) {
		t.Fatalf("no run should remain flagged after all goroutines finished")
	}
}
