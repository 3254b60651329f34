package state

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pixil98/go-testutil"
)

func TestRegistryAdd(t *testing.T) {
	r := NewRegistry()

	if err := r.Add(1, &PlayerState{Username: "alice"}); err != nil {
		t.Fatalf("adding player: %v", err)
	}
	testutil.AssertEqual(t, "len", r.Len(), 1)

	// A second add for the same id is rejected and leaves the original.
	err := r.Add(1, &PlayerState{Username: "impostor"})
	testutil.AssertEqual(t, "duplicate error", err, ErrPlayerExists, cmpopts.EquateErrors())

	ps, ok := r.Get(1)
	testutil.AssertEqual(t, "found", ok, true)
	testutil.AssertEqual(t, "username", ps.Username, "alice")
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()

	if err := r.Add(1, &PlayerState{Username: "alice"}); err != nil {
		t.Fatalf("adding player: %v", err)
	}

	r.Remove(1)
	_, ok := r.Get(1)
	testutil.AssertEqual(t, "found after remove", ok, false)

	// Removing again is a no-op.
	r.Remove(1)
	testutil.AssertEqual(t, "len", r.Len(), 0)
}

func TestRegistrySnapshot(t *testing.T) {
	r := NewRegistry()

	for id := uint16(1); id <= 3; id++ {
		if err := r.Add(id, &PlayerState{Username: "p", CurrentScene: "Town_01"}); err != nil {
			t.Fatalf("adding player %d: %v", id, err)
		}
	}

	snap := r.Snapshot()
	testutil.AssertEqual(t, "snapshot size", len(snap), 3)

	// Mutating the registry does not change an existing snapshot.
	r.Remove(2)
	testutil.AssertEqual(t, "snapshot size after remove", len(snap), 3)
	testutil.AssertEqual(t, "registry len after remove", r.Len(), 2)

	// The state pointers are shared, so field updates are visible.
	snap[1].CurrentScene = "Cave_02"
	ps, _ := r.Get(1)
	testutil.AssertEqual(t, "shared state", ps.CurrentScene, "Cave_02")
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry()

	for id := uint16(1); id <= 3; id++ {
		if err := r.Add(id, &PlayerState{}); err != nil {
			t.Fatalf("adding player %d: %v", id, err)
		}
	}

	r.Clear()
	testutil.AssertEqual(t, "len", r.Len(), 0)
}

func TestRegistryInfos(t *testing.T) {
	r := NewRegistry()

	if err := r.Add(7, &PlayerState{
		Username:     "alice",
		CurrentScene: "Town_01",
		Team:         1,
		SkinId:       4,
	}); err != nil {
		t.Fatalf("adding player: %v", err)
	}

	infos := r.Infos()
	testutil.AssertEqual(t, "info count", len(infos), 1)
	testutil.AssertEqual(t, "id", infos[0].Id, uint16(7))
	testutil.AssertEqual(t, "username", infos[0].Username, "alice")
	testutil.AssertEqual(t, "scene", infos[0].Scene, "Town_01")
	testutil.AssertEqual(t, "skin", infos[0].SkinId, uint16(4))
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for id := uint16(0); id < 200; id++ {
			_ = r.Add(id, &PlayerState{Username: "p"})
		}
	}()
	go func() {
		defer wg.Done()
		for id := uint16(0); id < 200; id++ {
			r.Remove(id)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			for range r.Snapshot() {
			}
		}
	}()
	wg.Wait()
}
