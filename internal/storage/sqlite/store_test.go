package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"werewolf/internal/domain"
)

func TestSnapshotRoundTrip(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	g := newGame(t)
	if err := store.SaveSnapshot(ctx, g); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
	g.Round = 2
	g.Lookup("s").Spend(domain.PowerSeance)
	if err := store.SaveSnapshot(ctx, g); err != nil {
		t.Fatalf("save snapshot second: %v", err)
	}

	n, err := store.CountSnapshots(ctx, "ROOM01")
	if err != nil {
		t.Fatalf("count snapshots: %v", err)
	}
	if n != 2 {
		t.Fatalf("snapshots = %d, want 2", n)
	}

	latest, err := store.LatestSnapshot(ctx, "ROOM01")
	if err != nil {
		t.Fatalf("latest snapshot: %v", err)
	}
	if latest.Round != 2 {
		t.Fatalf("round = %d, want 2", latest.Round)
	}
	if !latest.Lookup("s").HasSpent(domain.PowerSeance) {
		t.Fatal("spent power lost")
	}
}

func TestLatestSnapshotMissing(t *testing.T) {
	store := openTempStore(t)
	if _, err := store.LatestSnapshot(context.Background(), "NOPE"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want %v", err, ErrNotFound)
	}
}

func TestSaveResultKeepsFirst(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	first := &domain.Victory{Reason: domain.VictoryOverrun, Side: domain.SideWolves, Winners: []string{"w1"}}
	if err := store.SaveResult(ctx, "ROOM01", first, 3); err != nil {
		t.Fatalf("save result: %v", err)
	}
	if err := store.SaveResult(ctx, "ROOM01", &domain.Victory{Reason: domain.VictoryNobody}, 4); err != nil {
		t.Fatalf("save result again: %v", err)
	}
	if err := store.SaveResult(ctx, "ROOM02", nil, 1); err == nil {
		t.Fatal("expected error for missing victory")
	}

	got, err := store.Result(ctx, "ROOM01")
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if got.Reason != domain.VictoryOverrun || got.Side != domain.SideWolves || got.Rounds != 3 {
		t.Fatalf("result = %+v", got)
	}
	if !reflect.DeepEqual(got.Winners, []string{"w1"}) {
		t.Fatalf("winners = %v, want [w1]", got.Winners)
	}

	n, err := store.CountResults(ctx)
	if err != nil {
		t.Fatalf("count results: %v", err)
	}
	if n != 1 {
		t.Fatalf("results = %d, want 1", n)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "werewolf.db")
	ctx := context.Background()

	store, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.SaveSnapshot(ctx, newGame(t)); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.LatestSnapshot(ctx, "ROOM01"); err != nil {
		t.Fatalf("latest snapshot after reopen: %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}

func newGame(t *testing.T) *domain.Game {
	t.Helper()
	g, err := domain.NewGame("ROOM01", []*domain.Player{
		domain.NewPlayer("w1", "Wolf", domain.RoleWerewolf),
		domain.NewPlayer("s", "Seer", domain.RoleMedium),
		domain.NewPlayer("v1", "Vic", domain.RoleVillager),
	})
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return g
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "werewolf.db")
	store, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
