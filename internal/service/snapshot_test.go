package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gw2vault-api/internal/cache"
	"gw2vault-api/internal/gw2"
	"gw2vault-api/internal/model"
	"gw2vault-api/internal/repository"
)

const testKey = "ABCDEF01-2345-6789-ABCD-EF0123456789ABCDEF01-2345-6789-ABCD-EF0123456789"

type fakeCollector struct {
	mu      sync.Mutex
	snap    *model.Snapshot
	err     error
	calls   int32
	keys    []string
	gate    chan struct{}
	started chan struct{}
	once    sync.Once
}

func (f *fakeCollector) factory(apiKey string) Collector {
	f.mu.Lock()
	f.keys = append(f.keys, apiKey)
	f.mu.Unlock()
	return f
}

func (f *fakeCollector) Collect(ctx context.Context) (*model.Snapshot, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.started != nil {
		f.once.Do(func() { close(f.started) })
	}
	if f.gate != nil {
		<-f.gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap, f.err
}

func (f *fakeCollector) set(snap *model.Snapshot, err error) {
	f.mu.Lock()
	f.snap, f.err = snap, err
	f.mu.Unlock()
}

func testSnapshot(name string) *model.Snapshot {
	return &model.Snapshot{
		Account: model.AccountData{
			Name:      name,
			Inventory: []gw2.Slot{{ID: 1, Count: 1}},
			Bank:      []gw2.Slot{},
			Materials: []gw2.Material{{ID: 2, Category: 5, Count: 10}},
		},
		Characters: []model.CharacterData{{
			Name: "Alpha", Race: "Norn", Profession: "Ranger", Level: 80,
			Inventory: []gw2.Slot{},
			EquipmentTabs: []gw2.EquipmentTab{{Tab: 1, IsActive: true, Equipment: []gw2.Slot{
				{ID: 1, Count: 1, Slot: "Sickle"},
			}}},
		}},
		Items: []gw2.Item{
			{ID: 1, Name: "Sickle", Type: gw2.ItemTypeGathering, Rarity: "Rare", Details: &gw2.GatheringDetails{Type: "Foraging"}},
			{ID: 2, Name: "Ore", Type: gw2.ItemTypeCraftingMaterial, Rarity: "Basic"},
		},
		Itemstats: []gw2.Itemstat{},
		FetchedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newTestSnapshotService(t *testing.T, fc *fakeCollector) (*SnapshotService, *cache.MemoryCache, repository.SnapshotRepository) {
	t.Helper()

	repo, err := repository.NewSQLiteSnapshotRepository(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { repo.Close() })

	c := cache.NewMemoryCache(time.Hour)
	t.Cleanup(func() { c.Close() })

	return NewSnapshotService(repo, c, time.Minute, fc.factory), c, repo
}

func TestSnapshotGetCollectsOnce(t *testing.T) {
	fc := &fakeCollector{snap: testSnapshot("Tester.1234")}
	svc, c, _ := newTestSnapshotService(t, fc)
	ctx := context.Background()

	first, err := svc.Get(ctx, testKey)
	if err != nil {
		t.Fatal(err)
	}
	if first.Account.Name != "Tester.1234" || len(first.Items) != 2 {
		t.Errorf("snapshot = %+v", first)
	}

	if _, err := svc.Get(ctx, "  "+testKey+"\n"); err != nil {
		t.Fatal(err)
	}

	c.Clear(ctx)
	second, err := svc.Get(ctx, testKey)
	if err != nil {
		t.Fatal(err)
	}
	if !second.FetchedAt.Equal(first.FetchedAt) {
		t.Errorf("stored snapshot FetchedAt = %v", second.FetchedAt)
	}

	if calls := atomic.LoadInt32(&fc.calls); calls != 1 {
		t.Errorf("collector called %d times, want 1", calls)
	}
	if fc.keys[0] != testKey {
		t.Errorf("collector got key %q", fc.keys[0])
	}
}

func TestSnapshotStoresKeyHashOnly(t *testing.T) {
	fc := &fakeCollector{snap: testSnapshot("Tester.1234")}
	svc, _, repo := newTestSnapshotService(t, fc)
	ctx := context.Background()

	if _, err := svc.Get(ctx, testKey); err != nil {
		t.Fatal(err)
	}

	if got, _ := repo.Get(ctx, testKey); got != nil {
		t.Error("snapshot stored under the raw key")
	}
	stored, err := repo.Get(ctx, KeyHash(testKey))
	if err != nil || stored == nil {
		t.Fatalf("snapshot not stored under hash: %v", err)
	}
	if len(stored.KeyHash) != 64 {
		t.Errorf("key hash = %q", stored.KeyHash)
	}
}

func TestSnapshotRefreshFailureKeepsPrevious(t *testing.T) {
	fc := &fakeCollector{snap: testSnapshot("Tester.1234")}
	svc, _, _ := newTestSnapshotService(t, fc)
	ctx := context.Background()

	if _, err := svc.Refresh(ctx, testKey); err != nil {
		t.Fatal(err)
	}
	before, err := svc.Meta(ctx, testKey)
	if err != nil {
		t.Fatal(err)
	}

	boom := &gw2.Error{Kind: gw2.KindUnexpectedStatus, StatusCode: 502, StatusText: "Bad Gateway"}
	fc.set(nil, boom)

	if _, err := svc.Refresh(ctx, testKey); !errors.Is(err, gw2.ErrUnexpectedStatus) {
		t.Fatalf("Refresh error = %v", err)
	}

	after, err := svc.Meta(ctx, testKey)
	if err != nil {
		t.Fatal(err)
	}
	if after.AccountName != before.AccountName || !after.FetchedAt.Equal(before.FetchedAt) || after.SizeBytes != before.SizeBytes {
		t.Errorf("failed refresh replaced the snapshot: %+v -> %+v", before, after)
	}

	snap, err := svc.Get(ctx, testKey)
	if err != nil || snap.Account.Name != "Tester.1234" {
		t.Errorf("Get after failed refresh = %+v, %v", snap, err)
	}

	runs, total, err := svc.ListRuns(ctx, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(runs) != 2 {
		t.Fatalf("runs = %+v", runs)
	}
	var failed int
	for _, run := range runs {
		if run.Status == model.RunStatusFailed {
			failed++
			if run.Error != "502: Bad Gateway, " {
				t.Errorf("run error = %q", run.Error)
			}
		}
	}
	if failed != 1 {
		t.Errorf("failed runs = %d, want 1", failed)
	}
}

func TestSnapshotRefreshSharesCollection(t *testing.T) {
	fc := &fakeCollector{
		snap:    testSnapshot("Tester.1234"),
		gate:    make(chan struct{}),
		started: make(chan struct{}),
	}
	svc, _, _ := newTestSnapshotService(t, fc)
	ctx := context.Background()

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Refresh(ctx, testKey)
		}(i)
	}

	<-fc.started
	time.Sleep(100 * time.Millisecond)
	close(fc.gate)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d: %v", i, err)
		}
	}
	if calls := atomic.LoadInt32(&fc.calls); calls != 1 {
		t.Errorf("collector called %d times, want 1", calls)
	}
}

func TestSnapshotMissingKey(t *testing.T) {
	svc, _, _ := newTestSnapshotService(t, &fakeCollector{})
	ctx := context.Background()

	if _, err := svc.Get(ctx, "   "); !errors.Is(err, ErrMissingKey) {
		t.Errorf("Get error = %v", err)
	}
	if _, err := svc.Refresh(ctx, ""); !errors.Is(err, ErrMissingKey) {
		t.Errorf("Refresh error = %v", err)
	}
	if _, err := svc.Meta(ctx, ""); !errors.Is(err, ErrMissingKey) {
		t.Errorf("Meta error = %v", err)
	}
	if _, err := svc.Forget(ctx, ""); !errors.Is(err, ErrMissingKey) {
		t.Errorf("Forget error = %v", err)
	}
}

func TestSnapshotForget(t *testing.T) {
	fc := &fakeCollector{snap: testSnapshot("Tester.1234")}
	svc, c, _ := newTestSnapshotService(t, fc)
	ctx := context.Background()

	if _, err := svc.Meta(ctx, testKey); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("Meta before collection = %v", err)
	}
	if _, err := svc.Get(ctx, testKey); err != nil {
		t.Fatal(err)
	}

	deleted, err := svc.Forget(ctx, testKey)
	if err != nil || !deleted {
		t.Fatalf("Forget = %v, %v", deleted, err)
	}
	if _, err := svc.Meta(ctx, testKey); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("Meta after Forget = %v", err)
	}
	if ok, _ := c.Exists(ctx, cache.SnapshotPrefix+KeyHash(testKey)); ok {
		t.Error("cached snapshot survived Forget")
	}

	deleted, err = svc.Forget(ctx, testKey)
	if err != nil || deleted {
		t.Errorf("second Forget = %v, %v", deleted, err)
	}
}

func TestSnapshotLocations(t *testing.T) {
	fc := &fakeCollector{snap: testSnapshot("Tester.1234")}
	svc, _, _ := newTestSnapshotService(t, fc)

	locs, err := svc.Locations(context.Background(), testKey, gw2.ItemTypeGathering, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(locs.Account.Inventory) != 1 || locs.Account.Inventory[0].Item.Name != "Sickle" {
		t.Errorf("account inventory = %+v", locs.Account.Inventory)
	}
	if len(locs.Characters) != 1 || len(locs.Characters[0].EquipmentTabs[0].Equipment) != 1 {
		t.Errorf("characters = %+v", locs.Characters)
	}

	ore, err := svc.Locations(context.Background(), testKey, gw2.ItemTypeCraftingMaterial, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(ore.Account.Materials) != 1 || ore.Account.Materials[0].Count != 10 {
		t.Errorf("materials = %+v", ore.Account.Materials)
	}
}
