package collector

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gw2vault-api/internal/gw2"
)

// fakeAPI serves canned responses and records bulk calls.
type fakeAPI struct {
	account         *gw2.Account
	inventory       []*gw2.Slot
	bank            []*gw2.Slot
	materials       []gw2.Material
	names           []string
	cores           map[string]*gw2.CharacterCore
	charInventories map[string]*gw2.CharacterInventory
	tabs            map[string][]gw2.EquipmentTab
	items           map[int]gw2.Item
	itemstats       map[int]gw2.Itemstat

	accountErr error
	coreErr    map[string]error
	itemsErr   func(ids []int) error

	mu           sync.Mutex
	itemChunks   [][]int
	statChunks   [][]int
	coreInFlight int32
	corePeak     int32
	coreDelay    time.Duration
}

func (f *fakeAPI) Account(ctx context.Context) (*gw2.Account, error) {
	if f.accountErr != nil {
		return nil, f.accountErr
	}
	return f.account, nil
}

func (f *fakeAPI) AccountInventory(ctx context.Context) ([]*gw2.Slot, error) {
	return f.inventory, nil
}

func (f *fakeAPI) AccountBank(ctx context.Context) ([]*gw2.Slot, error) {
	return f.bank, nil
}

func (f *fakeAPI) AccountMaterials(ctx context.Context) ([]gw2.Material, error) {
	return f.materials, nil
}

func (f *fakeAPI) CharacterNames(ctx context.Context) ([]string, error) {
	return f.names, nil
}

func (f *fakeAPI) CharacterCore(ctx context.Context, name string) (*gw2.CharacterCore, error) {
	n := atomic.AddInt32(&f.coreInFlight, 1)
	defer atomic.AddInt32(&f.coreInFlight, -1)
	for {
		p := atomic.LoadInt32(&f.corePeak)
		if n <= p || atomic.CompareAndSwapInt32(&f.corePeak, p, n) {
			break
		}
	}
	if f.coreDelay > 0 {
		time.Sleep(f.coreDelay)
	}

	if err := f.coreErr[name]; err != nil {
		return nil, err
	}
	if core, ok := f.cores[name]; ok {
		return core, nil
	}
	return &gw2.CharacterCore{Name: name, Race: "Human", Profession: "Guardian", Level: 80}, nil
}

func (f *fakeAPI) CharacterInventory(ctx context.Context, name string) (*gw2.CharacterInventory, error) {
	if inv, ok := f.charInventories[name]; ok {
		return inv, nil
	}
	return &gw2.CharacterInventory{}, nil
}

func (f *fakeAPI) CharacterEquipmentTabs(ctx context.Context, name string) ([]gw2.EquipmentTab, error) {
	return f.tabs[name], nil
}

func (f *fakeAPI) Items(ctx context.Context, ids []int) ([]gw2.Item, error) {
	f.mu.Lock()
	f.itemChunks = append(f.itemChunks, ids)
	f.mu.Unlock()

	if f.itemsErr != nil {
		if err := f.itemsErr(ids); err != nil {
			return nil, err
		}
	}

	out := make([]gw2.Item, 0, len(ids))
	for _, id := range ids {
		if item, ok := f.items[id]; ok {
			out = append(out, item)
		} else {
			out = append(out, gw2.Item{ID: id, Name: "item", Type: gw2.ItemTypeTrophy})
		}
	}
	return out, nil
}

func (f *fakeAPI) Itemstats(ctx context.Context, ids []int) ([]gw2.Itemstat, error) {
	f.mu.Lock()
	f.statChunks = append(f.statChunks, ids)
	f.mu.Unlock()

	out := make([]gw2.Itemstat, 0, len(ids))
	for _, id := range ids {
		if st, ok := f.itemstats[id]; ok {
			out = append(out, st)
		} else {
			out = append(out, gw2.Itemstat{ID: id, Name: "stat"})
		}
	}
	return out, nil
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		account:         &gw2.Account{ID: "acc", Name: "Tester.1234"},
		cores:           map[string]*gw2.CharacterCore{},
		charInventories: map[string]*gw2.CharacterInventory{},
		tabs:            map[string][]gw2.EquipmentTab{},
		items:           map[int]gw2.Item{},
		itemstats:       map[int]gw2.Itemstat{},
		coreErr:         map[string]error{},
	}
}

func sortedUnion(chunks [][]int) []int {
	var out []int
	for _, c := range chunks {
		out = append(out, c...)
	}
	sort.Ints(out)
	return out
}

func TestCollectFiltersEmptySlotsAndMaterials(t *testing.T) {
	api := newFakeAPI()
	api.inventory = []*gw2.Slot{nil, {ID: 1, Count: 5}, {ID: 2, Count: 0}}
	api.materials = []gw2.Material{{ID: 3, Category: 5, Count: 0}, {ID: 4, Category: 5, Count: 250}}

	snap, err := New(api, Config{}).Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(snap.Account.Inventory) != 2 {
		t.Errorf("inventory = %+v, want two slots", snap.Account.Inventory)
	}
	if len(snap.Account.Materials) != 1 || snap.Account.Materials[0].ID != 4 {
		t.Errorf("materials = %+v", snap.Account.Materials)
	}

	got := sortedUnion(api.itemChunks)
	if !reflect.DeepEqual(got, []int{1, 2, 4}) {
		t.Errorf("requested item ids = %v, want [1 2 4]", got)
	}
	if snap.Account.Bank == nil || snap.Characters == nil {
		t.Error("collections must be non-nil")
	}
	if snap.FetchedAt.IsZero() || snap.FetchedAt.Location() != time.UTC {
		t.Errorf("FetchedAt = %v", snap.FetchedAt)
	}
}

func TestCollectChunksItemIDs(t *testing.T) {
	api := newFakeAPI()
	for id := 1; id <= 450; id++ {
		api.bank = append(api.bank, &gw2.Slot{ID: id, Count: 1})
	}

	snap, err := New(api, Config{}).Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(api.itemChunks) != 3 {
		t.Fatalf("got %d item calls, want 3", len(api.itemChunks))
	}
	sizes := []int{len(api.itemChunks[0]), len(api.itemChunks[1]), len(api.itemChunks[2])}
	sort.Ints(sizes)
	if !reflect.DeepEqual(sizes, []int{50, 200, 200}) {
		t.Errorf("chunk sizes = %v", sizes)
	}
	if len(snap.Items) != 450 {
		t.Errorf("got %d items, want 450", len(snap.Items))
	}
}

func TestCollectFailsWhenOneChunkFails(t *testing.T) {
	api := newFakeAPI()
	for id := 1; id <= 450; id++ {
		api.bank = append(api.bank, &gw2.Slot{ID: id, Count: 1})
	}
	api.itemsErr = func(ids []int) error {
		if ids[0] == 201 {
			return &gw2.Error{Kind: gw2.KindUnexpectedStatus, StatusCode: 503, StatusText: "Service Unavailable", Body: "busy"}
		}
		return nil
	}

	snap, err := New(api, Config{}).Collect(context.Background())
	if err == nil {
		t.Fatalf("expected failure, got snapshot with %d items", len(snap.Items))
	}

	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != "collectItems" {
		t.Fatalf("error = %v, want collectItems stage error", err)
	}
	if !errors.Is(err, gw2.ErrUnexpectedStatus) {
		t.Errorf("error should wrap the remote failure: %v", err)
	}
	if err.Error() != "collectItems: result, 503: Service Unavailable, busy" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestCollectStageErrors(t *testing.T) {
	invalid := &gw2.Error{Kind: gw2.KindInvalidAPIKey}

	t.Run("account", func(t *testing.T) {
		api := newFakeAPI()
		api.accountErr = invalid

		_, err := New(api, Config{}).Collect(context.Background())
		if err == nil || err.Error() != "collectAccount: account, Invalid API key" {
			t.Fatalf("error = %v", err)
		}
		if !errors.Is(err, gw2.ErrInvalidAPIKey) {
			t.Error("error should match ErrInvalidAPIKey")
		}
		if len(api.itemChunks) != 0 {
			t.Error("items must not be fetched after a failed stage")
		}
	})

	t.Run("character", func(t *testing.T) {
		api := newFakeAPI()
		api.names = []string{"Alpha", "Beta"}
		api.coreErr["Beta"] = invalid

		_, err := New(api, Config{}).Collect(context.Background())
		var stageErr *StageError
		if !errors.As(err, &stageErr) {
			t.Fatalf("error = %v", err)
		}
		if stageErr.Character != "Beta" || stageErr.Call != "core" {
			t.Errorf("stage error = %+v", stageErr)
		}
		if err.Error() != "collectCharacter: core, Invalid API key" {
			t.Errorf("message = %q", err.Error())
		}
	})
}

func TestCollectCharacters(t *testing.T) {
	statsID := 584
	api := newFakeAPI()
	api.names = []string{"Alpha"}
	api.cores["Alpha"] = &gw2.CharacterCore{Name: "Alpha", Race: "Norn", Profession: "Ranger", Level: 80, Deaths: 12}
	api.charInventories["Alpha"] = &gw2.CharacterInventory{Bags: []*gw2.Bag{
		{ID: 8932, Size: 20, Inventory: []*gw2.Slot{{ID: 10, Count: 1}, nil}},
		nil,
		{ID: 8932, Size: 20, Inventory: []*gw2.Slot{nil, {ID: 11, Count: 3}}},
	}}
	api.tabs["Alpha"] = []gw2.EquipmentTab{
		{Tab: 1, Name: "Open World", IsActive: true, Equipment: []gw2.Slot{
			{ID: 20, Count: 1, Slot: "Sickle"},
			{ID: 21, Count: 1, Slot: "Helm", Stats: &gw2.ItemStats{ID: statsID}},
		}},
		{Tab: 2, Name: "", Equipment: []gw2.Slot{}},
	}
	api.items[21] = gw2.Item{ID: 21, Type: gw2.ItemTypeArmor, Details: &gw2.ArmorDetails{
		Type:         "Helm",
		InfixUpgrade: &gw2.InfixUpgrade{ID: 161},
	}}

	snap, err := New(api, Config{}).Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(snap.Characters) != 1 {
		t.Fatalf("characters = %+v", snap.Characters)
	}
	c := snap.Characters[0]
	if c.Race != "Norn" || c.Profession != "Ranger" || c.Level != 80 {
		t.Errorf("core fields = %+v", c)
	}
	if len(c.Inventory) != 2 || c.Inventory[0].ID != 10 || c.Inventory[1].ID != 11 {
		t.Errorf("inventory = %+v", c.Inventory)
	}
	if len(c.EquipmentTabs) != 1 || c.EquipmentTabs[0].Tab != 1 {
		t.Errorf("equipment tabs = %+v", c.EquipmentTabs)
	}

	gotStats := sortedUnion(api.statChunks)
	if !reflect.DeepEqual(gotStats, []int{161, 584}) {
		t.Errorf("requested itemstat ids = %v, want [161 584]", gotStats)
	}
}

func TestCollectCharacterConcurrency(t *testing.T) {
	api := newFakeAPI()
	api.coreDelay = 5 * time.Millisecond
	for i := 0; i < 25; i++ {
		api.names = append(api.names, "char"+strings.Repeat("x", i))
	}

	snap, err := New(api, Config{Concurrency: 3}).Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Characters) != 25 {
		t.Errorf("got %d characters", len(snap.Characters))
	}
	if peak := atomic.LoadInt32(&api.corePeak); peak > 3 {
		t.Errorf("peak character calls in flight = %d, want <= 3", peak)
	}
	for i, c := range snap.Characters {
		if c.Name != api.names[i] {
			t.Errorf("character %d = %q, want %q", i, c.Name, api.names[i])
		}
	}
}

func TestCollectNoItemsSkipsBulkCalls(t *testing.T) {
	api := newFakeAPI()

	snap, err := New(api, Config{}).Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(api.itemChunks) != 0 || len(api.statChunks) != 0 {
		t.Errorf("bulk calls made for an empty account: %v %v", api.itemChunks, api.statChunks)
	}
	if snap.Items == nil || snap.Itemstats == nil {
		t.Error("items and itemstats must be non-nil")
	}
}

func TestNewCapsChunkSize(t *testing.T) {
	c := New(newFakeAPI(), Config{ChunkSize: 500, Concurrency: -1})
	if c.chunkSize != gw2.MaxBulkIDs {
		t.Errorf("chunkSize = %d", c.chunkSize)
	}
	if c.limit != 10 {
		t.Errorf("limit = %d", c.limit)
	}
}
