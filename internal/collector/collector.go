// Package collector assembles a full account snapshot from the remote API.
package collector

import (
	"context"
	"log"
	"sync"
	"time"

	"gw2vault-api/internal/batch"
	"gw2vault-api/internal/gw2"
	"gw2vault-api/internal/model"
)

// API is the set of remote calls the collector needs. *gw2.Client implements it.
type API interface {
	Account(ctx context.Context) (*gw2.Account, error)
	AccountInventory(ctx context.Context) ([]*gw2.Slot, error)
	AccountBank(ctx context.Context) ([]*gw2.Slot, error)
	AccountMaterials(ctx context.Context) ([]gw2.Material, error)
	CharacterNames(ctx context.Context) ([]string, error)
	CharacterCore(ctx context.Context, name string) (*gw2.CharacterCore, error)
	CharacterInventory(ctx context.Context, name string) (*gw2.CharacterInventory, error)
	CharacterEquipmentTabs(ctx context.Context, name string) ([]gw2.EquipmentTab, error)
	Items(ctx context.Context, ids []int) ([]gw2.Item, error)
	Itemstats(ctx context.Context, ids []int) ([]gw2.Itemstat, error)
}

var _ API = (*gw2.Client)(nil)

// Config tunes the fan-out.
type Config struct {
	// Concurrency is the number of character or chunk calls in flight. Default: 10
	Concurrency int

	// ChunkSize is the number of ids per bulk call, capped at gw2.MaxBulkIDs.
	ChunkSize int
}

// Collector runs the staged collection for one API key.
type Collector struct {
	api       API
	limit     int
	chunkSize int
	now       func() time.Time
}

// New creates a collector over api.
func New(api API, cfg Config) *Collector {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = batch.DefaultLimit
	}
	if cfg.ChunkSize <= 0 || cfg.ChunkSize > gw2.MaxBulkIDs {
		cfg.ChunkSize = gw2.MaxBulkIDs
	}

	return &Collector{
		api:       api,
		limit:     cfg.Concurrency,
		chunkSize: cfg.ChunkSize,
		now:       time.Now,
	}
}

// Collect fetches account and characters, then every referenced item and
// itemstat. Any failed call aborts the whole collection.
func (c *Collector) Collect(ctx context.Context) (*model.Snapshot, error) {
	start := time.Now()

	var (
		account    *model.AccountData
		characters []model.CharacterData
		accountErr error
		charErr    error
		wg         sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		account, accountErr = c.collectAccount(ctx)
	}()
	go func() {
		defer wg.Done()
		characters, charErr = c.collectCharacters(ctx)
	}()
	wg.Wait()

	if accountErr != nil {
		return nil, accountErr
	}
	if charErr != nil {
		return nil, charErr
	}

	log.Printf("[Collector] %s: account and %d characters collected in %v",
		account.Name, len(characters), time.Since(start).Round(time.Millisecond))

	items, err := c.collectItems(ctx, account, characters)
	if err != nil {
		return nil, err
	}

	itemstats, err := c.collectItemstats(ctx, items, account, characters)
	if err != nil {
		return nil, err
	}

	log.Printf("[Collector] %s: %d items, %d itemstats, total %v",
		account.Name, len(items), len(itemstats), time.Since(start).Round(time.Millisecond))

	return &model.Snapshot{
		Account:    *account,
		Characters: characters,
		Items:      items,
		Itemstats:  itemstats,
		FetchedAt:  c.now().UTC(),
	}, nil
}

func (c *Collector) collectAccount(ctx context.Context) (*model.AccountData, error) {
	var (
		account      *gw2.Account
		inventory    []*gw2.Slot
		bank         []*gw2.Slot
		materials    []gw2.Material
		accountErr   error
		inventoryErr error
		bankErr      error
		materialsErr error
		wg           sync.WaitGroup
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		account, accountErr = c.api.Account(ctx)
	}()
	go func() {
		defer wg.Done()
		inventory, inventoryErr = c.api.AccountInventory(ctx)
	}()
	go func() {
		defer wg.Done()
		bank, bankErr = c.api.AccountBank(ctx)
	}()
	go func() {
		defer wg.Done()
		materials, materialsErr = c.api.AccountMaterials(ctx)
	}()
	wg.Wait()

	if accountErr != nil {
		return nil, stageError("collectAccount", "account", accountErr)
	}
	if inventoryErr != nil {
		return nil, stageError("collectAccount", "inventory", inventoryErr)
	}
	if bankErr != nil {
		return nil, stageError("collectAccount", "bank", bankErr)
	}
	if materialsErr != nil {
		return nil, stageError("collectAccount", "materials", materialsErr)
	}

	return &model.AccountData{
		Name:      account.Name,
		Inventory: FilterSlots(inventory),
		Bank:      FilterSlots(bank),
		Materials: FilterMaterials(materials),
	}, nil
}

func (c *Collector) collectCharacters(ctx context.Context) ([]model.CharacterData, error) {
	names, err := c.api.CharacterNames(ctx)
	if err != nil {
		return nil, stageError("collectCharacters", "characters", err)
	}

	results := batch.Run(ctx, names, c.limit, c.collectCharacter)
	if err := batch.FirstError(results); err != nil {
		return nil, err
	}

	characters := batch.Values(results)
	if characters == nil {
		characters = []model.CharacterData{}
	}
	return characters, nil
}

func (c *Collector) collectCharacter(ctx context.Context, name string) (model.CharacterData, error) {
	var (
		core         *gw2.CharacterCore
		inventory    *gw2.CharacterInventory
		tabs         []gw2.EquipmentTab
		coreErr      error
		inventoryErr error
		tabsErr      error
		wg           sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		core, coreErr = c.api.CharacterCore(ctx, name)
	}()
	go func() {
		defer wg.Done()
		inventory, inventoryErr = c.api.CharacterInventory(ctx, name)
	}()
	go func() {
		defer wg.Done()
		tabs, tabsErr = c.api.CharacterEquipmentTabs(ctx, name)
	}()
	wg.Wait()

	fail := func(call string, err error) (model.CharacterData, error) {
		e := stageError("collectCharacter", call, err)
		e.Character = name
		return model.CharacterData{}, e
	}

	if coreErr != nil {
		return fail("core", coreErr)
	}
	if inventoryErr != nil {
		return fail("inventory", inventoryErr)
	}
	if tabsErr != nil {
		return fail("equipmenttabs", tabsErr)
	}

	var bags []*gw2.Bag
	if inventory != nil {
		bags = inventory.Bags
	}

	return model.CharacterData{
		Name:          core.Name,
		Race:          core.Race,
		Profession:    core.Profession,
		Level:         core.Level,
		Inventory:     FlattenBags(bags),
		EquipmentTabs: FilterEquipmentTabs(tabs),
	}, nil
}

func (c *Collector) collectItems(ctx context.Context, account *model.AccountData, characters []model.CharacterData) ([]gw2.Item, error) {
	ids := ItemIDs(account, characters)
	if len(ids) == 0 {
		return []gw2.Item{}, nil
	}

	results := batch.Run(ctx, batch.Chunk(ids, c.chunkSize), c.limit, c.api.Items)
	if err := batch.FirstError(results); err != nil {
		return nil, stageError("collectItems", "result", err)
	}

	items := make([]gw2.Item, 0, len(ids))
	for _, chunk := range batch.Values(results) {
		items = append(items, chunk...)
	}
	return items, nil
}

func (c *Collector) collectItemstats(ctx context.Context, items []gw2.Item, account *model.AccountData, characters []model.CharacterData) ([]gw2.Itemstat, error) {
	ids := ItemstatIDs(items, account, characters)
	if len(ids) == 0 {
		return []gw2.Itemstat{}, nil
	}

	results := batch.Run(ctx, batch.Chunk(ids, c.chunkSize), c.limit, c.api.Itemstats)
	if err := batch.FirstError(results); err != nil {
		return nil, stageError("collectItemstats", "result", err)
	}

	itemstats := make([]gw2.Itemstat, 0, len(ids))
	for _, chunk := range batch.Values(results) {
		itemstats = append(itemstats, chunk...)
	}
	return itemstats, nil
}
