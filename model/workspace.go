package model

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"
	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"

	"github.com/songquanpeng/model-compare/common/logger"
	"github.com/songquanpeng/model-compare/common/random"
	relaymodel "github.com/songquanpeng/model-compare/relay/model"
)

// Keys under which the workspace is persisted.
const (
	KeyProviders      = "llm-providers"
	KeyProviderModels = "provider-models"
	KeyModelSlots     = "model-slots"
)

var (
	ErrProviderNotFound = errors.New("provider not found")
	ErrSlotNotFound     = errors.New("slot not found")
)

// InvalidInputError is a provider or slot assignment that failed validation.
type InvalidInputError struct {
	Err error
}

func (e *InvalidInputError) Error() string { return e.Err.Error() }

func (e *InvalidInputError) Unwrap() error { return e.Err }

// ModelsFetcher lists the models a provider exposes.
type ModelsFetcher interface {
	FetchModels(ctx context.Context, provider relaymodel.Provider) ([]string, error)
}

// AssignSlotCommand puts a provider's model into a slot.
type AssignSlotCommand struct {
	SlotId      string `json:"slotId"`
	ProviderId  string `json:"providerId" validate:"required"`
	ModelId     string `json:"modelId" validate:"required"`
	DisplayName string `json:"displayName"`
}

// WorkspaceParams configures a Workspace.
type WorkspaceParams struct {
	Store   Store
	Fetcher ModelsFetcher
	// ModelsCacheTTL bounds reuse of a fetched models list. Zero disables caching.
	ModelsCacheTTL time.Duration
	// FetchTimeout bounds a single models-list request. Zero means no bound.
	FetchTimeout     time.Duration
	DefaultSlotCount int
	Logger           glog.Logger
}

// Workspace is the typed view over the persisted providers, available
// models and slots. Every write replaces the whole value of its key.
type Workspace struct {
	params   WorkspaceParams
	validate *validator.Validate
	models   *cache.Cache

	// mu serializes read-modify-write cycles.
	mu sync.Mutex
}

func NewWorkspace(params WorkspaceParams) *Workspace {
	if params.Logger == nil {
		params.Logger = logger.Logger
	}
	if params.DefaultSlotCount < 0 {
		params.DefaultSlotCount = 0
	}
	return &Workspace{
		params:   params,
		validate: validator.New(),
		models:   cache.New(params.ModelsCacheTTL, time.Minute),
	}
}

func (w *Workspace) Close() error {
	return w.params.Store.Close()
}

func (w *Workspace) loadProviders(ctx context.Context) ([]relaymodel.Provider, error) {
	var providers []relaymodel.Provider
	if _, err := getJSON(ctx, w.params.Store, KeyProviders, &providers); err != nil {
		return nil, err
	}
	if providers == nil {
		providers = []relaymodel.Provider{}
	}
	return providers, nil
}

// Providers lists the configured providers in creation order.
func (w *Workspace) Providers(ctx context.Context) ([]relaymodel.Provider, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loadProviders(ctx)
}

// Provider returns the provider with id.
func (w *Workspace) Provider(ctx context.Context, id string) (relaymodel.Provider, error) {
	providers, err := w.Providers(ctx)
	if err != nil {
		return relaymodel.Provider{}, err
	}
	idx := slices.IndexFunc(providers, func(p relaymodel.Provider) bool { return p.Id == id })
	if idx < 0 {
		return relaymodel.Provider{}, errors.Wrapf(ErrProviderNotFound, "provider %q", id)
	}
	return providers[idx], nil
}

func (w *Workspace) validateProvider(p relaymodel.Provider) error {
	if err := w.validate.Struct(p); err != nil {
		return &InvalidInputError{Err: errors.Wrap(err, "invalid provider")}
	}
	if err := p.RequestParams.Validate(); err != nil {
		return &InvalidInputError{Err: errors.Wrap(err, "invalid request params")}
	}
	return nil
}

// CreateProvider stores p under a fresh id.
func (w *Workspace) CreateProvider(ctx context.Context, p relaymodel.Provider) (relaymodel.Provider, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Endpoint = strings.TrimSpace(p.Endpoint)
	if err := w.validateProvider(p); err != nil {
		return relaymodel.Provider{}, err
	}
	p.Id = random.GetUUID()

	w.mu.Lock()
	defer w.mu.Unlock()

	providers, err := w.loadProviders(ctx)
	if err != nil {
		return relaymodel.Provider{}, err
	}
	providers = append(providers, p)
	if err = setJSON(ctx, w.params.Store, KeyProviders, providers); err != nil {
		return relaymodel.Provider{}, err
	}

	w.params.Logger.Info("provider created", zap.String("provider_id", p.Id), zap.String("name", p.Name))
	return p, nil
}

// UpdateProvider replaces the provider with id. Cached models are dropped
// since the endpoint or key may have changed.
func (w *Workspace) UpdateProvider(ctx context.Context, id string, p relaymodel.Provider) (relaymodel.Provider, error) {
	p.Id = id
	p.Name = strings.TrimSpace(p.Name)
	p.Endpoint = strings.TrimSpace(p.Endpoint)
	if err := w.validateProvider(p); err != nil {
		return relaymodel.Provider{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	providers, err := w.loadProviders(ctx)
	if err != nil {
		return relaymodel.Provider{}, err
	}
	idx := slices.IndexFunc(providers, func(existing relaymodel.Provider) bool { return existing.Id == id })
	if idx < 0 {
		return relaymodel.Provider{}, errors.Wrapf(ErrProviderNotFound, "provider %q", id)
	}
	providers[idx] = p
	if err = setJSON(ctx, w.params.Store, KeyProviders, providers); err != nil {
		return relaymodel.Provider{}, err
	}
	w.models.Delete(id)
	return p, nil
}

// DeleteProvider removes the provider, clears every slot that references it
// and forgets its models.
func (w *Workspace) DeleteProvider(ctx context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	providers, err := w.loadProviders(ctx)
	if err != nil {
		return err
	}
	remaining := slices.DeleteFunc(slices.Clone(providers), func(p relaymodel.Provider) bool { return p.Id == id })
	if len(remaining) == len(providers) {
		return errors.Wrapf(ErrProviderNotFound, "provider %q", id)
	}
	if err = setJSON(ctx, w.params.Store, KeyProviders, remaining); err != nil {
		return err
	}

	slots, err := w.loadSlots(ctx)
	if err != nil {
		return err
	}
	cleared := 0
	for i := range slots {
		if slots[i].ProviderId == id {
			slots[i].Clear()
			cleared++
		}
	}
	if cleared > 0 {
		if err = setJSON(ctx, w.params.Store, KeyModelSlots, slots); err != nil {
			return err
		}
	}

	stored, err := w.loadStoredModels(ctx)
	if err != nil {
		return err
	}
	if _, ok := stored[id]; ok {
		delete(stored, id)
		if err = setJSON(ctx, w.params.Store, KeyProviderModels, stored); err != nil {
			return err
		}
	}
	w.models.Delete(id)

	w.params.Logger.Info("provider deleted",
		zap.String("provider_id", id),
		zap.Int("cleared_slots", cleared))
	return nil
}

// storeModels persists a fetched list unless the provider was deleted while
// the fetch was in flight.
func (w *Workspace) storeModels(ctx context.Context, providerID string, models []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	providers, err := w.loadProviders(ctx)
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(providers, func(p relaymodel.Provider) bool { return p.Id == providerID }) {
		return errors.Wrapf(ErrProviderNotFound, "provider %q", providerID)
	}

	stored, err := w.loadStoredModels(ctx)
	if err != nil {
		return err
	}
	stored[providerID] = models
	if err = setJSON(ctx, w.params.Store, KeyProviderModels, stored); err != nil {
		return err
	}

	if w.params.ModelsCacheTTL > 0 {
		w.models.Set(providerID, slices.Clone(models), cache.DefaultExpiration)
	}
	return nil
}

// loadSlots seeds DefaultSlotCount placeholders into a workspace that has
// never stored slots.
func (w *Workspace) loadSlots(ctx context.Context) ([]relaymodel.ModelSlot, error) {
	var slots []relaymodel.ModelSlot
	found, err := getJSON(ctx, w.params.Store, KeyModelSlots, &slots)
	if err != nil {
		return nil, err
	}
	if found {
		if slots == nil {
			slots = []relaymodel.ModelSlot{}
		}
		return slots, nil
	}

	slots = make([]relaymodel.ModelSlot, w.params.DefaultSlotCount)
	for i := range slots {
		slots[i] = relaymodel.ModelSlot{Id: random.GetUUID()}
	}
	if err = setJSON(ctx, w.params.Store, KeyModelSlots, slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// Slots lists every slot, active or not.
func (w *Workspace) Slots(ctx context.Context) ([]relaymodel.ModelSlot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loadSlots(ctx)
}

// AddSlot appends an empty placeholder slot.
func (w *Workspace) AddSlot(ctx context.Context) (relaymodel.ModelSlot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	slots, err := w.loadSlots(ctx)
	if err != nil {
		return relaymodel.ModelSlot{}, err
	}
	slot := relaymodel.ModelSlot{Id: random.GetUUID()}
	if err = setJSON(ctx, w.params.Store, KeyModelSlots, append(slots, slot)); err != nil {
		return relaymodel.ModelSlot{}, err
	}
	return slot, nil
}

// AssignSlot points a slot at a provider's model.
func (w *Workspace) AssignSlot(ctx context.Context, cmd AssignSlotCommand) (relaymodel.ModelSlot, error) {
	if err := w.validate.Struct(cmd); err != nil {
		return relaymodel.ModelSlot{}, &InvalidInputError{Err: errors.Wrap(err, "invalid slot assignment")}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	providers, err := w.loadProviders(ctx)
	if err != nil {
		return relaymodel.ModelSlot{}, err
	}
	if !slices.ContainsFunc(providers, func(p relaymodel.Provider) bool { return p.Id == cmd.ProviderId }) {
		return relaymodel.ModelSlot{}, errors.Wrapf(ErrProviderNotFound, "provider %q", cmd.ProviderId)
	}

	slots, err := w.loadSlots(ctx)
	if err != nil {
		return relaymodel.ModelSlot{}, err
	}
	idx := slices.IndexFunc(slots, func(s relaymodel.ModelSlot) bool { return s.Id == cmd.SlotId })
	if idx < 0 {
		return relaymodel.ModelSlot{}, errors.Wrapf(ErrSlotNotFound, "slot %q", cmd.SlotId)
	}

	slots[idx] = relaymodel.ModelSlot{
		Id:          cmd.SlotId,
		ProviderId:  cmd.ProviderId,
		ModelId:     strings.TrimSpace(cmd.ModelId),
		DisplayName: strings.TrimSpace(cmd.DisplayName),
	}
	if err = setJSON(ctx, w.params.Store, KeyModelSlots, slots); err != nil {
		return relaymodel.ModelSlot{}, err
	}
	return slots[idx], nil
}

// ClearSlot resets a slot but keeps its id.
func (w *Workspace) ClearSlot(ctx context.Context, id string) (relaymodel.ModelSlot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	slots, err := w.loadSlots(ctx)
	if err != nil {
		return relaymodel.ModelSlot{}, err
	}
	idx := slices.IndexFunc(slots, func(s relaymodel.ModelSlot) bool { return s.Id == id })
	if idx < 0 {
		return relaymodel.ModelSlot{}, errors.Wrapf(ErrSlotNotFound, "slot %q", id)
	}
	slots[idx].Clear()
	if err = setJSON(ctx, w.params.Store, KeyModelSlots, slots); err != nil {
		return relaymodel.ModelSlot{}, err
	}
	return slots[idx], nil
}

// ActiveSlots resolves every active slot against its provider, in slot
// order. Slots whose provider no longer exists are skipped.
func (w *Workspace) ActiveSlots(ctx context.Context) ([]relaymodel.ActiveSlot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	providers, err := w.loadProviders(ctx)
	if err != nil {
		return nil, err
	}
	slots, err := w.loadSlots(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]relaymodel.Provider, len(providers))
	for _, p := range providers {
		byID[p.Id] = p
	}

	active := make([]relaymodel.ActiveSlot, 0, len(slots))
	for _, slot := range slots {
		if !slot.IsActive() {
			continue
		}
		provider, ok := byID[slot.ProviderId]
		if !ok {
			w.params.Logger.Warn("slot references unknown provider",
				zap.String("slot_id", slot.Id),
				zap.String("provider_id", slot.ProviderId))
			continue
		}
		active = append(active, relaymodel.ActiveSlot{Slot: slot, Provider: provider})
	}
	return active, nil
}

func (w *Workspace) loadStoredModels(ctx context.Context) (map[string][]string, error) {
	stored := map[string][]string{}
	if _, err := getJSON(ctx, w.params.Store, KeyProviderModels, &stored); err != nil {
		return nil, err
	}
	if stored == nil {
		stored = map[string][]string{}
	}
	return stored, nil
}

// StoredModels returns the last fetched models list of every provider.
func (w *Workspace) StoredModels(ctx context.Context) (map[string][]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loadStoredModels(ctx)
}

// AvailableModels lists the models of a provider. A list fetched within
// ModelsCacheTTL is reused unless refresh is set. Every fetched list is
// persisted under KeyProviderModels.
func (w *Workspace) AvailableModels(ctx context.Context, providerID string, refresh bool) ([]string, error) {
	if !refresh {
		if cached, ok := w.models.Get(providerID); ok {
			return slices.Clone(cached.([]string)), nil
		}
	}

	provider, err := w.Provider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if w.params.Fetcher == nil {
		return nil, errors.New("no models fetcher configured")
	}

	fetchCtx := ctx
	if w.params.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, w.params.FetchTimeout)
		defer cancel()
	}
	models, err := w.params.Fetcher.FetchModels(fetchCtx, provider)
	if err != nil {
		return nil, errors.Wrapf(err, "list models of %s", provider.Name)
	}

	if err = w.storeModels(ctx, providerID, models); err != nil {
		return nil, err
	}
	w.params.Logger.Debug("models fetched",
		zap.String("provider_id", providerID),
		zap.Int("count", len(models)))
	return models, nil
}
