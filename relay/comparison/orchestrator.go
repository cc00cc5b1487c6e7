package comparison

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"
	"golang.org/x/sync/errgroup"

	"github.com/songquanpeng/model-compare/common/logger"
	"github.com/songquanpeng/model-compare/common/random"
	"github.com/songquanpeng/model-compare/relay/adaptor/openai_compatible"
	"github.com/songquanpeng/model-compare/relay/model"
	"github.com/songquanpeng/model-compare/relay/streaming"
)

// Prompt is the input of a batch.
type Prompt struct {
	System string `json:"system_prompt"`
	User   string `json:"user_prompt"`
}

// Observer receives per-slot lifecycle notifications. Calls come from the
// slot goroutines and must not block.
type Observer interface {
	RunStarted(target Target)
	RunFinished(target Target, resp streaming.ModelResponse)
}

// Params configures an Orchestrator.
type Params struct {
	Client *openai_compatible.Client
	Logger glog.Logger
	// Observer is optional.
	Observer Observer
	// RunTimeout bounds each slot's run. Zero disables it. An expired run
	// ends in error, not aborted.
	RunTimeout time.Duration
	// Now is the clock for timing checkpoints. Defaults to time.Now.
	Now func() time.Time
}

// Orchestrator runs comparison batches: one stream per active slot, all
// sharing one cancellation per batch. At most one batch is in flight.
type Orchestrator struct {
	params Params

	mu          sync.Mutex
	current     Snapshot
	batch       *Batch
	subscribers map[int]chan Snapshot
	nextSubID   int
}

// Batch is one in-flight or finished run over a set of slots.
type Batch struct {
	Id     string
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// Done is closed once every slot of the batch reached a terminal state.
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// New builds an idle orchestrator.
func New(params Params) *Orchestrator {
	if params.Client == nil {
		params.Client = openai_compatible.NewClient(nil, params.Logger)
	}
	if params.Logger == nil {
		params.Logger = logger.Logger
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &Orchestrator{
		params:      params,
		subscribers: make(map[int]chan Snapshot),
	}
}

// Validate runs the pre-flight checks of a batch.
func Validate(slots []model.ActiveSlot, prompt Prompt) error {
	active := 0
	for _, slot := range slots {
		if slot.Slot.IsActive() {
			active++
		}
	}
	if active == 0 {
		return &ValidationError{Err: ErrNoActiveSlot}
	}
	if strings.TrimSpace(prompt.User) == "" {
		return &ValidationError{Err: ErrEmptyPrompt}
	}
	return nil
}

// Toggle aborts the in-flight batch if there is one, otherwise starts a new
// batch. started tells which of the two happened.
func (o *Orchestrator) Toggle(ctx context.Context, slots []model.ActiveSlot, prompt Prompt) (started bool, err error) {
	if o.Abort() {
		return false, nil
	}
	if _, err = o.Start(ctx, slots, prompt); err != nil {
		return false, err
	}
	return true, nil
}

// Start validates the input and launches a batch. Every response of the new
// collection is already streaming when Start returns. The batch is derived
// from ctx, so cancelling ctx aborts it like Abort does.
func (o *Orchestrator) Start(ctx context.Context, slots []model.ActiveSlot, prompt Prompt) (*Batch, error) {
	if err := Validate(slots, prompt); err != nil {
		return nil, err
	}

	o.mu.Lock()
	if o.batch != nil {
		o.mu.Unlock()
		return nil, ErrBatchRunning
	}

	batchCtx, cancel := context.WithCancel(ctx)
	b := &Batch{
		Id:     random.GetUUID(),
		ctx:    batchCtx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	var (
		targets  []Target
		trackers []*streaming.Tracker
		runs     []model.ActiveSlot
	)
	for _, slot := range slots {
		if !slot.Slot.IsActive() {
			continue
		}
		tr := streaming.NewTracker(streaming.TrackerParams{
			SlotID: slot.Slot.Id,
			Now:    o.params.Now,
			Logger: o.params.Logger,
		})
		tr.Start()
		targets = append(targets, newTarget(slot))
		trackers = append(trackers, tr)
		runs = append(runs, slot)
	}

	responses := make([]streaming.ModelResponse, len(trackers))
	for i, tr := range trackers {
		responses[i] = tr.Snapshot()
	}

	o.batch = b
	o.current = Snapshot{
		BatchId:   b.Id,
		Version:   o.current.Version + 1,
		Running:   true,
		Targets:   targets,
		Responses: responses,
	}
	o.broadcastLocked()
	o.mu.Unlock()

	o.params.Logger.Info("comparison batch started",
		zap.String("batch_id", b.Id),
		zap.Int("slots", len(runs)))

	messages := model.BuildPromptMessages(prompt.System, prompt.User)

	// Slots never cancel each other, so the group carries no shared context.
	var g errgroup.Group
	for i := range runs {
		slot, tr, target := runs[i], trackers[i], targets[i]
		g.Go(func() error {
			o.runSlot(b, slot, target, tr, messages)
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		o.finish(b)
	}()

	return b, nil
}

// runSlot consumes one stream and publishes every visible change.
func (o *Orchestrator) runSlot(b *Batch, slot model.ActiveSlot, target Target, tr *streaming.Tracker, messages []model.ChatMessage) {
	lg := o.params.Logger.With(
		zap.String("batch_id", b.Id),
		zap.String("slot_id", target.SlotId),
		zap.String("provider", target.ProviderName),
		zap.String("model", target.ModelId),
	)
	if o.params.Observer != nil {
		o.params.Observer.RunStarted(target)
	}

	runCtx := b.ctx
	if o.params.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(b.ctx, o.params.RunTimeout)
		defer cancel()
	}

	err := o.consume(runCtx, b, slot, tr, messages)
	if err != nil {
		tr.Fail(err)
	} else {
		tr.Complete()
	}
	final := tr.Snapshot()
	o.publish(final)

	switch final.Status {
	case streaming.StatusComplete:
		lg.Info("slot completed",
			zap.Int("content_tokens", final.Metrics.ContentTokens),
			zap.Int("cot_tokens", final.Metrics.CotTokens))
	case streaming.StatusAborted:
		lg.Info("slot aborted")
	default:
		lg.Warn("slot failed", zap.Error(err))
	}

	if o.params.Observer != nil {
		o.params.Observer.RunFinished(target, final)
	}
}

func (o *Orchestrator) consume(ctx context.Context, b *Batch, slot model.ActiveSlot, tr *streaming.Tracker, messages []model.ChatMessage) error {
	stream, err := o.params.Client.StreamChatCompletion(ctx, slot.Provider, slot.Slot.ModelId, messages)
	if err != nil {
		return err
	}

	for ev, err := range stream.Events() {
		if err != nil {
			return err
		}
		// events decoded before the abort are dropped
		if b.ctx.Err() != nil {
			return errors.Wrap(openai_compatible.ErrAborted, "batch cancelled")
		}
		if tr.Observe(ev) {
			o.publish(tr.Snapshot())
		}
	}
	if b.ctx.Err() != nil {
		return errors.Wrap(openai_compatible.ErrAborted, "batch cancelled")
	}
	return nil
}

// publish replaces one entry of the collection. Updates to entries that
// are already terminal are ignored.
func (o *Orchestrator) publish(resp streaming.ModelResponse) {
	o.mu.Lock()
	defer o.mu.Unlock()

	next, ok := o.current.withResponse(resp)
	if !ok {
		return
	}
	o.current = next
	o.broadcastLocked()
}

func (o *Orchestrator) finish(b *Batch) {
	b.cancel()

	o.mu.Lock()
	if o.batch == b {
		o.batch = nil
		o.current.Running = false
		o.current.Version++
		o.broadcastLocked()
	}
	o.mu.Unlock()
	close(b.done)

	o.params.Logger.Info("comparison batch finished", zap.String("batch_id", b.Id))
}

// Abort cancels the in-flight batch and marks every streaming response
// aborted right away. It reports whether a batch was running.
func (o *Orchestrator) Abort() bool {
	o.mu.Lock()
	b := o.batch
	if b == nil {
		o.mu.Unlock()
		return false
	}
	b.cancel()
	o.current = o.current.withAborted()
	o.broadcastLocked()
	o.mu.Unlock()

	o.params.Logger.Info("comparison batch aborted", zap.String("batch_id", b.Id))
	return true
}

// Running reports whether a batch is in flight.
func (o *Orchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.batch != nil
}

// Snapshot returns the current collection. The returned value shares its
// slices with the published state and must not be modified; use Clone.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Wait blocks until the in-flight batch, if any, is done or ctx ends.
func (o *Orchestrator) Wait(ctx context.Context) error {
	o.mu.Lock()
	b := o.batch
	o.mu.Unlock()
	if b == nil {
		return nil
	}

	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts a batch and blocks until it is done. Cancelling ctx aborts the
// batch; Run still waits for every slot to settle. The returned snapshot is a
// deep copy owned by the caller.
func (o *Orchestrator) Run(ctx context.Context, slots []model.ActiveSlot, prompt Prompt) (Snapshot, error) {
	b, err := o.Start(ctx, slots, prompt)
	if err != nil {
		return Snapshot{}, err
	}

	select {
	case <-b.done:
	case <-ctx.Done():
		o.Abort()
		<-b.done
	}
	return o.Snapshot().Clone()
}

// Subscribe registers a listener for collection updates. The channel keeps
// only the latest snapshot, so slow readers skip intermediate states but
// always see the last one. The current state is delivered immediately.
func (o *Orchestrator) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	o.mu.Lock()
	id := o.nextSubID
	o.nextSubID++
	o.subscribers[id] = ch
	ch <- o.current
	o.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.subscribers, id)
			o.mu.Unlock()
		})
	}
}

func (o *Orchestrator) broadcastLocked() {
	for _, ch := range o.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- o.current
	}
}
