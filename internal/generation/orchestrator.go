package generation

import (
	"context"
	"errors"
	"sync"
	"time"

	"workshop-backend/internal/document"
	"workshop-backend/internal/history"
	"workshop-backend/internal/llm"
	"workshop-backend/internal/shared/metrics"
	"workshop-backend/internal/shared/telemetry"
)

const defaultTimeout = 120 * time.Second

// Observer is notified after every terminal task transition. Called outside
// the orchestrator lock.
type Observer func(task *Task, state TaskState)

// Orchestrator serializes generation per section, bridges to the content
// provider, and applies results atomically. At most one task per section is
// in flight; different sections generate independently.
type Orchestrator struct {
	tmpl    document.Template
	store   *document.Store
	log     *history.Log
	client  llm.ContentClient
	timeout time.Duration
	observe Observer

	mu    sync.Mutex
	tasks map[string]*Task
}

// NewOrchestrator constructs an orchestrator. timeout bounds each task; zero
// means the default. observe may be nil.
func NewOrchestrator(tmpl document.Template, store *document.Store, log *history.Log, client llm.ContentClient, timeout time.Duration, observe Observer) *Orchestrator {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Orchestrator{
		tmpl:    tmpl,
		store:   store,
		log:     log,
		client:  client,
		timeout: timeout,
		observe: observe,
		tasks:   make(map[string]*Task),
	}
}

// Request admits and starts a generation task for the section. Precondition
// failures (unknown section, unmet dependencies, task already running) are
// returned synchronously and change no state.
func (o *Orchestrator) Request(title string) (*Task, error) {
	if _, err := o.store.Section(title); err != nil {
		return nil, err
	}

	// The gate is evaluated fresh on every request; prerequisite statuses
	// change between calls.
	decision := document.CanGenerate(o.tmpl, o.store.Document(), title)
	if !decision.Allowed {
		if decision.Reason == "not generatable" {
			return nil, document.ErrNotGeneratable
		}
		return nil, &DependencyUnmetError{Section: title, Missing: decision.Missing}
	}

	if err := o.store.MarkGenerating(title); err != nil {
		if errors.Is(err, document.ErrAlreadyGenerating) {
			return nil, ErrInProgress
		}
		return nil, err
	}

	req := o.buildRequest(title)
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	task := newTask(title, cancel)

	o.mu.Lock()
	o.tasks[title] = task
	o.mu.Unlock()

	metrics.IncGenerationStarted()
	telemetry.Info("generation.started", map[string]any{
		"task_id": task.ID,
		"section": title,
	})

	go func() {
		content, err := o.client.GenerateSection(ctx, req)
		o.finish(task, content, err)
	}()
	return task, nil
}

// Cancel aborts the running task for the section. Cancelling is idempotent:
// with nothing running it reports ErrNoActiveTask but changes no state, and
// a task's late result is discarded after cancellation.
func (o *Orchestrator) Cancel(title string) error {
	o.mu.Lock()
	task := o.tasks[title]
	if task == nil {
		o.mu.Unlock()
		return ErrNoActiveTask
	}
	if !task.resolve(TaskCancelled, context.Canceled) {
		o.mu.Unlock()
		if task.State() == TaskCancelled {
			// Repeat cancel is a no-op.
			return nil
		}
		return ErrNoActiveTask
	}
	o.store.ClearGenerating(title)
	o.mu.Unlock()

	metrics.IncGenerationCancelled()
	telemetry.Info("generation.cancelled", map[string]any{
		"task_id": task.ID,
		"section": title,
	})
	o.notify(task, TaskCancelled)
	return nil
}

// Active returns the running task for a section, if any.
func (o *Orchestrator) Active(title string) (*Task, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	task := o.tasks[title]
	if task == nil || task.terminal() {
		return nil, false
	}
	return task, true
}

func (o *Orchestrator) finish(task *Task, content string, err error) {
	o.mu.Lock()
	// Identity check: only the task that currently owns the section may
	// apply a result. A cancelled task's resolve fails here and its late
	// result is dropped on the floor.
	if o.tasks[task.Section] != task {
		o.mu.Unlock()
		return
	}

	state := TaskSucceeded
	if err != nil {
		state = TaskFailed
	}
	if !task.resolve(state, err) {
		o.mu.Unlock()
		return
	}

	if err != nil {
		o.store.ClearGenerating(task.Section)
		o.mu.Unlock()

		metrics.IncGenerationFailed()
		telemetry.Error("generation.failed", map[string]any{
			"task_id": task.ID,
			"section": task.Section,
			"error":   err.Error(),
		})
		o.notify(task, TaskFailed)
		return
	}

	if applyErr := o.store.ApplyGenerationResult(task.Section, content); applyErr != nil {
		// Section vanished mid-task is impossible for validated templates,
		// but never commit a snapshot if the apply did not happen.
		o.mu.Unlock()
		telemetry.Error("generation.apply", map[string]any{
			"task_id": task.ID,
			"section": task.Section,
			"error":   applyErr.Error(),
		})
		o.notify(task, TaskFailed)
		return
	}
	snap := o.log.Commit(o.store.Document(), history.CauseGenerationCompleted)
	o.mu.Unlock()

	metrics.IncGenerationCompleted()
	metrics.ObserveGenerationDurationMs(float64(time.Since(task.StartedAt).Milliseconds()))
	telemetry.Info("generation.completed", map[string]any{
		"task_id":  task.ID,
		"section":  task.Section,
		"snapshot": snap.Seq,
	})
	o.notify(task, TaskSucceeded)
}

func (o *Orchestrator) buildRequest(title string) llm.SectionRequest {
	spec, _ := o.tmpl.Spec(title)
	doc := o.store.Document()
	req := llm.SectionRequest{
		SectionTitle: title,
		Prompt:       spec.Prompt,
		Brief:        doc.Brief,
	}
	if len(spec.Requires) > 0 {
		req.Context = make(map[string]string, len(spec.Requires))
		for _, dep := range spec.Requires {
			if sec, ok := doc.Section(dep); ok {
				req.Context[dep] = sec.Content
			}
		}
	}
	return req
}

func (o *Orchestrator) notify(task *Task, state TaskState) {
	if o.observe != nil {
		o.observe(task, state)
	}
}
