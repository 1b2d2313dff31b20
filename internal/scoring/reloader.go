package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/Suitability/internal/fuzzy"
	"github.com/MikeSquared-Agency/Suitability/internal/hermes"
	"github.com/MikeSquared-Agency/Suitability/internal/rulebase"
	"github.com/MikeSquared-Agency/Suitability/internal/store"
)

// Reloader replaces the scorer's rule base. New documents arrive from the
// API, from hermes, or from the rule-base file changing on disk. Store and
// hermes are optional.
type Reloader struct {
	scorer   *Scorer
	store    store.Store
	hermes   hermes.Client
	path     string
	interval time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	modTime  time.Time
	readFile func(string) ([]byte, error)

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewReloader(sc *Scorer, s store.Store, h hermes.Client, path string, interval time.Duration, logger *slog.Logger) *Reloader {
	return &Reloader{
		scorer:   sc,
		store:    s,
		hermes:   h,
		path:     path,
		interval: interval,
		logger:   logger,
		readFile: os.ReadFile,
		stopCh:   make(chan struct{}),
	}
}

// Start begins polling the rule-base file. It does nothing without a path
// or a positive interval.
func (r *Reloader) Start(ctx context.Context) {
	if r.path == "" || r.interval <= 0 {
		return
	}
	if info, err := os.Stat(r.path); err == nil {
		r.modTime = info.ModTime()
	}
	r.wg.Add(1)
	go r.watchLoop(ctx)
}

func (r *Reloader) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	r.wg.Wait()
}

func (r *Reloader) watchLoop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.checkFile(ctx)
		}
	}
}

func (r *Reloader) checkFile(ctx context.Context) {
	info, err := os.Stat(r.path)
	if err != nil {
		r.logger.Warn("failed to stat rule base", "path", r.path, "error", err)
		return
	}
	if info.ModTime().Equal(r.modTime) {
		return
	}

	data, err := r.readFile(r.path)
	if err != nil {
		r.logger.Warn("failed to read rule base", "path", r.path, "error", err)
		return
	}
	r.modTime = info.ModTime()
	if _, _, err := r.Apply(ctx, data, "file"); err != nil {
		r.logger.Error("rule base on disk rejected, keeping current", "path", r.path, "error", err)
	}
}

// Apply validates a rule-base document and swaps it in. The running engine's
// options carry over. On error the current rule base stays in place.
func (r *Reloader) Apply(ctx context.Context, data []byte, source string) (fuzzy.RuleBase, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rb, err := rulebase.Parse(data)
	if err != nil {
		ruleBaseReloadFailuresTotal.Inc()
		return fuzzy.RuleBase{}, 0, err
	}
	engine, err := fuzzy.NewEngine(rb, r.scorer.Engine().Options())
	if err != nil {
		ruleBaseReloadFailuresTotal.Inc()
		return fuzzy.RuleBase{}, 0, fmt.Errorf("build engine: %w", err)
	}
	rev := r.scorer.Swap(engine)
	r.logger.Info("rule base reloaded", "name", rb.Name, "rules", len(rb.Rules), "revision", rev, "source", source)

	if r.store != nil {
		if err := r.store.SaveRuleBase(ctx, &store.RuleBaseRevision{Name: rb.Name, Document: data, CreatedBy: source}); err != nil {
			r.logger.Warn("failed to persist rule base", "name", rb.Name, "error", err)
		}
	}
	if r.hermes != nil {
		_ = r.hermes.Publish(hermes.SubjectRuleBaseReloaded(strconv.Itoa(rev)), hermes.RuleBaseReloadedEvent{
			Name:      rb.Name,
			Revision:  rev,
			Rules:     len(rb.Rules),
			Source:    source,
			Timestamp: time.Now().UTC(),
		})
	}
	return rb, rev, nil
}

// HandleReloadMessage is the hermes handler for reload requests. The payload
// is a rule-base document.
func (r *Reloader) HandleReloadMessage(subject string, data []byte) {
	if _, _, err := r.Apply(context.Background(), data, "hermes"); err != nil {
		r.logger.Error("rule base from hermes rejected", "subject", subject, "error", err)
	}
}
