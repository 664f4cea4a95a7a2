package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"TrendsAgent/internal/domain"
	"TrendsAgent/internal/logging"
	"TrendsAgent/internal/ports"
	"TrendsAgent/internal/retry"
	"TrendsAgent/internal/textutil"
)

const (
	DefaultBatchSize = 5
	DefaultItemDelay = time.Second
)

// PipelineConfig bounds the external-call volume of one run.
type PipelineConfig struct {
	BatchSize int
	ItemDelay time.Duration
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source      ports.TrendSource
	Classifier  ports.Classifier
	Synthesizer ports.Synthesizer
	Store       ports.RecordStore
	Notifier    ports.Notifier
	Config      PipelineConfig
	Logger      *slog.Logger
	Clock       func() time.Time
	Sleep       retry.SleepFunc
}

// Pipeline implements the trend → label → drafts → record workflow.
type Pipeline struct {
	source      ports.TrendSource
	classifier  ports.Classifier
	synthesizer ports.Synthesizer
	store       ports.RecordStore
	notifier    ports.Notifier
	cfg         PipelineConfig
	logger      *slog.Logger
	now         func() time.Time
	sleep       retry.SleepFunc
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	cfg := deps.Config
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.ItemDelay < 0 {
		cfg.ItemDelay = 0
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	sleep := deps.Sleep
	if sleep == nil {
		sleep = retry.Sleep
	}

	return &Pipeline{
		source:      deps.Source,
		classifier:  deps.Classifier,
		synthesizer: deps.Synthesizer,
		store:       deps.Store,
		notifier:    deps.Notifier,
		cfg:         cfg,
		logger:      logger,
		now:         now,
		sleep:       sleep,
	}
}

// Run processes the first BatchSize trends strictly in order.
// A single item never aborts the run; the returned error is structural
// (missing collaborators, unreachable trend source) or the caller's
// cancellation observed between items.
func (p *Pipeline) Run(ctx context.Context) (domain.RunSummary, error) {
	summary := domain.RunSummary{StartedAt: p.now(), Records: []domain.Record{}, Outcomes: []domain.ItemOutcome{}}

	if err := p.validate(); err != nil {
		return summary, err
	}

	trends, err := p.source.Trends(ctx)
	if err != nil {
		return summary, fmt.Errorf("fetch trends: %w", err)
	}
	if len(trends) > p.cfg.BatchSize {
		trends = trends[:p.cfg.BatchSize]
	}
	p.logger.Info("pipeline run started", "trends", len(trends), "batch_size", p.cfg.BatchSize)

	// In-flight items finish even if the caller cancels; cancellation is
	// honoured before the next item starts.
	itemCtx := context.WithoutCancel(ctx)

	for idx, trend := range trends {
		if err := ctx.Err(); err != nil {
			summary.FinishedAt = p.now()
			p.logger.Warn("pipeline run cancelled", "completed_items", idx, "error", err)
			return summary, fmt.Errorf("run cancelled after %d of %d items: %w", idx, len(trends), err)
		}

		outcome := p.processItem(itemCtx, idx+1, len(trends), trend)
		p.fold(&summary, outcome)
	}

	summary.FinishedAt = p.now()
	p.logger.Info("pipeline run complete",
		"processed", summary.Processed,
		"relevant", summary.Relevant,
		"skipped", summary.Skipped,
		"errors", summary.Errors,
		"saved", summary.Saved)

	p.notify(ctx, summary)
	return summary, nil
}

type itemResult struct {
	outcome   domain.ItemOutcome
	record    *domain.Record
	processed bool
}

func (p *Pipeline) processItem(ctx context.Context, idx, total int, trend string) (res itemResult) {
	res.outcome = domain.ItemOutcome{Trend: trend}
	log := p.logger.With("item", idx, "of", total, "trend", textutil.Truncate(trend, 50))

	defer func() {
		if r := recover(); r != nil {
			log.Error("item panicked", "panic", r)
			res.outcome.Kind = domain.OutcomeError
			res.outcome.Error = fmt.Sprintf("panic: %v", r)
			res.record = nil
			res.processed = false
		}
	}()

	label := p.classifier.Classify(ctx, trend)
	res.outcome.Label = label
	log.Debug("trend classified", "label", label)

	if !label.Relevant() {
		res.outcome.Kind = domain.OutcomeSkipped
		res.processed = true
		log.Debug("trend skipped as not relevant")
		return res
	}

	if err := p.sleep(ctx, p.cfg.ItemDelay); err != nil {
		log.Warn("rate-limit delay interrupted", "error", err)
	}

	content := p.synthesizer.Generate(ctx, trend, label)
	record := domain.NewRecord(trend, label, content, p.now())
	res.processed = true

	if err := p.store.Append(ctx, record); err != nil {
		res.outcome.Kind = domain.OutcomeError
		res.outcome.Error = err.Error()
		if errors.Is(err, domain.ErrDuplicate) {
			log.Warn("record already stored", "error", err)
		} else {
			log.Error("store record", "error", err)
		}
		return res
	}

	res.outcome.Kind = domain.OutcomeSaved
	res.record = &record
	log.Info("record saved", "label", label)
	return res
}

func (p *Pipeline) fold(summary *domain.RunSummary, res itemResult) {
	summary.Outcomes = append(summary.Outcomes, res.outcome)
	if res.processed {
		summary.Processed++
	}
	if res.outcome.Label.Relevant() {
		summary.Relevant++
	}
	switch res.outcome.Kind {
	case domain.OutcomeSkipped:
		summary.Skipped++
	case domain.OutcomeError:
		summary.Errors++
	case domain.OutcomeSaved:
		summary.Saved++
		summary.Records = append(summary.Records, *res.record)
	}
}

func (p *Pipeline) validate() error {
	var missing []string
	if p.source == nil {
		missing = append(missing, "trend source")
	}
	if p.classifier == nil {
		missing = append(missing, "classifier")
	}
	if p.synthesizer == nil {
		missing = append(missing, "synthesizer")
	}
	if p.store == nil {
		missing = append(missing, "record store")
	}
	if len(missing) > 0 {
		return fmt.Errorf("pipeline misconfigured: %s not set", strings.Join(missing, ", "))
	}
	return nil
}

func (p *Pipeline) notify(ctx context.Context, summary domain.RunSummary) {
	if p.notifier == nil || summary.Saved == 0 {
		return
	}
	if err := p.notifier.PublishDigest(ctx, buildDigestMessage(summary)); err != nil {
		p.logger.Warn("publish digest", "error", err)
	}
}

func buildDigestMessage(summary domain.RunSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d new drafts pending review (processed %d, relevant %d, errors %d)\n\n",
		summary.Saved, summary.Processed, summary.Relevant, summary.Errors)
	for _, rec := range summary.Records {
		fmt.Fprintf(&b, "- [%s] %s\n", rec.Label, textutil.Truncate(rec.TrendText, 80))
	}
	return b.String()
}
