package schedule

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rotorlabs/rotorctl/internal/compile"
	"github.com/rotorlabs/rotorctl/internal/declare"
	"github.com/rotorlabs/rotorctl/internal/journal"
	"github.com/rotorlabs/rotorctl/internal/observability"
	"github.com/rotorlabs/rotorctl/internal/publish"
	"github.com/rotorlabs/rotorctl/internal/rotate"
)

// PassInfo is the outcome of the most recent pass of one kind.
type PassInfo struct {
	At       time.Time `json:"at"`
	Outcome  string    `json:"outcome,omitempty"`
	Duration string    `json:"duration,omitempty"`
	Detail   string    `json:"detail,omitempty"`
}

// Status is the daemon snapshot served over the admin API.
type Status struct {
	Ready      bool     `json:"ready"`
	Watching   bool     `json:"watching"`
	Interval   string   `json:"interval"`
	Entries    int      `json:"entries"`
	OutputSHA  string   `json:"output_sha256,omitempty"`
	LastRender PassInfo `json:"last_render"`
	LastRotate PassInfo `json:"last_rotate"`
}

// Options carries the wired components and the cadence settings.
type Options struct {
	Loader     *declare.Loader
	Writer     *publish.Writer
	Invoker    *rotate.Invoker
	Recorder   journal.Recorder
	DeclDir    string
	OutputPath string
	Interval   time.Duration
	Watch      bool
	Debounce   time.Duration
}

// Daemon renders on declaration changes and rotates on a fixed cadence.
type Daemon struct {
	loader   *declare.Loader
	writer   *publish.Writer
	invoker  *rotate.Invoker
	recorder journal.Recorder

	declDir    string
	outputPath string
	interval   time.Duration
	watch      bool
	debounce   time.Duration

	mu     sync.Mutex
	status Status
}

func New(opts Options) *Daemon {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = journal.Discard
	}
	d := &Daemon{
		loader:     opts.Loader,
		writer:     opts.Writer,
		invoker:    opts.Invoker,
		recorder:   recorder,
		declDir:    opts.DeclDir,
		outputPath: opts.OutputPath,
		interval:   opts.Interval,
		watch:      opts.Watch,
		debounce:   opts.Debounce,
	}
	d.status = Status{
		Watching: opts.Watch,
		Interval: opts.Interval.String(),
	}
	return d
}

// RenderOnce loads every declaration layer, compiles, and publishes the
// document. On any error the previous document stays in place and the
// entry count is zero.
func (d *Daemon) RenderOnce(ctx context.Context) (int, error) {
	started := time.Now()

	src, err := d.loader.Source(d.declDir)
	if err != nil {
		d.finishRender(ctx, started, 0, "", err)
		return 0, err
	}
	entries, err := compile.Collect(src)
	if err != nil {
		d.finishRender(ctx, started, 0, "", err)
		return 0, err
	}
	if err := compile.Validate(entries); err != nil {
		d.finishRender(ctx, started, 0, "", err)
		return 0, err
	}
	compile.Order(entries)
	text := compile.Render(entries, src.GlobalExtra)

	if err := d.writer.Publish(d.outputPath, []byte(text)); err != nil {
		d.finishRender(ctx, started, 0, "", err)
		return 0, err
	}

	sum := sha256.Sum256([]byte(text))
	d.finishRender(ctx, started, len(entries), hex.EncodeToString(sum[:]), nil)
	return len(entries), nil
}

// RotateOnce hands the published config path to the tool. Overlap and
// busy-host skips are reported as their own outcomes, not failures.
func (d *Daemon) RotateOnce(ctx context.Context) (rotate.Result, error) {
	started := time.Now()
	res, err := d.invoker.Run(ctx, d.outputPath)

	outcome := observability.OutcomeOK
	switch {
	case errors.Is(err, rotate.ErrInvocationInFlight):
		outcome = observability.OutcomeSkippedOverlap
	case errors.Is(err, rotate.ErrToolBusy):
		outcome = observability.OutcomeSkippedBusy
	case err != nil:
		outcome = observability.OutcomeFailed
	}

	observability.RecordToolRun(outcome, res.Duration)
	d.setRotateStatus(PassInfo{
		At:       started,
		Outcome:  outcome,
		Duration: res.Duration.String(),
		Detail:   errDetail(err),
	})
	if outcome == observability.OutcomeOK || outcome == observability.OutcomeFailed {
		if recErr := d.recorder.Record(ctx, journal.Run{
			Kind:     journal.KindRotate,
			Started:  started,
			Duration: res.Duration,
			OK:       err == nil,
			ExitCode: res.ExitCode,
			Detail:   tail(res.Output, 512),
		}); recErr != nil {
			log.Warn().Err(recErr).Msg("journal write failed")
		}
	}

	if err != nil {
		return res, err
	}
	log.Info().
		Str("tool_output", tail(res.Output, 200)).
		Dur("duration", res.Duration).
		Msg("rotation tool finished")
	return res, nil
}

// RunPass renders and then rotates. A failed render skips rotation so the
// tool never sees a stale or partial document marked current; a skipped
// rotation is not an error.
func (d *Daemon) RunPass(ctx context.Context) error {
	if _, err := d.RenderOnce(ctx); err != nil {
		return err
	}
	_, err := d.RotateOnce(ctx)
	if errors.Is(err, rotate.ErrInvocationInFlight) || errors.Is(err, rotate.ErrToolBusy) {
		return nil
	}
	return err
}

// Run drives passes until the context ends. The first pass happens
// immediately so a fresh daemon publishes before its first tick.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.RunPass(ctx); err != nil {
		log.Error().Err(err).Msg("initial pass failed")
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	var watchEvents <-chan string
	if d.watch {
		w, err := newWatcher(ctx, d.declDir, d.debounce)
		if err != nil {
			log.Warn().Err(err).Msg("declaration watch unavailable")
		} else {
			defer w.Close()
			watchEvents = w.events
		}
	}

	log.Info().
		Str("declarations", d.declDir).
		Str("output", d.outputPath).
		Dur("interval", d.interval).
		Bool("watch", watchEvents != nil).
		Msg("scheduler running")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("scheduler stopped")
			return nil
		case <-ticker.C:
			if err := d.RunPass(ctx); err != nil {
				log.Error().Err(err).Msg("scheduled pass failed")
			}
		case name := <-watchEvents:
			log.Info().Str("layer", name).Msg("declarations changed, re-rendering")
			if _, err := d.RenderOnce(ctx); err != nil {
				log.Error().Err(err).Msg("watch-triggered render failed")
			}
		}
	}
}

// Status returns a copy of the daemon snapshot.
func (d *Daemon) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

func (d *Daemon) finishRender(ctx context.Context, started time.Time, entries int, docSHA string, err error) {
	duration := time.Since(started)
	outcome := observability.OutcomeOK
	if err != nil {
		outcome = observability.OutcomeFailed
	}

	observability.RecordRenderPass(outcome, duration)
	if err == nil {
		observability.SetPublishedEntries(entries)
	}
	if recErr := d.recorder.Record(ctx, journal.Run{
		Kind:      journal.KindRender,
		Started:   started,
		Duration:  duration,
		OK:        err == nil,
		Detail:    errDetail(err),
		OutputSHA: docSHA,
	}); recErr != nil {
		log.Warn().Err(recErr).Msg("journal write failed")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.status.LastRender = PassInfo{
		At:       started,
		Outcome:  outcome,
		Duration: duration.String(),
		Detail:   errDetail(err),
	}
	if err == nil {
		d.status.Ready = true
		d.status.Entries = entries
		d.status.OutputSHA = docSHA
	} else {
		d.status.Ready = false
	}
}

func (d *Daemon) setRotateStatus(info PassInfo) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status.LastRotate = info
}

func errDetail(err error) string {
	if err == nil {
		return ""
	}
	return tail(err.Error(), 512)
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
