package app

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"prodfmt/internal/categorize"
	"prodfmt/internal/config"
	"prodfmt/internal/listing"
	"prodfmt/internal/logging"
)

var blockSplitRe = regexp.MustCompile(`\n\s*\n`)

// SplitBlocks cuts raw multi-listing input on blank lines, dropping empty
// blocks.
func SplitBlocks(raw string) []string {
	blocks := blockSplitRe.Split(strings.TrimSpace(raw), -1)
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if strings.TrimSpace(b) != "" {
			out = append(out, b)
		}
	}
	return out
}

// formatter drives per-block formatting plus the best-effort categorization
// side-call. Blocks share no state, so they run concurrently; the side-call
// runs off the formatting path on the formatter's own context and is drained
// with a bounded wait before shutdown.
type formatter struct {
	concurrency  int
	separator    string
	classifier   categorize.Classifier
	limiter      *rate.Limiter
	logger       *logging.Logger
	drainTimeout time.Duration
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

func newFormatter(cfg *config.Config, classifier categorize.Classifier, logger *logging.Logger) *formatter {
	perMin := cfg.Categorizer.RatePerMin
	if perMin <= 0 {
		perMin = 60
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	drain := time.Duration(cfg.Categorizer.TimeoutSec) * time.Second
	if drain <= 0 {
		drain = 30 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &formatter{
		concurrency:  concurrency,
		separator:    cfg.Separator,
		classifier:   classifier,
		limiter:      rate.NewLimiter(rate.Limit(float64(perMin)/60.0), 1),
		logger:       logger,
		drainTimeout: drain,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// formatSource renders every block of one raw input and joins the results
// with the separator glyph. Rendering itself cannot fail.
func (f *formatter) formatSource(name, raw string) (string, int) {
	blocks := SplitBlocks(raw)
	if len(blocks) == 0 {
		return "", 0
	}
	results := make([]string, len(blocks))
	g := new(errgroup.Group)
	g.SetLimit(f.concurrency)
	for i := range blocks {
		i := i
		g.Go(func() error {
			l := listing.Parse(blocks[i])
			results[i] = listing.Render(l)
			f.dispatchCategorize(name, i+1, l.Name)
			return nil
		})
	}
	_ = g.Wait()
	return strings.Join(results, "\n"+f.separator+"\n"), len(blocks)
}

// dispatchCategorize fires the at-most-once classification for a block. The
// result is logged and otherwise discarded; a failure produces exactly one
// error event and never reaches the rendered output. Calls cancelled during
// shutdown drain are dropped silently.
func (f *formatter) dispatchCategorize(input string, block int, title string) {
	if f.classifier == nil || strings.TrimSpace(title) == "" {
		return
	}
	if _, off := f.classifier.(categorize.Noop); off {
		return
	}
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		if err := f.limiter.Wait(f.ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			f.logger.Emit(logging.Event{Level: "error", Event: "categorize_failed", Input: input, Block: block, Error: err.Error()})
			return
		}
		start := time.Now()
		category, err := f.classifier.Classify(f.ctx, title)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			f.logger.Emit(logging.Event{Level: "error", Event: "categorize_failed", Input: input, Block: block, Error: err.Error()})
			return
		}
		if category == "" {
			category = categorize.Sentinel
		}
		f.logger.Emit(logging.Event{
			Level:     "debug",
			Event:     "categorize_ok",
			Input:     input,
			Block:     block,
			Category:  category,
			LatencyMS: time.Since(start).Milliseconds(),
		})
	}()
}

// wait drains pending categorize calls, but no longer than the categorizer
// timeout: anything still queued on the rate limiter by then is cancelled so
// shutdown stays bounded.
func (f *formatter) wait() {
	defer f.cancel()
	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()
	timer := time.NewTimer(f.drainTimeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		f.cancel()
		<-done
	}
}
