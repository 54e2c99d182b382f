package engine

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// candidateMultiple is how many extraction candidates are dispatched per
// requested result, absorbing the expected failure rate.
const candidateMultiple = 2

// itemTimeoutSlack pads the outer per-item race past the extractor's own
// timeout, so the race only fires when an internal timeout failed to.
const itemTimeoutSlack = 5 * time.Second

// ExtractForResults fills FullContent/ContentPreview/WordCount/FetchStatus
// on up to targetCount results. PDF URLs are excluded outright, not marked
// as errors. All candidates are fetched concurrently. The returned order is
// successes first, then failures, deliberately not input order: callers get
// usable entries at the top.
func (e *Extractor) ExtractForResults(ctx context.Context, results []SearchResult, targetCount int, maxLen int) []SearchResult {
	if targetCount <= 0 {
		targetCount = len(results)
	}

	var candidates []SearchResult
	for _, r := range results {
		if IsPDFURL(r.URL) {
			slog.Debug("skipping PDF result", slog.String("url", r.URL))
			continue
		}
		candidates = append(candidates, r)
		if len(candidates) >= targetCount*candidateMultiple {
			break
		}
	}

	extracted := make([]SearchResult, len(candidates))
	var g errgroup.Group
	g.SetLimit(e.cfg.MaxConcurrent)

	for i, r := range candidates {
		g.Go(func() error {
			extracted[i] = e.extractOne(ctx, r, maxLen)
			return nil
		})
	}
	_ = g.Wait()

	var succeeded, failed []SearchResult
	for _, r := range extracted {
		if r.FetchStatus == FetchSuccess {
			succeeded = append(succeeded, r)
		} else {
			failed = append(failed, r)
		}
	}

	out := succeeded
	if len(out) > targetCount {
		out = out[:targetCount]
	}
	// Backfill with failed entries, carrying their errors, only when there
	// aren't enough successes.
	for _, r := range failed {
		if len(out) >= targetCount {
			break
		}
		out = append(out, r)
	}
	return out
}

// extractOne runs a single extraction under a hard outer timeout race, so
// one hung fetch cannot stall the whole batch even if the extractor's
// internal timeout misbehaves.
func (e *Extractor) extractOne(ctx context.Context, r SearchResult, maxLen int) SearchResult {
	type outcome struct {
		title   string
		content string
		err     error
	}

	itemBudget := e.cfg.FetchTimeout + itemTimeoutSlack
	done := make(chan outcome, 1)
	go func() {
		title, content, err := e.ExtractContent(ctx, r.URL, e.cfg.FetchTimeout, maxLen)
		done <- outcome{title, content, err}
	}()

	r.Timestamp = time.Now().UTC().Format(time.RFC3339)

	select {
	case o := <-done:
		if o.err != nil {
			r.FetchStatus = classifyError(o.err)
			r.Error = o.err.Error()
			return r
		}
		if o.title != "" && r.Title == "" {
			r.Title = o.title
		}
		r.FullContent = o.content
		r.ContentPreview = TruncateAtWord(o.content, previewLength)
		r.WordCount = WordCount(o.content)
		r.FetchStatus = FetchSuccess
		return r
	case <-time.After(itemBudget):
		r.FetchStatus = FetchTimeout
		r.Error = "extraction timed out after " + itemBudget.String()
		return r
	case <-ctx.Done():
		r.FetchStatus = FetchTimeout
		r.Error = ctx.Err().Error()
		return r
	}
}

// classifyError maps an extraction error onto the per-result status.
func classifyError(err error) FetchStatus {
	msg := err.Error()
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") {
		return FetchTimeout
	}
	return FetchError
}
