package importer

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/nikbrunner/linkify/internal/model"
)

// Status is the outcome of uploading one link.
type Status int

const (
	Stored  Status = iota // accepted by the service
	Failed                // rejected or unreachable
	Skipped               // not attempted, e.g. the context was cancelled
)

// Result holds the upload result for a single link.
type Result struct {
	Link   *model.Link
	Status Status
	Error  string // short error description for Failed and Skipped
}

// Storer writes one link to the service. api.Client and proxy.Bridge
// satisfy it.
type Storer interface {
	StoreLink(ctx context.Context, link model.Link) error
}

// ProgressFunc is called after each link is handled.
// completed is the number of links handled so far, total is the total count.
type ProgressFunc func(completed, total int)

// Upload stores all links concurrently and returns one result per link in
// input order.
func Upload(ctx context.Context, store Storer, links []model.Link, concurrency int, onProgress ProgressFunc) []Result {
	if len(links) == 0 {
		return nil
	}
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]Result, len(links))
	jobs := make(chan int, len(links))
	var wg sync.WaitGroup

	// Progress tracking
	var progressMu sync.Mutex
	completed := 0

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = uploadOne(ctx, store, &links[idx])

				if onProgress != nil {
					progressMu.Lock()
					completed++
					onProgress(completed, len(links))
					progressMu.Unlock()
				}
			}
		}()
	}

	for i := range links {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

func uploadOne(ctx context.Context, store Storer, link *model.Link) Result {
	result := Result{Link: link}

	if err := ctx.Err(); err != nil {
		result.Status = Skipped
		result.Error = normalizeError(err)
		return result
	}

	if err := store.StoreLink(ctx, *link); err != nil {
		result.Status = Failed
		result.Error = normalizeError(err)
		return result
	}

	result.Status = Stored
	return result
}

// Summary counts results by status.
func Summary(results []Result) (stored, failed, skipped int) {
	for _, r := range results {
		switch r.Status {
		case Stored:
			stored++
		case Failed:
			failed++
		case Skipped:
			skipped++
		}
	}
	return stored, failed, skipped
}

// normalizeError simplifies verbose error messages into readable categories.
func normalizeError(err error) string {
	if errors.Is(err, context.Canceled) {
		return "Cancelled"
	}

	errStr := err.Error()
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	default:
		return errStr
	}
}
