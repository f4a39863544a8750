package profile

import (
	"context"
	"sort"
	"sync"
	"time"

	"nse-profiler/internal/models"
)

// BatchResult pairs one session with its computed profile or the error
// that prevented it. Callers cannot mistake a failed day for a valid
// profile: exactly one of Profile and Err is set.
type BatchResult struct {
	Symbol  string
	Date    time.Time
	Profile *models.VolumeProfile
	Err     error
}

// CalculateBatch computes profiles for multiple sessions using a
// bounded worker pool. Days are independent, so no ordering or locking
// is needed between them; results come back sorted by date (then
// symbol). A cancelled context leaves the remaining days marked with
// the context error.
func (b *Builder) CalculateBatch(ctx context.Context, sessions []models.Session, workers int) []BatchResult {
	if workers <= 0 {
		workers = 4
	}

	results := make([]BatchResult, len(sessions))
	work := make(chan int, len(sessions))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				session := sessions[i]
				result := BatchResult{Symbol: session.Symbol, Date: session.Date}

				select {
				case <-ctx.Done():
					result.Err = ctx.Err()
				default:
					result.Profile, result.Err = b.Calculate(session)
				}

				results[i] = result
			}
		}()
	}

	for i := range sessions {
		work <- i
	}
	close(work)

	wg.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Date.Equal(results[j].Date) {
			return results[i].Symbol < results[j].Symbol
		}
		return results[i].Date.Before(results[j].Date)
	})

	return results
}
