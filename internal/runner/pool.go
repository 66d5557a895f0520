package runner

import (
	"fmt"
	"sync"
)

// Job is a named unit of work. Errors returned by Run are prefixed with
// Name.
type Job struct {
	Name string
	Run  func() error
}

// RunPool executes jobs with at most maxWorkers concurrently and returns
// the errors in job order.
func RunPool(maxWorkers int, jobs []Job) []error {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	var wg sync.WaitGroup
	results := make([]error, len(jobs))
	sem := make(chan struct{}, maxWorkers)

	for i, job := range jobs {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					results[i] = fmt.Errorf("%s: panic: %v", job.Name, r)
				}
			}()
			if err := job.Run(); err != nil {
				results[i] = fmt.Errorf("%s: %w", job.Name, err)
			}
		}()
	}
	wg.Wait()

	var errs []error
	for _, err := range results {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
