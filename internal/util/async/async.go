package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunParallel executes tasks concurrently with at most limit running at once.
// A limit of zero or less starts every task immediately. It waits for all
// started tasks and returns their errors joined, each prefixed with the task
// name. Once ctx is done, tasks that have not started yet are skipped and
// ctx.Err() is reported instead.
//
// Example:
//
//	tasks := []Task{
//	    {Name: "GKE/default-gke", Func: readGKE},
//	    {Name: "EKS/default-eks", Func: readEKS},
//	}
//	if err := RunParallel(ctx, tasks, 8); err != nil {
//	    return err
//	}
func RunParallel(ctx context.Context, tasks []Task, limit int) error {
	if len(tasks) == 0 {
		return nil
	}
	if limit <= 0 || limit > len(tasks) {
		limit = len(tasks)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	record := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	stop := func(err error) error {
		wg.Wait()
		record(err)
		return errors.Join(errs...)
	}

	sem := make(chan struct{}, limit)
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return stop(err)
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return stop(ctx.Err())
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			if err := task.Func(ctx); err != nil {
				record(fmt.Errorf("%s: %w", task.Name, err))
			}
		}()
	}

	wg.Wait()
	return errors.Join(errs...)
}
