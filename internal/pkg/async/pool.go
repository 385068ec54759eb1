// internal/pkg/async/pool.go
package async

import (
	"context"
	"sync"
)

// Task is a named unit of work run by a Pool.
type Task struct {
	Name    string
	Execute func(ctx context.Context) (any, error)
}

type Result struct {
	Name string
	Data any
	Err  error
}

// Pool runs batches of tasks on a bounded number of goroutines. A Pool is
// reusable; every Execute call gets its own channels.
type Pool struct {
	workerCount int
}

func NewPool(workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{workerCount: workerCount}
}

func (p *Pool) worker(ctx context.Context, tasks <-chan Task, results chan<- Result, wg *sync.WaitGroup) {
	defer wg.Done()
	for task := range tasks {
		if err := ctx.Err(); err != nil {
			results <- Result{Name: task.Name, Err: err}
			continue
		}
		data, err := task.Execute(ctx)
		results <- Result{
			Name: task.Name,
			Data: data,
			Err:  err,
		}
	}
}

// Execute runs tasks and returns their results keyed by task name. Tasks not
// started before ctx is cancelled report ctx.Err().
func (p *Pool) Execute(ctx context.Context, tasks []Task) map[string]Result {
	var wg sync.WaitGroup
	queue := make(chan Task, len(tasks))
	results := make(chan Result, len(tasks))

	for _, task := range tasks {
		queue <- task
	}
	close(queue)

	workers := min(p.workerCount, len(tasks))
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go p.worker(ctx, queue, results, &wg)
	}

	wg.Wait()
	close(results)

	collected := make(map[string]Result, len(tasks))
	for result := range results {
		collected[result.Name] = result
	}
	return collected
}
