package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/dataset"
)

// TaskError accumulates the failures of a bulk operation.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return "multiple errors: " + strings.Join(msgs, "; ")
}

func (e *TaskError) Unwrap() []error {
	return e.Errors
}

func (e *TaskError) append(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// MovieWriter persists one catalogue record.
type MovieWriter interface {
	UpsertMovie(ctx context.Context, rec dataset.MovieRecord) error
}

// BulkSeeder loads catalogue records into a MovieWriter with a fixed pool of workers.
type BulkSeeder struct {
	writer  MovieWriter
	workers int
}

// NewBulkSeeder creates a seeder with the given concurrency.
func NewBulkSeeder(writer MovieWriter, workers int) *BulkSeeder {
	if workers <= 0 {
		workers = 4
	}
	return &BulkSeeder{writer: writer, workers: workers}
}

// Seed writes every movie. Individual failures are collected into a *TaskError; cancellation
// stops dispatching and is returned as is.
func (bs *BulkSeeder) Seed(ctx context.Context, movies []dataset.MovieRecord) error {
	if len(movies) == 0 {
		return nil
	}

	indexCh := make(chan int)
	errCh := make(chan error, len(movies))
	var wg sync.WaitGroup

	for i := 0; i < bs.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexCh {
				errCh <- bs.writer.UpsertMovie(ctx, movies[idx])
			}
		}()
	}

Dispatch:
	for i := range movies {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Dispatch
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	if err := ctx.Err(); err != nil {
		return err
	}
	var taskErr TaskError
	for err := range errCh {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	return taskErr.asError()
}
