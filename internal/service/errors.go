package service

import (
	"errors"
	"fmt"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/domain"
)

var (
	// ErrInputNotResolved marks a start or end title that matches no movie.
	ErrInputNotResolved = errors.New("title did not resolve to a movie")
	// ErrNoPathFound marks a search that ended without connecting the two movies.
	ErrNoPathFound = errors.New("no path found")
)

// UnresolvedError reports which title could not be resolved. Err holds the lookup failure, if
// the lookup itself failed rather than returning no match.
type UnresolvedError struct {
	Role  string
	Title string
	Err   error
}

func (e *UnresolvedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s title %q: %v", e.Role, e.Title, e.Err)
	}
	return fmt.Sprintf("%s title %q: %v", e.Role, e.Title, ErrInputNotResolved)
}

func (e *UnresolvedError) Is(target error) bool {
	return target == ErrInputNotResolved
}

func (e *UnresolvedError) Unwrap() error {
	return e.Err
}

// NoPathError carries the movies settled before the search gave up.
type NoPathError struct {
	Processed []domain.MovieID
	TimedOut  bool
}

func (e *NoPathError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("%v: deadline reached after settling %d movies", ErrNoPathFound, len(e.Processed))
	}
	return fmt.Sprintf("%v: settled %d movies", ErrNoPathFound, len(e.Processed))
}

func (e *NoPathError) Is(target error) bool {
	return target == ErrNoPathFound
}
