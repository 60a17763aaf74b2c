// Package dataset reads and writes movie catalogue files and serves them as an in-memory
// metadata provider.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/domain"
)

// Catalogue is the on-disk representation of a set of movies with their credits.
type Catalogue struct {
	Movies []MovieRecord `json:"movies" yaml:"movies"`
}

// MovieRecord is one movie with its cast and crew.
type MovieRecord struct {
	ID          int64          `json:"id" yaml:"id"`
	Title       string         `json:"title" yaml:"title"`
	ReleaseDate string         `json:"release_date,omitempty" yaml:"release_date,omitempty"`
	PosterPath  string         `json:"poster_path,omitempty" yaml:"poster_path,omitempty"`
	Overview    string         `json:"overview,omitempty" yaml:"overview,omitempty"`
	Popularity  float64        `json:"popularity" yaml:"popularity"`
	Cast        []CreditRecord `json:"cast,omitempty" yaml:"cast,omitempty"`
	Crew        []CreditRecord `json:"crew,omitempty" yaml:"crew,omitempty"`
}

// CreditRecord is a person credited on a movie.
type CreditRecord struct {
	ID         int64   `json:"id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	Character  string  `json:"character,omitempty" yaml:"character,omitempty"`
	Job        string  `json:"job,omitempty" yaml:"job,omitempty"`
	Department string  `json:"department,omitempty" yaml:"department,omitempty"`
	Popularity float64 `json:"popularity" yaml:"popularity"`
}

var errEmptyTitle = errors.New("movie title is required")

// Movie converts the record to its domain form.
func (r MovieRecord) Movie() domain.Movie {
	return domain.Movie{
		ID:          domain.MovieID(r.ID),
		Title:       r.Title,
		ReleaseDate: r.ReleaseDate,
		PosterPath:  r.PosterPath,
		Overview:    r.Overview,
		Popularity:  r.Popularity,
	}
}

// Credits converts the record's cast and crew to their domain form.
func (r MovieRecord) Credits() domain.Credits {
	credits := domain.Credits{
		MovieID: domain.MovieID(r.ID),
		Cast:    make([]domain.Person, 0, len(r.Cast)),
		Crew:    make([]domain.Person, 0, len(r.Crew)),
	}
	for _, c := range r.Cast {
		credits.Cast = append(credits.Cast, c.Person())
	}
	for _, c := range r.Crew {
		credits.Crew = append(credits.Crew, c.Person())
	}
	return credits
}

// Person converts the credit to its domain form.
func (c CreditRecord) Person() domain.Person {
	return domain.Person{
		ID:         domain.PersonID(c.ID),
		Name:       c.Name,
		Character:  c.Character,
		Job:        c.Job,
		Department: c.Department,
		Popularity: c.Popularity,
	}
}

// Validate rejects catalogues with missing or duplicate movie ids.
func (c Catalogue) Validate() error {
	seen := make(map[int64]struct{}, len(c.Movies))
	for i, m := range c.Movies {
		if m.ID <= 0 {
			return fmt.Errorf("movie %d: id must be positive, got %d", i, m.ID)
		}
		if strings.TrimSpace(m.Title) == "" {
			return fmt.Errorf("movie %d: %w", m.ID, errEmptyTitle)
		}
		if _, dup := seen[m.ID]; dup {
			return fmt.Errorf("duplicate movie id %d", m.ID)
		}
		seen[m.ID] = struct{}{}
	}
	return nil
}

// Load reads a catalogue from a JSON or YAML file, chosen by extension.
func Load(path string) (Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalogue{}, fmt.Errorf("read %s: %w", path, err)
	}

	var cat Catalogue
	if isYAML(path) {
		err = yaml.Unmarshal(data, &cat)
	} else {
		err = json.Unmarshal(data, &cat)
	}
	if err != nil {
		return Catalogue{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := cat.Validate(); err != nil {
		return Catalogue{}, fmt.Errorf("validate %s: %w", path, err)
	}
	return cat, nil
}

// Write serializes the catalogue to path, creating parent directories as needed.
func Write(cat Catalogue, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if isYAML(path) {
		encoder := yaml.NewEncoder(file)
		encoder.SetIndent(2)
		if err := encoder.Encode(cat); err != nil {
			return fmt.Errorf("encode yaml for %s: %w", path, err)
		}
		return encoder.Close()
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cat); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
