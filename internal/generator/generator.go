package generator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/dataset"
)

// Generator produces synthetic movie catalogues.
type Generator struct {
	cfg       Config
	rand      *rand.Rand
	fragments nameFragments
}

type person struct {
	id         int64
	name       string
	popularity float64
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.NumMovies <= 0 {
		cfg.NumMovies = def.NumMovies
	}
	if cfg.NumPeople <= 0 {
		cfg.NumPeople = def.NumPeople
	}
	if cfg.CastSize <= 0 {
		cfg.CastSize = def.CastSize
	}
	if cfg.CastSize > cfg.NumPeople {
		cfg.CastSize = cfg.NumPeople
	}
	if cfg.CrewSize < 0 {
		cfg.CrewSize = def.CrewSize
	}
	if cfg.StarChance <= 0 {
		cfg.StarChance = def.StarChance
	}
	if cfg.StartYear <= 0 {
		cfg.StartYear = def.StartYear
	}
	if cfg.EndYear < cfg.StartYear {
		cfg.EndYear = cfg.StartYear
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:       cfg,
		rand:      rand.New(rand.NewSource(cfg.Seed)),
		fragments: defaultNameFragments(),
	}
}

// Generate synthesises movies with cast and crew drawn from a shared pool of people, so
// movies connect through recurring names. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (dataset.Catalogue, error) {
	people := g.people()
	stars := people[:max(1, len(people)/20)]

	titles := make(map[string]int, g.cfg.NumMovies)
	movies := make([]dataset.MovieRecord, 0, g.cfg.NumMovies)
	for i := 0; i < g.cfg.NumMovies; i++ {
		if err := ctx.Err(); err != nil {
			return dataset.Catalogue{}, err
		}

		title := g.randomTitle()
		titles[title]++
		if n := titles[title]; n > 1 {
			title = fmt.Sprintf("%s %d", title, n)
		}

		movie := dataset.MovieRecord{
			ID:          int64(i + 1),
			Title:       title,
			ReleaseDate: g.randomReleaseDate(),
			PosterPath:  fmt.Sprintf("/synthetic/%06d.jpg", i+1),
			Overview:    g.randomOverview(),
		}

		used := make(map[int64]struct{}, g.cfg.CastSize+g.cfg.CrewSize)
		for len(movie.Cast) < g.cfg.CastSize {
			p := g.pick(people, stars)
			if _, dup := used[p.id]; dup {
				continue
			}
			used[p.id] = struct{}{}
			movie.Cast = append(movie.Cast, dataset.CreditRecord{
				ID:         p.id,
				Name:       p.name,
				Character:  g.randomCharacter(),
				Popularity: p.popularity,
			})
			movie.Popularity += p.popularity / float64(g.cfg.CastSize)
		}
		for j := 0; j < g.cfg.CrewSize; j++ {
			p := people[g.rand.Intn(len(people))]
			job := g.fragments.jobs[j%len(g.fragments.jobs)]
			movie.Crew = append(movie.Crew, dataset.CreditRecord{
				ID:         p.id,
				Name:       p.name,
				Job:        job.title,
				Department: job.department,
				Popularity: p.popularity,
			})
		}
		movie.Popularity = math.Round(movie.Popularity*1000) / 1000
		movies = append(movies, movie)
	}

	return dataset.Catalogue{Movies: movies}, nil
}

// people builds the pool sorted by descending popularity. Popularity follows a power law so
// a few people appear in many movies.
func (g *Generator) people() []person {
	out := make([]person, g.cfg.NumPeople)
	for i := range out {
		out[i] = person{
			id:         int64(1000 + i),
			name:       g.randomFullName(),
			popularity: math.Round(100/math.Pow(1+g.rand.Float64()*99, 0.8)*1000) / 1000,
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].popularity > out[j].popularity })
	return out
}

func (g *Generator) pick(people, stars []person) person {
	if g.rand.Float64() < g.cfg.StarChance {
		return stars[g.rand.Intn(len(stars))]
	}
	return people[g.rand.Intn(len(people))]
}

func (g *Generator) randomTitle() string {
	adj := g.fragments.adjectives[g.rand.Intn(len(g.fragments.adjectives))]
	noun := g.fragments.nouns[g.rand.Intn(len(g.fragments.nouns))]
	if g.rand.Float64() < 0.5 {
		return fmt.Sprintf("The %s %s", adj, noun)
	}
	place := g.fragments.places[g.rand.Intn(len(g.fragments.places))]
	return fmt.Sprintf("%s of %s", noun, place)
}

// randomReleaseDate leaves roughly one movie in fifty undated, as real catalogues do.
func (g *Generator) randomReleaseDate() string {
	if g.rand.Intn(50) == 0 {
		return ""
	}
	year := g.cfg.StartYear + g.rand.Intn(g.cfg.EndYear-g.cfg.StartYear+1)
	return fmt.Sprintf("%04d-%02d-%02d", year, 1+g.rand.Intn(12), 1+g.rand.Intn(28))
}

func (g *Generator) randomFullName() string {
	return fmt.Sprintf("%s %s", g.fragments.first[g.rand.Intn(len(g.fragments.first))],
		g.fragments.last[g.rand.Intn(len(g.fragments.last))])
}

func (g *Generator) randomCharacter() string {
	return g.fragments.characters[g.rand.Intn(len(g.fragments.characters))]
}

func (g *Generator) randomOverview() string {
	return fmt.Sprintf("A %s story about %s.",
		g.fragments.genres[g.rand.Intn(len(g.fragments.genres))],
		g.fragments.premises[g.rand.Intn(len(g.fragments.premises))])
}

type job struct {
	title      string
	department string
}

type nameFragments struct {
	first      []string
	last       []string
	adjectives []string
	nouns      []string
	places     []string
	characters []string
	genres     []string
	premises   []string
	jobs       []job
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		first:      []string{"Jane", "John", "Alex", "Priya", "Liu", "Maria", "Omar", "Sofia", "Noah", "Emma", "Lucas", "Mia", "Ava", "Ethan", "Zara"},
		last:       []string{"Doe", "Smith", "Chen", "Patel", "Garcia", "Khan", "Kim", "Ivanov", "Nguyen", "Silva", "Brown", "Lee"},
		adjectives: []string{"Silent", "Crimson", "Last", "Hidden", "Electric", "Broken", "Golden", "Midnight", "Frozen", "Wild"},
		nouns:      []string{"Harbor", "Signal", "Empire", "Garden", "Witness", "Horizon", "Machine", "Frontier", "Echo", "Crown"},
		places:     []string{"Tomorrow", "the North", "Glass", "the Valley", "Dust", "the Tide", "Ashes", "the City"},
		characters: []string{"Detective", "Pilot", "Mother", "Stranger", "Captain", "Thief", "Doctor", "Narrator", "Rival", "Mentor"},
		genres:     []string{"tense", "heartfelt", "sprawling", "quiet", "darkly comic", "breathless"},
		premises:   []string{"a heist gone wrong", "two rivals forced together", "a town with a secret", "a long journey home", "an impossible rescue"},
		jobs: []job{
			{title: "Director", department: "Directing"},
			{title: "Screenplay", department: "Writing"},
			{title: "Original Music Composer", department: "Sound"},
			{title: "Director of Photography", department: "Camera"},
		},
	}
}
