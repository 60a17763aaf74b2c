package domain

import "strconv"

// PersonID identifies a cast or crew member.
type PersonID int64

// String renders the identifier in base 10.
func (id PersonID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Person is a credited cast or crew member of a movie.
// Job and Department are only populated for crew credits, Character only for cast credits.
type Person struct {
	ID         PersonID
	Name       string
	Character  string
	Job        string
	Department string
	Popularity float64
}

// Credits holds the ordered cast and crew of a movie.
type Credits struct {
	MovieID MovieID
	Cast    []Person
	Crew    []Person
}

// People returns the cast followed by the crew.
func (c Credits) People() []Person {
	people := make([]Person, 0, len(c.Cast)+len(c.Crew))
	people = append(people, c.Cast...)
	people = append(people, c.Crew...)
	return people
}

// Director returns the first crew member credited with the Director job.
func (c Credits) Director() (Person, bool) {
	for _, p := range c.Crew {
		if p.Job == "Director" {
			return p, true
		}
	}
	return Person{}, false
}

// Filmography lists the movies a person is credited in.
type Filmography struct {
	PersonID PersonID
	Cast     []MovieSummary
	Crew     []MovieSummary
}

// Movies returns cast credits followed by crew credits.
func (f Filmography) Movies() []MovieSummary {
	movies := make([]MovieSummary, 0, len(f.Cast)+len(f.Crew))
	movies = append(movies, f.Cast...)
	movies = append(movies, f.Crew...)
	return movies
}
