package domain

import "strconv"

// MovieID identifies a movie in the metadata service. It is stable across calls.
type MovieID int64

// String renders the identifier in base 10.
func (id MovieID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Movie is the immutable record fetched for a single title.
type Movie struct {
	ID          MovieID
	Title       string
	ReleaseDate string
	PosterPath  string
	Overview    string
	Popularity  float64
}

// Year returns the four digit release year, or "N/A" when the release date is unknown.
func (m Movie) Year() string {
	return yearOf(m.ReleaseDate)
}

// Summary projects the movie onto the lightweight listing shape.
func (m Movie) Summary() MovieSummary {
	return MovieSummary{
		ID:          m.ID,
		Title:       m.Title,
		ReleaseDate: m.ReleaseDate,
		PosterPath:  m.PosterPath,
		Popularity:  m.Popularity,
	}
}

// MovieSummary is returned by title searches and filmography listings.
type MovieSummary struct {
	ID          MovieID
	Title       string
	ReleaseDate string
	PosterPath  string
	Popularity  float64
}

// Year returns the four digit release year, or "N/A" when the release date is unknown.
func (s MovieSummary) Year() string {
	return yearOf(s.ReleaseDate)
}

func yearOf(date string) string {
	if len(date) < 4 {
		return "N/A"
	}
	return date[:4]
}
