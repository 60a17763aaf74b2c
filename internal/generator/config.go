package generator

// Config drives the synthetic catalogue generator.
type Config struct {
	NumMovies int
	NumPeople int
	CastSize  int
	CrewSize  int
	// StarChance is the probability that a cast slot is filled from the small pool of popular
	// people, which is what keeps the catalogue connected.
	StarChance float64
	StartYear  int
	EndYear    int
	Seed       int64
}

// DefaultConfig returns settings that produce a densely connected catalogue.
func DefaultConfig() Config {
	return Config{
		NumMovies:  2000,
		NumPeople:  6000,
		CastSize:   8,
		CrewSize:   3,
		StarChance: 0.3,
		StartYear:  1970,
		EndYear:    2024,
		Seed:       42,
	}
}
