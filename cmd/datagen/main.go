package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		movies      = flag.Int("movies", cfg.NumMovies, "number of movies to generate")
		people      = flag.Int("people", cfg.NumPeople, "size of the shared cast and crew pool")
		castSize    = flag.Int("cast", cfg.CastSize, "cast members per movie")
		crewSize    = flag.Int("crew", cfg.CrewSize, "crew members per movie")
		starChance  = flag.Float64("star-chance", cfg.StarChance, "probability a cast slot goes to a popular person")
		startYear   = flag.Int("start-year", cfg.StartYear, "earliest release year")
		endYear     = flag.Int("end-year", cfg.EndYear, "latest release year")
		seed        = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir   = flag.String("output-dir", "data", "directory to write the catalogue into")
		format      = flag.String("format", "json", "output format: json or yaml")
		writeStdout = flag.Bool("stdout", false, "write the catalogue as JSON to stdout instead of a file")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumMovies:  *movies,
		NumPeople:  *people,
		CastSize:   *castSize,
		CrewSize:   *crewSize,
		StarChance: clampProbability(*starChance),
		StartYear:  *startYear,
		EndYear:    *endYear,
		Seed:       *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cat, err := generator.New(genCfg).Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(cat); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write catalogue to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	path, err := generator.WriteCatalogue(cat, *outputDir, *format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to write catalogue: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d movies into %s\n", len(cat.Movies), path)
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
