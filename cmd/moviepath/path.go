package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/pathfinder"
	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/service"
)

type pathOutput struct {
	Algorithm   string   `json:"algorithm"`
	Path        []string `json:"path"`
	Connections []string `json:"connections"`
	Processed   int      `json:"processed"`
	Cost        float64  `json:"cost"`
	DurationMs  int64    `json:"durationMs"`
}

func (c *cli) pathCmd() *cobra.Command {
	var algorithm string

	cmd := &cobra.Command{
		Use:   "path <start title> <end title>",
		Short: "Find a chain of movies connecting two titles",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := pathfinder.ParseMode(algorithm)
			if err != nil {
				return err
			}

			result, err := c.svc.FindPath(cmd.Context(), args[0], args[1], mode)
			if err != nil {
				var noPath *service.NoPathError
				if errors.As(err, &noPath) {
					return fmt.Errorf("no connection found after exploring %d movies (timed out: %t)", len(noPath.Processed), noPath.TimedOut)
				}
				return err
			}

			if c.jsonOutput {
				enc := json.NewEncoder(c.out)
				enc.SetIndent("", "  ")
				return enc.Encode(pathOutput{
					Algorithm:   string(result.Mode),
					Path:        result.Titles(),
					Connections: result.Connections(),
					Processed:   len(result.Processed),
					Cost:        result.Cost,
					DurationMs:  result.Duration.Milliseconds(),
				})
			}
			renderPath(c, result)
			return nil
		},
	}
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", string(pathfinder.ModeUniform), "search algorithm: uniform (bfs, dijkstra) or heuristic (astar)")
	return cmd
}

func renderPath(c *cli, result service.PathResult) {
	connections := result.Connections()
	for i, step := range result.Steps {
		fmt.Fprintf(c.out, "%s (%s)\n", step.Movie.Title, step.Movie.Year())
		if i < len(connections) {
			fmt.Fprintf(c.out, "  via %s\n", connections[i])
		}
	}
	fmt.Fprintf(c.out, "%s\n%d hops, %d movies explored in %s\n",
		strings.Repeat("-", 20), len(connections), len(result.Processed), result.Duration.Round(time.Millisecond))
}
