package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type listingOutput struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Year     string `json:"year"`
	Director string `json:"director"`
}

func (c *cli) searchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <title>",
		Short: "List movies matching a title with their year and director",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listings, err := c.svc.SearchMovies(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}

			out := make([]listingOutput, 0, len(listings))
			for _, l := range listings {
				out = append(out, listingOutput{
					ID:       int64(l.Movie.ID),
					Title:    l.Movie.Title,
					Year:     l.Movie.Year(),
					Director: l.Director,
				})
			}

			if c.jsonOutput {
				enc := json.NewEncoder(c.out)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			if len(out) == 0 {
				fmt.Fprintln(c.out, "no movies found")
				return nil
			}
			for _, l := range out {
				fmt.Fprintf(c.out, "%-8d %s (%s), directed by %s\n", l.ID, l.Title, l.Year, l.Director)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of results")
	return cmd
}
