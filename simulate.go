/*
Package main
File: simulate.go
Description: The "simulate" command. Plays N months headless with the
autopilot policy, optionally journaling each turn, and prints the books.
*/

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/everforgeworks/reel-empire/internal/game"
)

func simulateCmd() *cobra.Command {
	var (
		months  int
		asJSON  bool
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a headless autopilot session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if months < 1 {
				return fmt.Errorf("--months must be at least 1, got %d", months)
			}
			sess, err := openSession(cmd, settings)
			if err != nil {
				return err
			}
			defer sess.Close()

			reports, err := simulate(cmd, sess, months, verbose)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(reports)
			}
			renderBooks(cmd.OutOrStdout(), sess.game, reports)
			if sess.journal == nil {
				return nil
			}
			years, err := sess.journal.YearReports(cmd.Context())
			if err != nil {
				return err
			}
			renderYears(cmd.OutOrStdout(), years)
			return nil
		},
	}
	cmd.Flags().IntVar(&months, "months", 12, "number of months to simulate")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the turn reports as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print autopilot actions")
	return cmd
}

func simulate(cmd *cobra.Command, sess *session, months int, verbose bool) ([]*game.TurnReport, error) {
	g := sess.game
	var reports []*game.TurnReport
	for i := 0; i < months; i++ {
		for _, a := range g.Autopilot() {
			if verbose {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s  %s\n", g.Calendar.Date, a)
			}
		}

		report, err := g.AdvanceTurn()
		if errors.Is(err, game.ErrBankrupt) {
			sess.log.Warn("simulation ended early", "turn", g.Turn, "reason", err)
			break
		}
		if err != nil {
			return reports, err
		}
		if sess.journal != nil {
			if err := sess.journal.RecordTurn(cmd.Context(), report); err != nil {
				return reports, err
			}
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func renderBooks(out io.Writer, g *game.Game, reports []*game.TurnReport) {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetTitle(g.Studio.Name)
	tw.AppendHeader(table.Row{"Turn", "Date", "Event", "Trending", "Revenue", "Expenses", "Balance", "Releases"})
	var revenue, expenses float64
	for _, r := range reports {
		revenue += r.Revenue
		expenses += r.Expenses
		tw.AppendRow(table.Row{
			r.Turn, r.Date.String(), r.Event, fmt.Sprint(r.Trending),
			fmt.Sprintf("%.2f", r.Revenue), fmt.Sprintf("%.2f", r.Expenses),
			fmt.Sprintf("%.2f", r.BalanceAfter), len(r.Releases),
		})
	}
	tw.AppendFooter(table.Row{"", "", "", "Total", fmt.Sprintf("%.2f", revenue), fmt.Sprintf("%.2f", expenses),
		fmt.Sprintf("%.2f", g.Studio.Balance), len(g.Studio.Released)})
	tw.Render()

	top := g.Studio.TopReleases(5)
	if len(top) == 0 {
		return
	}
	mt := table.NewWriter()
	mt.SetOutputMirror(out)
	mt.SetTitle("Top releases")
	mt.AppendHeader(table.Row{"Title", "Genre", "Released", "Quality", "Critics", "Box office"})
	for _, m := range top {
		mt.AppendRow(table.Row{m.Title, m.Genre, m.ReleaseDate.String(), m.Quality, m.CriticScore, fmt.Sprintf("%.2f", m.BoxOffice)})
	}
	mt.Render()
}

// renderYears prints the journaled year-end summaries, including earlier sessions on the same journal.
func renderYears(out io.Writer, years []game.YearReport) {
	if len(years) == 0 {
		return
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetTitle("Years on record")
	tw.AppendHeader(table.Row{"Year", "Releases", "Box office", "Avg quality", "Best title", "Earnings", "Expenses", "Prestige", "Balance"})
	for _, y := range years {
		tw.AppendRow(table.Row{
			y.Year, y.Releases, fmt.Sprintf("%.2f", y.BoxOffice), fmt.Sprintf("%.1f", y.AverageQuality), y.BestTitle,
			fmt.Sprintf("%.2f", y.Earnings), fmt.Sprintf("%.2f", y.Expenses), y.Prestige, fmt.Sprintf("%.2f", y.Balance),
		})
	}
	tw.Render()
}
