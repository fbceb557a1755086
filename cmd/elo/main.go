package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"tournament-elo/internal/api"
	"tournament-elo/internal/chart"
	"tournament-elo/internal/config"
	"tournament-elo/internal/loader"
	"tournament-elo/internal/logger"
	"tournament-elo/internal/query"
	"tournament-elo/internal/rating"
	"tournament-elo/internal/report"
	"tournament-elo/internal/service"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "elo",
		Usage: "tournament ratings from weekly match files",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "data-dir", Usage: "directory holding results_YYYYMMDD files"},
			&cli.StringFlag{Name: "roster", Usage: "optional player_tag roster file"},
			&cli.Float64Flag{Name: "k", Usage: "K factor (default from config)"},
			&cli.StringFlag{Name: "log-level", Value: "warn", Usage: "log level"},
		},
		Commands: []*cli.Command{
			{
				Name:   "leaderboard",
				Usage:  "current ratings and change since the last tournament",
				Action: leaderboardCmd,
			},
			{
				Name:   "history",
				Usage:  "rating after every tournament for one player",
				Flags:  []cli.Flag{playerFlag()},
				Action: historyCmd,
			},
			{
				Name:  "matches",
				Usage: "matches played by one player",
				Flags: []cli.Flag{
					playerFlag(),
					&cli.StringFlag{Name: "opponent", Usage: "only matches against this player"},
				},
				Action: matchesCmd,
			},
			{
				Name:   "opponents",
				Usage:  "everyone a player has faced",
				Flags:  []cli.Flag{playerFlag()},
				Action: opponentsCmd,
			},
			{
				Name:  "chart",
				Usage: "render a player's rating history as PNG",
				Flags: []cli.Flag{
					playerFlag(),
					&cli.StringFlag{Name: "out", Value: "rating.png", Usage: "output file"},
				},
				Action: chartCmd,
			},
			{
				Name:  "export",
				Usage: "write leaderboard and history to an xlsx workbook",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Value: "ratings.xlsx", Usage: "output file"},
				},
				Action: exportCmd,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func playerFlag() cli.Flag {
	return &cli.StringFlag{Name: "player", Aliases: []string{"p"}, Required: true, Usage: "player tag"}
}

func compute(c *cli.Context) (*service.Snapshot, error) {
	log := logger.New()
	if err := logger.SetLevel(c.String("log-level")); err != nil {
		return nil, err
	}

	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}
	if c.IsSet("data-dir") {
		cfg.DataDir = c.String("data-dir")
	}
	if c.IsSet("roster") {
		cfg.RosterPath = c.String("roster")
	}
	if c.IsSet("k") {
		cfg.KFactor = c.Float64("k")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := service.NewPipeline(cfg, loader.NewLoader(log), api.NewResultsClient(), log)
	return p.Compute(c.Context)
}

func leaderboardCmd(c *cli.Context) error {
	snap, err := compute(c)
	if err != nil {
		return err
	}
	rows, err := rating.Summarize(snap.Histories)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPLAYER\tRATING\tCHANGE")
	for i, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%+.1f\n", i+1, r.Player, r.Rating, r.Change)
	}
	return tw.Flush()
}

func historyCmd(c *cli.Context) error {
	snap, err := compute(c)
	if err != nil {
		return err
	}
	player := c.String("player")
	ratings, ok := snap.Histories[player]
	if !ok {
		return fmt.Errorf("%w: %q", service.ErrPlayerNotFound, player)
	}

	labels := append([]string{"initial"}, snap.Dates()...)
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TOURNAMENT\tRATING")
	for i, r := range ratings {
		fmt.Fprintf(tw, "%s\t%.1f\n", labels[i], r)
	}
	return tw.Flush()
}

func matchesCmd(c *cli.Context) error {
	snap, err := compute(c)
	if err != nil {
		return err
	}
	player := c.String("player")
	for _, m := range query.MatchesFor(snap.Log, player, c.String("opponent")) {
		line, err := query.FormatMatch(m, player)
		if errors.Is(err, query.ErrDrawOutcome) {
			date, _ := query.FormatDate(m.TournamentDate)
			fmt.Fprintf(c.App.Writer, "%s  DRAW  %s vs %s\n", date, m.Player1, m.Player2)
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, line)
	}
	return nil
}

func opponentsCmd(c *cli.Context) error {
	snap, err := compute(c)
	if err != nil {
		return err
	}
	player := c.String("player")
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OPPONENT\tW\tL\tD")
	for _, o := range query.OpponentsOf(snap.Log, player) {
		w, l, d := query.Record(query.MatchesFor(snap.Log, player, o), player)
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", o, w, l, d)
	}
	return tw.Flush()
}

func chartCmd(c *cli.Context) error {
	snap, err := compute(c)
	if err != nil {
		return err
	}
	player := c.String("player")
	ratings, ok := snap.Histories[player]
	if !ok {
		return fmt.Errorf("%w: %q", service.ErrPlayerNotFound, player)
	}
	png, err := chart.RatingHistory(player, append([]string{"initial"}, snap.Dates()...), ratings)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.String("out"), png, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "wrote %s\n", c.String("out"))
	return nil
}

func exportCmd(c *cli.Context) error {
	snap, err := compute(c)
	if err != nil {
		return err
	}
	rows, err := rating.Summarize(snap.Histories)
	if err != nil {
		return err
	}

	f, err := os.Create(c.String("out"))
	if err != nil {
		return err
	}
	defer f.Close()

	if err := report.WriteXLSX(f, rows, snap.Histories, snap.Dates()); err != nil {
		return err
	}
	return f.Close()
}
