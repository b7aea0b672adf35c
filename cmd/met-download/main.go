package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/alanbriolat/opera-archiver"
	"github.com/alanbriolat/opera-archiver/internal/app"
	"github.com/alanbriolat/opera-archiver/provider/met"
)

var errMissingQuery = errors.New("missing <query-or-url> argument")

func main() {
	d := opera_archiver.DefaultConfig
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "year",
			Aliases: []string{"y"},
			Usage:   "only consider performances from `YEAR`",
		},
		&cli.StringFlag{
			Name:    "search-api",
			Value:   d.MetSearchAPI,
			Usage:   "search API `URL` the query is appended to",
			EnvVars: []string{"MET_SEARCH_API"},
		},
		&cli.StringFlag{
			Name:    "page-base",
			Value:   d.MetPageBase,
			Usage:   "performance page `URL` the ID is appended to",
			EnvVars: []string{"MET_PAGE_BASE"},
		},
	}
	app.Main(&cli.App{
		Name:      "met-download",
		Usage:     "download a performance from Met Opera On Demand",
		ArgsUsage: "<query-or-url> [output-dir]",
		Flags:     append(flags, app.CommonFlags(met.DefaultGrace)...),
		Action:    run,
	})
}

func run(c *cli.Context) error {
	if c.NArg() < 1 {
		_ = cli.ShowAppHelp(c)
		return errMissingQuery
	}
	if err := app.CheckArgs(c.Args().Slice()); err != nil {
		_ = cli.ShowAppHelp(c)
		return err
	}
	cfg := opera_archiver.DefaultConfig
	app.ApplyCommonFlags(c, &cfg)
	cfg.MetSearchAPI = c.String("search-api")
	cfg.MetPageBase = c.String("page-base")
	if dir := c.Args().Get(1); dir != "" {
		cfg.OutputDir = dir
	}

	ctx := c.Context
	logger := opera_archiver.Logger(ctx).Sugar()
	app.LogConfig(logger, cfg)

	pipeline, err := app.NewPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	in := opera_archiver.Input{Query: c.Args().First(), Year: c.String("year")}
	if err := pipeline.Run(ctx, app.ProviderFor(in.Query, met.Name), in, cfg.OutputDir); err != nil {
		return fmt.Errorf("%s: %w", in.Query, err)
	}
	return nil
}
