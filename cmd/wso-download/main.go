package main

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/urfave/cli/v2"

	"github.com/alanbriolat/opera-archiver"
	"github.com/alanbriolat/opera-archiver/internal/app"
	"github.com/alanbriolat/opera-archiver/provider/wso"
	"github.com/alanbriolat/opera-archiver/util"
)

var (
	errMissingQuery = errors.New("missing <query-or-url> argument")
	yearPattern     = regexp.MustCompile(`^\d{4}$`)
)

func main() {
	d := opera_archiver.DefaultConfig
	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:  "list",
			Usage: "list available events (optionally only those in [year]) instead of downloading",
		},
		&cli.StringFlag{
			Name:    "api-base",
			Value:   d.WSOAPIBase,
			Usage:   "event API base `URL`",
			EnvVars: []string{"WSO_API_BASE"},
		},
		&cli.StringFlag{
			Name:    "page-base",
			Value:   d.WSOPageBase,
			Usage:   "event page `URL` the event ID is appended to",
			EnvVars: []string{"WSO_PAGE_BASE"},
		},
	}
	app.Main(&cli.App{
		Name:      "wso-download",
		Usage:     "download a performance from Wiener Staatsoper",
		ArgsUsage: "--list [year] | <query-or-url> [year] [output-dir]",
		Flags:     append(flags, app.CommonFlags(wso.DefaultGrace)...),
		Action:    run,
	})
}

type invocation struct {
	Query     string
	Year      string
	OutputDir string
}

// parseArgs interprets positional arguments. After a query, the first four-digit argument is the year and the first
// other argument is the output directory; after a URL, the next argument is always the output directory.
func parseArgs(args []string, defaultOutputDir string) (invocation, error) {
	inv := invocation{OutputDir: defaultOutputDir}
	if len(args) == 0 {
		return inv, errMissingQuery
	}
	if err := app.CheckArgs(args); err != nil {
		return inv, err
	}
	inv.Query = args[0]
	rest := args[1:]
	if util.IsURL(inv.Query) {
		if len(rest) > 0 {
			inv.OutputDir = rest[0]
		}
		return inv, nil
	}
	var haveYear, haveDir bool
	for _, a := range rest {
		if yearPattern.MatchString(a) {
			if !haveYear {
				inv.Year, haveYear = a, true
			}
		} else if !haveDir {
			inv.OutputDir, haveDir = a, true
		}
	}
	return inv, nil
}

func run(c *cli.Context) error {
	cfg := opera_archiver.DefaultConfig
	app.ApplyCommonFlags(c, &cfg)
	cfg.WSOAPIBase = c.String("api-base")
	cfg.WSOPageBase = c.String("page-base")

	ctx := c.Context
	logger := opera_archiver.Logger(ctx).Sugar()

	if c.Bool("list") {
		if err := app.CheckArgs(c.Args().Slice()); err != nil {
			return err
		}
		app.LogConfig(logger, cfg)
		events, err := wso.NewConfig(cfg).List(ctx, c.Args().First())
		if err != nil {
			return err
		}
		wso.WriteListing(os.Stdout, events)
		return nil
	}

	inv, err := parseArgs(c.Args().Slice(), cfg.OutputDir)
	if err != nil {
		_ = cli.ShowAppHelp(c)
		return err
	}
	cfg.OutputDir = inv.OutputDir
	app.LogConfig(logger, cfg)

	pipeline, err := app.NewPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	in := opera_archiver.Input{Query: inv.Query, Year: inv.Year}
	if err := pipeline.Run(ctx, app.ProviderFor(in.Query, wso.Name), in, cfg.OutputDir); err != nil {
		return fmt.Errorf("%s: %w", in.Query, err)
	}
	return nil
}
