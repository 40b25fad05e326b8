package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/kstrohbeck/maestro/internal/album"
	"github.com/kstrohbeck/maestro/internal/config"
	"github.com/kstrohbeck/maestro/internal/cover"
	"github.com/kstrohbeck/maestro/internal/export"
	"github.com/kstrohbeck/maestro/internal/generate"
	"github.com/kstrohbeck/maestro/internal/log"
	"github.com/kstrohbeck/maestro/internal/match"
	"github.com/kstrohbeck/maestro/internal/rename"
	"github.com/kstrohbeck/maestro/internal/report"
	"github.com/kstrohbeck/maestro/internal/retag"
	"github.com/kstrohbeck/maestro/internal/scan"
	"github.com/kstrohbeck/maestro/internal/version"
)

func main() {
	app := &cli.Command{
		Name:    "maestro",
		Version: version.Version,
		Usage:   "Reconcile a folder of MP3 files with its album manifest",
		Suggest: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "folder",
				Aliases: []string{"f"},
				Usage:   "Album folder (defaults to default_folder from config, then cwd)",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Config file path",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log level",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Override the configured log format (console or json)",
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"n"},
				Usage:   "Report what would change without touching any file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "generate",
				Usage:  "Generate an album manifest from the files' existing tags",
				Action: runGenerate,
			},
			{
				Name:   "rename",
				Usage:  "Rename matched files to their canonical filenames",
				Action: runRename,
			},
			{
				Name:   "update",
				Usage:  "Rewrite the tags of matched files from the manifest",
				Action: runUpdate,
			},
			{
				Name:   "validate",
				Usage:  "Report tag differences without modifying any file",
				Action: runValidate,
			},
			{
				Name:   "show",
				Usage:  "Print the normalized album manifest",
				Action: runShow,
			},
			{
				Name:   "clear",
				Usage:  "Strip the tag container from matched files",
				Action: runClear,
			},
			{
				Name:      "export",
				Usage:     "Copy the album into an export tree",
				ArgsUsage: "[output]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "root",
						Usage: "Export root; the album goes in <root>/<artist>/<title>",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"F"},
						Value:   "full",
						Usage:   "Export format: full (tags and disc folders) or vw (flat, ASCII tags)",
					},
				},
				Action: runExport,
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		var code exitCodeError
		if errors.As(err, &code) {
			os.Exit(int(code))
		}
		logger := log.Default()
		logger.Error().Err(err).Msg("maestro exited with error")
		os.Exit(2)
	}
}

type exitCodeError int

func (e exitCodeError) Error() string {
	return "error with exit code: " + strconv.Itoa(int(e))
}

// env is the shared setup every command starts from.
type env struct {
	cfg    *config.Config
	folder string
	logger zerolog.Logger
	dryRun bool
}

func setup(cmd *cli.Command) (*env, error) {
	var cfg *config.Config
	var err error
	if path := cmd.String("config"); path != "" {
		cfg, err = config.LoadFrom(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if format := cmd.String("log-format"); format != "" {
		cfg.Log.Format = format
	}
	logger, err := log.FromConfig(cfg.Log)
	if err != nil {
		return nil, err
	}

	folder := cmd.String("folder")
	if folder == "" {
		folder = cfg.DefaultFolder
	}
	if folder == "" {
		folder, err = os.Getwd()
		if err != nil {
			return nil, err
		}
	}
	if _, err := os.Stat(folder); err != nil {
		return nil, fmt.Errorf("album folder: %w", err)
	}

	return &env{
		cfg:    cfg,
		folder: folder,
		logger: logger,
		dryRun: cmd.Bool("dry-run"),
	}, nil
}

// loadMatched loads the manifest, scans the folder and matches the two.
func (e *env) loadMatched() (*album.Album, match.Result, error) {
	a, err := album.Load(e.folder)
	if err != nil {
		return nil, match.Result{}, err
	}
	entries, err := scan.Folder(e.folder, e.logger)
	if err != nil {
		return nil, match.Result{}, err
	}
	res := match.Album(a, entries)
	e.warnUnmatched(res)
	return a, res, nil
}

func (e *env) warnUnmatched(res match.Result) {
	for _, t := range res.UnmatchedTracks {
		e.logger.Warn().
			Int("disc", t.DiscNumber).
			Int("track", t.TrackNumber).
			Str("title", t.Track.Title.Value()).
			Msg("no file for track")
	}
	for _, f := range res.UnmatchedFiles {
		e.logger.Warn().Str("file", f.Rel).Msg("file matches no track")
	}
}

func finish(sum *report.Summary) error {
	sum.Render(os.Stdout)
	if code := sum.ExitCode(); code != 0 {
		return exitCodeError(code)
	}
	return nil
}

func runGenerate(_ context.Context, cmd *cli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	entries, err := scan.Folder(e.folder, e.logger)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		e.logger.Warn().Str("folder", e.folder).Msg("no music files, writing an empty manifest")
	}

	a := generate.Album(entries)
	if e.dryRun {
		return album.Write(os.Stdout, a)
	}
	if err := album.Save(e.folder, a); err != nil {
		return err
	}
	e.logger.Info().
		Str("manifest", album.ManifestPath(e.folder)).
		Int("tracks", a.NumTracks()).
		Msg("manifest generated")
	return nil
}

func runRename(_ context.Context, cmd *cli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	_, res, err := e.loadMatched()
	if err != nil {
		return err
	}

	sum := report.New("rename")
	ops := rename.Plan(res, sum)
	if e.dryRun {
		for _, op := range ops {
			sum.AddOK(op.From, fmt.Sprintf("would rename to %s", op.To))
		}
		return finish(sum)
	}
	rename.Apply(e.folder, ops, sum, e.logger)
	return finish(sum)
}

func runUpdate(_ context.Context, cmd *cli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	a, res, err := e.loadMatched()
	if err != nil {
		return err
	}

	img, err := cover.ForAlbum(e.folder, a)
	if err != nil {
		return err
	}

	sum := report.New("update")
	retag.Update(res, img, sum, e.logger, e.dryRun)
	return finish(sum)
}

func runValidate(_ context.Context, cmd *cli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	a, res, err := e.loadMatched()
	if err != nil {
		return err
	}

	img, err := cover.ForAlbum(e.folder, a)
	if err != nil {
		return err
	}

	issues := retag.Validate(res, img)
	for _, issue := range issues {
		fmt.Println(issue)
	}
	if len(issues) > 0 || len(res.UnmatchedTracks) > 0 {
		return exitCodeError(1)
	}
	return nil
}

func runShow(_ context.Context, cmd *cli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	a, err := album.Load(e.folder)
	if err != nil {
		return err
	}
	return album.Write(os.Stdout, a)
}

func runClear(_ context.Context, cmd *cli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	_, res, err := e.loadMatched()
	if err != nil {
		return err
	}

	matched := make([]scan.FileEntry, 0, len(res.Pairs))
	for _, p := range res.Pairs {
		matched = append(matched, p.File)
	}

	sum := report.New("clear")
	retag.Clear(matched, sum, e.logger, e.dryRun)
	return finish(sum)
}

func runExport(_ context.Context, cmd *cli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	format, err := export.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	a, res, err := e.loadMatched()
	if err != nil {
		return err
	}

	dest := cmd.Args().First()
	if dest == "" {
		root := cmd.String("root")
		if root == "" {
			root = e.cfg.ExportRoot
		}
		if root == "" {
			return errors.New("either an output path or --root (or export_root in config) is required")
		}
		dest = export.DestRoot(root, a)
	}

	sum := report.New("export")
	if err := export.Album(e.folder, dest, a, res, format, sum, e.logger, e.dryRun); err != nil {
		return err
	}
	return finish(sum)
}
