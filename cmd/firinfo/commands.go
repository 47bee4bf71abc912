package main

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/cwbudde/algo-antialias/dsp/filter/fir"
	"github.com/cwbudde/algo-antialias/measure/response"
)

// loadTaps returns the table in path, or the built-in anti-aliasing table
// when path is empty.
func loadTaps(path string) (*fir.Taps, error) {
	if path == "" {
		log.Debug("using built-in anti-aliasing table")
		return fir.AntiAliasTaps(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open taps: %w", err)
	}
	defer f.Close()

	t, err := fir.ParseTaps(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.WithFields(log.Fields{"file": path, "taps": t.Len()}).Debug("loaded coefficient table")
	return t, nil
}

func analysisFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{
			Name:  "rate",
			Usage: "Sample rate of the filter in Hz",
			Value: fir.AntiAliasSourceRate,
		},
		&cli.Float64Flag{
			Name:  "target",
			Usage: "Target sample rate after downsampling in Hz",
			Value: fir.AntiAliasTargetRate,
		},
		&cli.Float64Flag{
			Name:  "cutoff",
			Usage: "Design cutoff frequency in Hz",
			Value: fir.AntiAliasCutoff,
		},
		&cli.IntFlag{
			Name:  "points",
			Usage: "Frequency grid size (rounded up to a power of two)",
			Value: 16384,
		},
	}
}

func analysisConfig(cCtx *cli.Context) response.Config {
	return response.Config{
		SampleRate: cCtx.Float64("rate"),
		TargetRate: cCtx.Float64("target"),
		CutoffHz:   cCtx.Float64("cutoff"),
		Points:     cCtx.Int("points"),
	}
}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:    "report",
		Aliases: []string{"r"},
		Usage:   "Print the filter's figures of merit",
		Flags:   analysisFlags(),
		Action: func(cCtx *cli.Context) error {
			t, err := loadTaps(cCtx.String("taps"))
			if err != nil {
				return err
			}
			return writeReport(cCtx.App.Writer, t, analysisConfig(cCtx))
		},
	}
}

func writeReport(w io.Writer, t *fir.Taps, cfg response.Config) error {
	rep, err := response.Analyze(t, cfg)
	if err != nil {
		return err
	}
	return response.WriteSummary(w, rep)
}

func coeffsCommand() *cli.Command {
	return &cli.Command{
		Name:    "coeffs",
		Aliases: []string{"c"},
		Usage:   "Print the coefficient table as source code",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: c, go or plain",
				Value:   "c",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Array identifier",
			},
		},
		Action: func(cCtx *cli.Context) error {
			format, err := fir.ParseTableFormat(cCtx.String("format"))
			if err != nil {
				return err
			}
			t, err := loadTaps(cCtx.String("taps"))
			if err != nil {
				return err
			}
			return fir.WriteTaps(cCtx.App.Writer, t, format, cCtx.String("name"))
		},
	}
}

func plotCommand() *cli.Command {
	return &cli.Command{
		Name:    "plot",
		Aliases: []string{"p"},
		Usage:   "Render response charts to an HTML file",
		Flags: append(analysisFlags(), &cli.StringFlag{
			Name:     "out",
			Aliases:  []string{"o"},
			Usage:    "HTML file to write",
			Required: true,
		}),
		Action: func(cCtx *cli.Context) error {
			t, err := loadTaps(cCtx.String("taps"))
			if err != nil {
				return err
			}

			f, err := os.Create(cCtx.String("out"))
			if err != nil {
				return fmt.Errorf("create plot: %w", err)
			}
			if err := writePlot(f, t, analysisConfig(cCtx)); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close plot: %w", err)
			}
			log.WithField("file", cCtx.String("out")).Info("wrote response charts")
			return nil
		},
	}
}

func writePlot(w io.Writer, t *fir.Taps, cfg response.Config) error {
	r, err := response.Compute(t, cfg)
	if err != nil {
		return err
	}
	return response.RenderHTML(w, t, r, r.Report(t, cfg))
}
