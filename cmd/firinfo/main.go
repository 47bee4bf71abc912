// Command firinfo inspects and applies the anti-aliasing FIR filter used
// for 44.1 kHz to 16 kHz downsampling.
//
// Usage:
//
//	firinfo [--verbose] [--taps FILE] <command> [flags]
//
// Examples:
//
//	firinfo report
//	firinfo report --points 65536
//	firinfo coeffs --format go --name antiAlias
//	firinfo plot --out response.html
//	firinfo downsample --in speech.wav --out speech16k.raw
//
// The converted output of downsample is raw 16-bit little-endian PCM:
//
//	aplay -t raw -f S16_LE -c1 -r16000 speech16k.raw
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:                 "firinfo",
		Usage:                "Inspect and apply the anti-aliasing FIR filter",
		EnableBashCompletion: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
			&cli.StringFlag{
				Name:    "taps",
				Aliases: []string{"t"},
				Usage:   "Coefficient table to load instead of the built-in 64-tap filter",
				EnvVars: []string{"FIRINFO_TAPS"},
			},
		},
		Before: func(cCtx *cli.Context) error {
			if cCtx.Bool("verbose") {
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			reportCommand(),
			coeffsCommand(),
			plotCommand(),
			downsampleCommand(),
		},
	}
}
