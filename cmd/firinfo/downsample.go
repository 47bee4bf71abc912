package main

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/mjibson/go-dsp/wav"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/cwbudde/algo-antialias/dsp/filter/fir"
	"github.com/cwbudde/algo-antialias/dsp/resample"
)

const defaultBlockSize = 4096

type downsampleOptions struct {
	channel    int
	targetRate float64
	blockSize  int
	taps       *fir.Taps
}

type downsampleStats struct {
	sourceRate float64
	channels   int
	inFrames   int
	outFrames  int
}

func downsampleCommand() *cli.Command {
	return &cli.Command{
		Name:    "downsample",
		Aliases: []string{"d"},
		Usage:   "Filter and downsample one channel of a WAV file to raw 16-bit PCM",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "in",
				Aliases:  []string{"i"},
				Usage:    "Input WAV file",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "out",
				Aliases:  []string{"o"},
				Usage:    "Output file (S16_LE, mono)",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "channel",
				Usage: "Zero-based input channel to convert",
			},
			&cli.Float64Flag{
				Name:  "target",
				Usage: "Output sample rate in Hz",
				Value: resample.DefaultTargetRate,
			},
			&cli.IntFlag{
				Name:  "block",
				Usage: "Frames per processing block",
				Value: defaultBlockSize,
			},
		},
		Action: func(cCtx *cli.Context) error {
			t, err := loadTaps(cCtx.String("taps"))
			if err != nil {
				return err
			}

			in, err := os.Open(cCtx.String("in"))
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer in.Close()

			out, err := os.Create(cCtx.String("out"))
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}

			stats, err := downsampleWAV(out, bufio.NewReader(in), downsampleOptions{
				channel:    cCtx.Int("channel"),
				targetRate: cCtx.Float64("target"),
				blockSize:  cCtx.Int("block"),
				taps:       t,
			})
			if cerr := out.Close(); err == nil && cerr != nil {
				err = fmt.Errorf("close output: %w", cerr)
			}
			if err != nil {
				return err
			}

			log.WithFields(log.Fields{
				"source_rate": stats.sourceRate,
				"target_rate": cCtx.Float64("target"),
				"channels":    stats.channels,
				"in_frames":   stats.inFrames,
				"out_frames":  stats.outFrames,
			}).Info("downsampled")
			return nil
		},
	}
}

// downsampleWAV reads a WAV stream from r, runs the selected channel through
// a Downsampler and writes the result to w as S16_LE samples.
func downsampleWAV(w io.Writer, r io.Reader, opts downsampleOptions) (downsampleStats, error) {
	var stats downsampleStats

	src, err := wav.New(r)
	if err != nil {
		return stats, fmt.Errorf("read wav header: %w", err)
	}

	channels := int(src.NumChannels)
	stats.sourceRate = float64(src.SampleRate)
	stats.channels = channels
	if channels < 1 {
		return stats, fmt.Errorf("wav has %d channels", channels)
	}
	if opts.channel < 0 || opts.channel >= channels {
		return stats, fmt.Errorf("channel %d out of range [0, %d)", opts.channel, channels)
	}
	if opts.blockSize <= 0 {
		opts.blockSize = defaultBlockSize
	}

	dsOpts := []resample.Option{resample.WithTargetRate(opts.targetRate)}
	if opts.taps != nil {
		dsOpts = append(dsOpts, resample.WithTaps(opts.taps))
	}
	ds, err := resample.NewDownsampler[float32](stats.sourceRate, dsOpts...)
	if err != nil {
		return stats, err
	}

	log.WithFields(log.Fields{
		"rate":     src.SampleRate,
		"channels": channels,
		"bits":     src.BitsPerSample,
		"samples":  src.Samples,
	}).Debug("opened wav")

	bw := bufio.NewWriter(w)
	mono := make([]float32, opts.blockSize)
	out := make([]float32, ds.MaxOutputSize(opts.blockSize))
	pcm := make([]byte, 2*len(out))

	// Samples is rounded down to a multiple of eight for 16-bit data, so it
	// only bounds the bulk reads. The tail is read frame by frame until EOF.
	remaining := src.Samples
	for {
		n := channels
		if remaining >= channels {
			n = min(remaining, opts.blockSize*channels)
			n -= n % channels
		}

		raw, err := src.ReadSamples(n)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("read wav data: %w", err)
		}
		remaining = max(remaining-n, 0)

		frame, err := pcmToFloat32(raw)
		if err != nil {
			return stats, err
		}

		frames := len(frame) / channels
		for i := range frames {
			mono[i] = frame[i*channels+opts.channel]
		}
		stats.inFrames += frames

		m, err := ds.Process(out, mono[:frames])
		if err != nil {
			return stats, err
		}
		stats.outFrames += m

		for i, v := range out[:m] {
			binary.LittleEndian.PutUint16(pcm[2*i:], uint16(toPCM16(v)))
		}
		if _, err := bw.Write(pcm[:2*m]); err != nil {
			return stats, fmt.Errorf("write pcm: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return stats, fmt.Errorf("write pcm: %w", err)
	}
	return stats, nil
}

// pcmToFloat32 converts samples returned by wav.ReadSamples to signed
// floats in [-1, 1).
func pcmToFloat32(raw any) ([]float32, error) {
	switch v := raw.(type) {
	case []float32:
		return v, nil
	case []int16:
		out := make([]float32, len(v))
		for i, x := range v {
			out[i] = float32(x) / pcmScale
		}
		return out, nil
	case []uint8:
		out := make([]float32, len(v))
		for i, x := range v {
			out[i] = (float32(x) - 128) / 128
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported wav sample type %T", raw)
	}
}

// pcmScale maps 16-bit PCM to [-1, 1) and back.
const pcmScale = 32768

// toPCM16 converts a sample in [-1, 1) to a clipped 16-bit value.
func toPCM16(v float32) int16 {
	s := math.Round(float64(v) * pcmScale)
	switch {
	case math.IsNaN(s):
		return 0
	case s > math.MaxInt16:
		return math.MaxInt16
	case s < math.MinInt16:
		return math.MinInt16
	}
	return int16(s)
}
