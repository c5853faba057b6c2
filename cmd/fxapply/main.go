// Command fxapply runs an effect chain over an audio file offline.
//
// Usage:
//
//	fxapply [flags] input.wav
//
// Examples:
//
//	fxapply -list
//	fxapply -chain '{"Reverb": {"room_size": 0.8}}' -o wet.wav dry.wav
//	fxapply -chain @chain.json -bits 24 -o out.wav in.mp3
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/dscruggs/lyre-studio/dsp/buffer"
	"github.com/dscruggs/lyre-studio/dsp/effectchain"
	"github.com/dscruggs/lyre-studio/internal/audio"
	"github.com/dscruggs/lyre-studio/internal/logger"
)

func main() {
	effectsFile := flag.String("effects", "config/effects.yaml", "effect registry YAML file")
	chain := flag.String("chain", "{}", "effect chain as a JSON object, or @file to read it from a file")
	output := flag.String("o", "out.wav", "output WAV file")
	bits := flag.Int("bits", audio.DefaultBitDepth, "output bit depth (8, 16, 24 or 32)")
	list := flag.Bool("list", false, "list registered effects and exit")
	verbose := flag.Bool("v", false, "log skipped effects")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: fxapply [flags] input\n\n")
		fmt.Fprintf(os.Stderr, "Applies an effect chain to a WAV or MP3 file and writes a WAV file.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	defs, err := effectchain.LoadDefinitionsFile(*effectsFile)
	if err != nil {
		fail(err)
	}

	if *list {
		printList(defs)
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}

	log, err := logger.New(logger.Config{Level: level, Format: "console"})
	if err != nil {
		fail(err)
	}
	defer func() { _ = log.Sync() }()

	raw, err := readChain(*chain)
	if err != nil {
		fail(err)
	}

	cfg, err := effectchain.ParseConfig(raw)
	if err != nil {
		fail(err)
	}

	in, err := decodeFile(flag.Arg(0))
	if err != nil {
		fail(err)
	}

	app := effectchain.NewApplicator(effectchain.NewBuilder(defs, effectchain.WithLogger(log)))

	out, report, err := app.Apply(in, cfg)
	if err != nil {
		fail(err)
	}

	for _, s := range report.Skipped {
		log.Warn("skipped", zap.String("effect", s.Name), zap.String("reason", string(s.Reason)))
	}

	if err := encodeFile(*output, out, *bits); err != nil {
		fail(err)
	}

	fmt.Printf("%s: %d frames at %g Hz, applied [%s]\n",
		*output, out.Len(), out.SampleRate(), strings.Join(report.Applied, " "))
}

func readChain(arg string) ([]byte, error) {
	if name, ok := strings.CutPrefix(arg, "@"); ok {
		return os.ReadFile(name)
	}

	return []byte(arg), nil
}

func decodeFile(path string) (*buffer.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return audio.Decode(f)
}

func encodeFile(path string, b *buffer.Buffer, bits int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := audio.EncodeWAV(f, b, bits); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

func printList(defs *effectchain.Definitions) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Effect\tClass\tParameters\n")
	_, _ = fmt.Fprintf(tw, "------\t-----\t----------\n")

	for _, def := range defs.Ordered() {
		params := make([]string, 0, len(def.Params))
		for _, p := range def.Params {
			params = append(params, p.Name+"="+formatRange(p))
		}

		class := def.Class
		if _, ok := effectchain.ParseKind(class); !ok {
			class += " (unsupported)"
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", def.Name, class, strings.Join(params, " "))
	}

	if err := tw.Flush(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

func formatRange(p effectchain.ParamSpec) string {
	s := strconv.FormatFloat(p.Default, 'g', -1, 64)
	if p.Min == nil && p.Max == nil {
		return s
	}

	lo, hi := "", ""
	if p.Min != nil {
		lo = strconv.FormatFloat(*p.Min, 'g', -1, 64)
	}

	if p.Max != nil {
		hi = strconv.FormatFloat(*p.Max, 'g', -1, 64)
	}

	return fmt.Sprintf("%s[%s,%s]", s, lo, hi)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "fxapply: %v\n", err)
	os.Exit(1)
}
