package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/danmuck/pals/internal/logging"
	"github.com/danmuck/pals/internal/observability"
	"github.com/danmuck/pals/internal/protocol/pals"
	"github.com/danmuck/pals/internal/server"
	"github.com/rs/zerolog/log"
)

const usage = `usage: palsctl <command> [flags]

commands:
  encode   -o out [-variant v] [-allow-empty] file...
  decode   -dir outdir [-variant v] [-strict] input
  inspect  [-variant v] input
  serve    [-config f] [-addr a]`

var errUsage = errors.New(usage)

func main() {
	logging.ConfigureRuntime()
	observability.InitLogger("palsctl")

	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "palsctl: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "encode":
		return runEncode(args[1:], stdout)
	case "decode":
		return runDecode(args[1:], stdout)
	case "inspect":
		return runInspect(args[1:], stdout)
	case "serve":
		return runServe(args[1:])
	case "help", "-h", "--help":
		fmt.Fprintln(stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

// codecFlags are shared by every command. Flags left unset keep the value
// from the config file or the defaults.
type codecFlags struct {
	config      string
	variant     string
	permitEmpty bool
	strict      bool
}

func bindCodecFlags(fs *flag.FlagSet) *codecFlags {
	cf := &codecFlags{}
	fs.StringVar(&cf.config, "config", "", "path to palsctl TOML config")
	fs.StringVar(&cf.variant, "variant", "", "length field variant: narrow or wide")
	fs.BoolVar(&cf.permitEmpty, "allow-empty", true, "allow zero-length segments")
	fs.BoolVar(&cf.strict, "strict", false, "reject trailing bytes after the last segment")
	return cf
}

func (cf *codecFlags) resolve(fs *flag.FlagSet) (server.Config, error) {
	cfg, err := loadConfig(cf.config)
	if err != nil {
		return server.Config{}, err
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["variant"] {
		v, err := pals.ParseVariant(cf.variant)
		if err != nil {
			return server.Config{}, err
		}
		cfg.Variant = v
	}
	if set["allow-empty"] {
		cfg.Options.PermitEmptySegments = cf.permitEmpty
	}
	if set["strict"] {
		cfg.Options.StrictTrailing = cf.strict
	}
	return cfg, nil
}

func runEncode(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	cf := bindCodecFlags(fs)
	out := fs.String("o", "", "output file (- for stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return fmt.Errorf("encode: -o is required")
	}
	cfg, err := cf.resolve(fs)
	if err != nil {
		return err
	}

	segments := make([][]byte, 0, fs.NArg())
	for _, path := range fs.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("encode: read segment: %w", err)
		}
		segments = append(segments, data)
	}

	codec := pals.New(cfg.Variant, cfg.Options)
	buf, err := codec.Encode(segments)
	observability.RecordCodecOp(cfg.Variant, "encode", len(buf), err)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	if *out == "-" {
		_, err = stdout.Write(buf)
		return err
	}
	if err := os.WriteFile(*out, buf, 0o644); err != nil {
		return fmt.Errorf("encode: write output: %w", err)
	}
	log.Info().
		Str("variant", cfg.Variant.String()).
		Int("segments", len(segments)).
		Int("bytes", len(buf)).
		Str("out", *out).
		Msg("encoded")
	return nil
}

func runDecode(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	cf := bindCodecFlags(fs)
	dir := fs.String("dir", "", "directory for decoded segment files")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("decode: exactly one input file required")
	}
	if *dir == "" {
		return fmt.Errorf("decode: -dir is required")
	}
	cfg, err := cf.resolve(fs)
	if err != nil {
		return err
	}

	segments, err := readInput(fs.Arg(0), cfg)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := os.MkdirAll(*dir, 0o755); err != nil {
		return fmt.Errorf("decode: create output dir: %w", err)
	}
	for i, seg := range segments {
		path := filepath.Join(*dir, segmentFileName(i))
		if err := os.WriteFile(path, seg, 0o644); err != nil {
			return fmt.Errorf("decode: write segment %d: %w", i, err)
		}
		fmt.Fprintln(stdout, path)
	}
	log.Info().
		Str("variant", cfg.Variant.String()).
		Int("segments", len(segments)).
		Str("dir", *dir).
		Msg("decoded")
	return nil
}

func runInspect(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	cf := bindCodecFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("inspect: exactly one input file required")
	}
	cfg, err := cf.resolve(fs)
	if err != nil {
		return err
	}

	buf, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}
	codec := pals.New(cfg.Variant, cfg.Options)
	lengths, start, err := codec.Lengths(buf)
	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}

	var payload uint64
	for _, n := range lengths {
		payload += n
	}
	fmt.Fprintf(stdout, "variant=%s segments=%d payload_offset=%d payload_bytes=%d buffer_bytes=%d\n",
		cfg.Variant, len(lengths), start, payload, len(buf))
	for i, n := range lengths {
		fmt.Fprintf(stdout, "segment[%d] len=%d\n", i, n)
	}
	return nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	cf := bindCodecFlags(fs)
	addr := fs.String("addr", "", "listen address override")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := cf.resolve(fs)
	if err != nil {
		return err
	}
	if strings.TrimSpace(*addr) != "" {
		cfg.Addr = strings.TrimSpace(*addr)
	}

	srv, err := server.New(cfg)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

func readInput(path string, cfg server.Config) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := pals.ReadBuffer(f, cfg.MaxBufferBytes)
	if err != nil {
		observability.RecordCodecOp(cfg.Variant, "decode", 0, err)
		return nil, err
	}
	segments, err := pals.New(cfg.Variant, cfg.Options).Decode(buf)
	observability.RecordCodecOp(cfg.Variant, "decode", len(buf), err)
	return segments, err
}

func segmentFileName(i int) string {
	return fmt.Sprintf("segment-%04d.bin", i)
}
