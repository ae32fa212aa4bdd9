package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/vfat/internal/config"
	"github.com/calvinalkan/vfat/internal/telemetry"
	"github.com/calvinalkan/vfat/pkg/fatfs"
	"github.com/calvinalkan/vfat/pkg/fs"
	"github.com/calvinalkan/vfat/pkg/vdisk"
)

// Exit codes.
const (
	exitOK          = 0
	exitError       = 1
	exitInterrupted = 130
)

const shutdownTimeout = 5 * time.Second

// Run is the main entry point. Returns exit code.
//
// Commands are read from in until EOF or "exit"; the image is saved only
// then. A signal on sigCh, or Ctrl-C at an interactive prompt, abandons the
// session without saving.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	o := NewIO(out, errOut)

	globalFlags := flag.NewFlagSet("vfat", flag.ContinueOnError)
	globalFlags.SetOutput(&strings.Builder{})
	flagHelp := globalFlags.BoolP("help", "h", false, "Show help")
	flagCwd := globalFlags.StringP("cwd", "C", "", "Run as if started in `dir`")
	flagImage := globalFlags.StringP("image", "i", "", "Use disk image `file`")
	flagConfig := globalFlags.StringP("config", "c", "", "Use specified config `file`")
	flagVerbose := globalFlags.BoolP("verbose", "v", false, "Log debug diagnostics to stderr")
	flagPrintConfig := globalFlags.Bool("print-config", false, "Show resolved configuration and exit")
	flagSchema := globalFlags.Bool("config-schema", false, "Print the config file JSON schema and exit")

	if err := globalFlags.Parse(args[1:]); err != nil {
		o.ErrPrintln("error:", err)
		printUsage(o.ErrPrintf, globalFlags)

		return exitError
	}

	if *flagHelp {
		printUsage(o.Printf, globalFlags)

		return exitOK
	}

	if rest := globalFlags.Args(); len(rest) > 0 {
		o.ErrPrintln("error: unexpected argument:", rest[0])
		printUsage(o.ErrPrintf, globalFlags)

		return exitError
	}

	if *flagSchema {
		if err := printConfigSchema(o); err != nil {
			o.ErrPrintln("error:", err)

			return exitError
		}

		return exitOK
	}

	cfg, err := config.Load(config.LoadInput{
		WorkDir:       *flagCwd,
		ConfigPath:    *flagConfig,
		ImageOverride: *flagImage,
		Verbose:       *flagVerbose,
		Env:           env,
	})
	if err != nil {
		o.ErrPrintln("error:", err)

		return exitError
	}

	if *flagPrintConfig {
		printConfig(o, cfg)

		return exitOK
	}

	level, _ := cfg.SlogLevel() // validated by Load
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mp, shutdown, err := telemetry.Setup(ctx, cfg.OTLPEndpoint)
	if err != nil {
		o.ErrPrintln("error:", err)

		return exitError
	}

	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer scancel()

		if err := shutdown(sctx); err != nil {
			logger.Warn("flushing metrics", "error", err)
		}
	}()

	fsys := fs.NewReal()

	img, err := vdisk.Open(fsys, fs.NewLocker(fsys), cfg.ImageAbs, vdisk.DefaultGeometry())
	if err != nil {
		o.ErrPrintln("error:", err)

		return exitError
	}

	opts := cfg.FsOptions()
	opts.Logger = logger
	opts.MeterProvider = mp

	vfs, err := fatfs.Mount(img, opts)
	if err != nil {
		o.ErrPrintln("error:", errors.Join(fmt.Errorf("mounting %s: %w", img.Path(), err), img.Close()))

		return exitError
	}

	logger.Debug("image opened", "path", img.Path(), "existed", img.Existed())

	sh := NewShell(vfs, o, logger, time.Local)
	reader := newLineReader(in, out, fsys, cfg.HistoryFileAbs, sh.Complete, logger)

	loopErr := loop(ctx, sh, reader, sigCh)

	if err := reader.Close(); err != nil {
		logger.Warn("closing input", "error", err)
	}

	if loopErr != nil {
		if err := img.Close(); err != nil {
			logger.Warn("releasing image lock", "error", err)
		}

		if errors.Is(loopErr, errInterrupted) {
			o.ErrPrintln("interrupted, changes discarded")

			return exitInterrupted
		}

		o.ErrPrintln("error:", loopErr)

		return exitError
	}

	if err := save(vfs, img); err != nil {
		o.ErrPrintln("error:", err)

		return exitError
	}

	logger.Debug("image saved", "path", img.Path())

	return exitOK
}

type readResult struct {
	line string
	err  error
}

// loop feeds lines to sh until EOF, "exit", an interrupt or a read error.
// A clean stop returns nil.
func loop(ctx context.Context, sh *Shell, r lineReader, sigCh <-chan os.Signal) error {
	lines := make(chan readResult, 1)

	for {
		go func(prompt string) {
			line, err := r.ReadLine(prompt)
			lines <- readResult{line: line, err: err}
		}(sh.Prompt())

		select {
		case <-sigCh:
			return errInterrupted
		case res := <-lines:
			if errors.Is(res.err, io.EOF) {
				return nil
			}

			if res.err != nil {
				return res.err
			}

			if sh.Exec(ctx, res.line) {
				return nil
			}
		}
	}
}

// save flushes metadata, writes the image and releases its lock.
func save(vfs *fatfs.FS, img *vdisk.Image) error {
	err := vfs.Sync()
	if err == nil {
		err = img.Save()
	}

	if err != nil {
		err = fmt.Errorf("saving %s: %w", img.Path(), err)
	}

	return errors.Join(err, img.Close())
}

func printUsage(printf func(format string, a ...any), flags *flag.FlagSet) {
	printf("Usage: vfat [flags]\n\n")
	printf("Interactive shell over a simulated FAT file system stored in a disk image.\n")
	printf("Commands are read from stdin; type 'help' at the prompt for the list.\n\n")
	printf("Flags:\n%s", flags.FlagUsages())
}
