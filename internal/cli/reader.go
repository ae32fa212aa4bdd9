package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/calvinalkan/vfat/pkg/fs"
)

const historyPerm = 0o600

// errInterrupted is returned by a lineReader when the user pressed Ctrl-C at
// the prompt.
var errInterrupted = errors.New("interrupted")

// lineReader yields command lines. ReadLine returns io.EOF at end of input.
type lineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// newLineReader picks liner for an interactive terminal and a plain line
// scanner otherwise.
func newLineReader(in io.Reader, out io.Writer, fsys fs.FS, historyFile string, complete liner.Completer, logger *slog.Logger) lineReader {
	if isTerminal(in) && isTerminal(out) {
		return newLinerReader(fsys, historyFile, complete, logger)
	}

	return newPlainReader(in)
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}

// plainReader reads newline-separated commands without echoing a prompt, so
// piped scripts produce only command output.
type plainReader struct {
	scanner *bufio.Scanner
}

func newPlainReader(in io.Reader) *plainReader {
	if in == nil {
		in = bytes.NewReader(nil)
	}

	return &plainReader{scanner: bufio.NewScanner(in)}
}

func (r *plainReader) ReadLine(string) (string, error) {
	if r.scanner.Scan() {
		return r.scanner.Text(), nil
	}

	if err := r.scanner.Err(); err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}

	return "", io.EOF
}

func (r *plainReader) Close() error { return nil }

// linerReader provides line editing, history and tab completion on a
// terminal.
type linerReader struct {
	state       *liner.State
	fsys        fs.FS
	historyFile string
	log         *slog.Logger
}

func newLinerReader(fsys fs.FS, historyFile string, complete liner.Completer, logger *slog.Logger) *linerReader {
	r := &linerReader{
		state:       liner.NewLiner(),
		fsys:        fsys,
		historyFile: historyFile,
		log:         logger,
	}

	r.state.SetCtrlCAborts(true)
	r.state.SetCompleter(complete)

	if historyFile != "" {
		data, err := fsys.ReadFile(historyFile)
		switch {
		case err == nil:
			if _, err := r.state.ReadHistory(bytes.NewReader(data)); err != nil {
				logger.Warn("reading history", "path", historyFile, "error", err)
			}
		case !errors.Is(err, os.ErrNotExist):
			logger.Warn("reading history", "path", historyFile, "error", err)
		}
	}

	return r
}

func (r *linerReader) ReadLine(prompt string) (string, error) {
	line, err := r.state.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", errInterrupted
		}

		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}

		return "", fmt.Errorf("reading input: %w", err)
	}

	if line != "" {
		r.state.AppendHistory(line)
	}

	return line, nil
}

// Close saves history and restores the terminal.
func (r *linerReader) Close() error {
	var saveErr error

	if r.historyFile != "" {
		var buf bytes.Buffer
		if _, err := r.state.WriteHistory(&buf); err != nil {
			saveErr = fmt.Errorf("writing history: %w", err)
		} else if err := r.fsys.WriteFileAtomic(r.historyFile, buf.Bytes(), historyPerm); err != nil {
			saveErr = fmt.Errorf("writing history: %w", err)
		}
	}

	return errors.Join(saveErr, r.state.Close())
}
