package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/vfat/pkg/fatfs"
)

const (
	lsColumns     = 5
	lsColumnWidth = 32
	createdLayout = "2006-01-02 15:04:05"
)

// Shell dispatches command lines against a mounted file system.
type Shell struct {
	fs       *fatfs.FS
	io       *IO
	log      *slog.Logger
	loc      *time.Location
	commands []*Command
	byName   map[string]*Command
}

// NewShell builds the command table for fsys. Created times in "ls -a" are
// shown in loc.
func NewShell(fsys *fatfs.FS, o *IO, logger *slog.Logger, loc *time.Location) *Shell {
	s := &Shell{
		fs:     fsys,
		io:     o,
		log:    logger,
		loc:    loc,
		byName: map[string]*Command{},
	}

	s.commands = []*Command{
		s.lsCmd(),
		s.cdCmd(),
		s.mkdirCmd(),
		s.rmdirCmd(),
		s.createCmd(),
		s.rmCmd(),
		s.formatCmd(),
		s.dfCmd(),
		s.helpCmd(),
		s.exitCmd(),
	}

	for _, c := range s.commands {
		s.byName[c.Name()] = c
		for _, alias := range c.Aliases {
			s.byName[alias] = c
		}
	}

	return s
}

// Prompt returns "<cwd># ".
func (s *Shell) Prompt() string {
	return s.fs.Cwd() + "# "
}

// Exec runs one command line. Failures are reported on stderr as
// "error: <cmd>: <err>". Returns true when the line asked the shell to stop.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	name := fields[0]

	cmd, ok := s.byName[name]
	if !ok {
		s.io.ErrPrintf("error: %s: unknown command (type 'help' for commands)\n", name)

		return false
	}

	err := cmd.Run(ctx, s.io, fields[1:])
	if errors.Is(err, errExit) {
		return true
	}

	if err != nil {
		s.io.ErrPrintf("error: %s: %v\n", name, err)
		s.log.Debug("command failed", "command", cmd.Name(), "line", line, "error", err)
	}

	return false
}

// Complete returns completions for a partially typed line: command names
// for the first word, entries of the current directory afterwards.
func (s *Shell) Complete(line string) []string {
	cut := strings.LastIndex(line, " ")
	if cut < 0 {
		var out []string

		for name := range s.byName {
			if strings.HasPrefix(name, line) {
				out = append(out, name)
			}
		}

		slices.Sort(out)

		return out
	}

	prefix, word := line[:cut+1], line[cut+1:]

	entries, err := s.fs.ReadDir(s.fs.Stack().Top())
	if err != nil {
		return nil
	}

	var out []string

	for _, e := range entries {
		name := e.FullName()
		if strings.HasPrefix(name, word) {
			out = append(out, prefix+name)
		}
	}

	return out
}

func (s *Shell) lsCmd() *Command {
	fset := flag.NewFlagSet("ls", flag.ContinueOnError)
	all := fset.BoolP("all", "a", false, "Show size and creation time")

	return &Command{
		Flags:   fset,
		Usage:   "ls [-a]",
		Aliases: []string{"my_ls"},
		Short:   "List the current directory",
		Long:    "List the current directory, five names per row. With -a, one entry per line with size (\"/\" for directories) and creation time.",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			entries, err := s.fs.List()
			if err != nil {
				return err
			}

			if *all {
				s.printLong(o, entries)
			} else {
				printShort(o, entries)
			}

			return nil
		},
	}
}

func printShort(o *IO, entries []fatfs.Entry) {
	for row := range slices.Chunk(entries, lsColumns) {
		var b strings.Builder
		for _, e := range row {
			fmt.Fprintf(&b, "%-*s", lsColumnWidth, e.FullName())
		}

		o.Println(strings.TrimRight(b.String(), " "))
	}
}

func (s *Shell) printLong(o *IO, entries []fatfs.Entry) {
	row := func(name, size, created string) {
		o.Println(strings.TrimRight(fmt.Sprintf("%-*s%-*s%s", lsColumnWidth, name, lsColumnWidth, size, created), " "))
	}

	row("name", "size", "created_time")

	for _, e := range entries {
		size := "/"
		if !e.IsDir() {
			size = strconv.Itoa(int(e.Len))
		}

		row(e.FullName(), size, e.Created.In(s.loc).Format(createdLayout))
	}
}

// pathCmd builds a command taking exactly one path argument.
func pathCmd(usage, alias, short, long string, run func(o *IO, path string) error) *Command {
	name, _, _ := strings.Cut(usage, " ")

	return &Command{
		Flags:   flag.NewFlagSet(name, flag.ContinueOnError),
		Usage:   usage,
		Aliases: []string{alias},
		Args:    1,
		Short:   short,
		Long:    long,
		Exec: func(_ context.Context, o *IO, args []string) error {
			return run(o, args[0])
		},
	}
}

func (s *Shell) cdCmd() *Command {
	return pathCmd("cd <path>", "my_cd", "Change the current directory",
		"Change the current directory. Paths may be absolute or relative and may use \".\" and \"..\". On failure the current directory is unchanged.",
		func(_ *IO, path string) error {
			return s.fs.Chdir(path)
		})
}

func (s *Shell) mkdirCmd() *Command {
	return pathCmd("mkdir <path>", "my_mkdir", "Create a directory",
		"Create a directory, along with any missing parent directories.",
		func(o *IO, path string) error {
			if err := s.fs.Mkdir(path); err != nil {
				return err
			}

			o.Println("created directory " + path)

			return nil
		})
}

func (s *Shell) rmdirCmd() *Command {
	return pathCmd("rmdir <path>", "my_rmdir", "Remove a directory and its contents",
		"Remove a directory and everything below it. The root, the current directory and its ancestors cannot be removed.",
		func(o *IO, path string) error {
			if err := s.fs.Rmdir(path); err != nil {
				return err
			}

			o.Println("removed directory " + path)

			return nil
		})
}

func (s *Shell) createCmd() *Command {
	return pathCmd("create <path>", "my_create", "Create an empty file",
		"Create an empty file, along with any missing parent directories. Names may carry an extension (\"notes.txt\").",
		func(o *IO, path string) error {
			if _, err := s.fs.Create(path); err != nil {
				return err
			}

			o.Println("created file " + path)

			return nil
		})
}

func (s *Shell) rmCmd() *Command {
	return pathCmd("rm <path>", "my_rm", "Remove a file", "",
		func(o *IO, path string) error {
			if err := s.fs.Remove(path); err != nil {
				return err
			}

			o.Println("removed file " + path)

			return nil
		})
}

func (s *Shell) formatCmd() *Command {
	return &Command{
		Flags:   flag.NewFlagSet("format", flag.ContinueOnError),
		Usage:   "format",
		Aliases: []string{"my_format"},
		Short:   "Erase everything and start with an empty root",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			if err := s.fs.Format(); err != nil {
				return err
			}

			o.Println("formatted")

			return nil
		},
	}
}

func (s *Shell) dfCmd() *Command {
	return &Command{
		Flags: flag.NewFlagSet("df", flag.ContinueOnError),
		Usage: "df",
		Short: "Show block usage",
		Long:  "Show block size and block counts. Reserved blocks hold the superblock and allocation table.",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			u := s.fs.Stat()
			o.Println("block_size=" + strconv.Itoa(u.BlockSize))
			o.Println("blocks=" + strconv.Itoa(u.Blocks))
			o.Println("reserved=" + strconv.Itoa(u.Reserved))
			o.Println("used=" + strconv.Itoa(u.Used))
			o.Println("free=" + strconv.Itoa(u.Free))

			return nil
		},
	}
}

func (s *Shell) helpCmd() *Command {
	return &Command{
		Flags:   flag.NewFlagSet("help", flag.ContinueOnError),
		Usage:   "help",
		Aliases: []string{"?"},
		Short:   "Show this help",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			o.Println("Commands:")

			for _, c := range s.commands {
				o.Println(c.HelpLine())
			}

			o.Println()
			o.Println("Run '<command> --help' for details.")

			return nil
		},
	}
}

func (s *Shell) exitCmd() *Command {
	return &Command{
		Flags:   flag.NewFlagSet("exit", flag.ContinueOnError),
		Usage:   "exit",
		Aliases: []string{"quit", "my_exitsys"},
		Short:   "Save the image and leave",
		Exec: func(context.Context, *IO, []string) error {
			return errExit
		},
	}
}
