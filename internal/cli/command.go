package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
)

var (
	// errExit stops the shell after the current line.
	errExit = errors.New("exit")

	errUsage = errors.New("usage")
)

// Command defines a shell command with unified help generation.
type Command struct {
	// Flags defines command-specific flags. Values are reset to their
	// defaults before every invocation.
	Flags *flag.FlagSet

	// Usage is the freeform usage string shown in help.
	// Includes the command name and arguments/flags.
	// Examples: "cd <path>", "ls [-a]"
	Usage string

	// Aliases are alternative names that dispatch to this command.
	Aliases []string

	// Args is the exact number of positional arguments.
	Args int

	// Short is a one-line description for the help listing.
	Short string

	// Long is the full description shown in command help.
	// If empty, Short is used instead.
	Long string

	// Exec runs the command after flags are parsed.
	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name returns the command name (first word of Usage).
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")
	return name
}

// HelpLine returns the short help line for the help listing.
func (c *Command) HelpLine() string {
	line := fmt.Sprintf("  %-16s %s", c.Usage, c.Short)
	if len(c.Aliases) > 0 {
		line += " (" + strings.Join(c.Aliases, ", ") + ")"
	}

	return line
}

// PrintHelp prints the full help output for "<cmd> --help".
func (c *Command) PrintHelp(o *IO) {
	o.Println("Usage:", c.Usage)
	o.Println()

	desc := c.Long
	if desc == "" {
		desc = c.Short
	}

	o.Println(desc)

	if len(c.Aliases) > 0 {
		o.Println()
		o.Println("Aliases:", strings.Join(c.Aliases, ", "))
	}

	if c.Flags.HasFlags() {
		o.Println()
		o.Println("Flags:")

		var buf strings.Builder
		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()
		o.Printf("%s", buf.String())
	}
}

// Run parses flags and executes the command. "--help" prints help and
// succeeds. Errors are returned to the shell, which reports them and keeps
// reading.
func (c *Command) Run(ctx context.Context, o *IO, args []string) error {
	c.Flags.SetOutput(&strings.Builder{}) // discard pflag output
	c.Flags.VisitAll(func(f *flag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})

	err := c.Flags.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.PrintHelp(o)
			return nil
		}

		return fmt.Errorf("%w: %w (usage: %s)", errUsage, err, c.Usage)
	}

	rest := c.Flags.Args()
	if len(rest) != c.Args {
		return fmt.Errorf("%w: want %d argument(s), got %d (usage: %s)", errUsage, c.Args, len(rest), c.Usage)
	}

	return c.Exec(ctx, o, rest)
}
