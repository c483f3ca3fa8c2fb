package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/platinummonkey/visionrecords/pkg/config"
	"github.com/platinummonkey/visionrecords/pkg/storage"
)

// Command represents a CLI command
type Command struct {
	Name        string
	Description string
	Run         func(args []string) error
	Subcommands map[string]*Command
	Flags       *flag.FlagSet
}

// OpenFunc opens a storage backend
type OpenFunc func(ctx context.Context, cfg storage.Config) (storage.Backend, error)

// Env is what the commands run against
type Env struct {
	Config *config.Config
	Out    io.Writer
	Open   OpenFunc
}

func (e *Env) out() io.Writer {
	if e.Out == nil {
		return os.Stdout
	}
	return e.Out
}

func (e *Env) open(ctx context.Context) (storage.Backend, error) {
	open := e.Open
	if open == nil {
		open = storage.Open
	}
	return open(ctx, e.Config.Storage)
}

// NewRootCommand creates the root command
func NewRootCommand(env *Env) *Command {
	root := &Command{
		Name:        "vision-cli",
		Description: "Vision records operator CLI",
		Subcommands: make(map[string]*Command),
		Flags:       flag.NewFlagSet("vision-cli", flag.ContinueOnError),
	}

	root.Subcommands["token"] = newTokenCommand(env)
	root.Subcommands["inspect"] = newInspectCommand(env)
	root.Subcommands["patient"] = newPatientCommand(env)
	root.Subcommands["audit"] = newAuditCommand(env)

	return root
}

// Execute runs the subcommand named by args[0]
func (c *Command) Execute(args []string) error {
	if len(args) == 0 {
		return c.usage(os.Stdout)
	}

	if args[0] == "-h" || args[0] == "--help" {
		return c.usage(os.Stdout)
	}

	if subcmd, ok := c.Subcommands[args[0]]; ok {
		return subcmd.Run(args[1:])
	}

	return fmt.Errorf("unknown command: %s", args[0])
}

// usage prints the command usage
func (c *Command) usage(w io.Writer) error {
	names := make([]string, 0, len(c.Subcommands))
	for name := range c.Subcommands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "Usage: %s <command> [args]\n\n", c.Name)
	fmt.Fprintf(w, "Commands:\n")
	for _, name := range names {
		fmt.Fprintf(w, "  %-15s %s\n", name, c.Subcommands[name].Description)
	}
	return nil
}
