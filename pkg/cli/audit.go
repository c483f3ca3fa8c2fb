package cli

import (
	"flag"
	"fmt"

	"github.com/platinummonkey/visionrecords/pkg/audit"
)

func newAuditCommand(env *Env) *Command {
	cmd := &Command{
		Name:        "audit",
		Description: "Print events from the current audit log file",
		Flags:       flag.NewFlagSet("audit", flag.ContinueOnError),
	}

	count := cmd.Flags.Int("count", 20, "Number of events to print, oldest first; 0 prints all")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		if *count < 0 {
			return fmt.Errorf("count must not be negative")
		}

		// never rotate the server's file from the CLI
		cfg := env.Config.Audit.File
		cfg.Rotate = false

		logger, err := audit.NewFileLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Close()

		events, err := logger.ReadLogs(*count)
		if err != nil {
			return err
		}
		if events == nil {
			events = []*audit.AuditEvent{}
		}
		return printJSON(env, events)
	}

	return cmd
}
