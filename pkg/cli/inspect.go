package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/platinummonkey/visionrecords/pkg/ledger"
	"github.com/platinummonkey/visionrecords/pkg/records"
	"github.com/platinummonkey/visionrecords/pkg/versioning"
)

// RecordReport is the inspect command output
type RecordReport struct {
	Record        *records.VisionRecord      `json:"record"`
	LatestVersion uint32                     `json:"latest_version"`
	History       []versioning.RecordVersion `json:"history"`
}

// PatientReport is the patient command output
type PatientReport struct {
	Patient ledger.Address `json:"patient"`
	Records []uint64       `json:"records"`
}

func newInspectCommand(env *Env) *Command {
	cmd := &Command{
		Name:        "inspect",
		Description: "Print a record with its version history",
		Flags:       flag.NewFlagSet("inspect", flag.ContinueOnError),
	}

	recordID := cmd.Flags.Uint64("record", 0, "Record id")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		if *recordID == 0 {
			return fmt.Errorf("record is required")
		}

		return withService(env, func(ctx context.Context, svc *records.Service) error {
			record, err := svc.GetRecord(ctx, *recordID)
			if err != nil {
				return err
			}
			history, err := svc.GetRecordHistory(ctx, *recordID)
			if err != nil {
				return err
			}
			latest, err := svc.GetLatestRecordVersion(ctx, *recordID)
			if err != nil {
				return err
			}
			return printJSON(env, RecordReport{Record: record, LatestVersion: latest, History: history})
		})
	}

	return cmd
}

func newPatientCommand(env *Env) *Command {
	cmd := &Command{
		Name:        "patient",
		Description: "List a patient's record ids",
		Flags:       flag.NewFlagSet("patient", flag.ContinueOnError),
	}

	address := cmd.Flags.String("address", "", "Patient address")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		if *address == "" {
			return fmt.Errorf("address is required")
		}

		return withService(env, func(ctx context.Context, svc *records.Service) error {
			ids, err := svc.GetPatientRecords(ctx, ledger.Address(*address))
			if err != nil {
				return err
			}
			return printJSON(env, PatientReport{Patient: ledger.Address(*address), Records: ids})
		})
	}

	return cmd
}

// withService opens the configured backend, runs fn against a records service
// on it and closes the backend
func withService(env *Env, fn func(ctx context.Context, svc *records.Service) error) error {
	ctx := context.Background()

	backend, err := env.open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer backend.Close()

	return fn(ctx, records.NewService(ledger.New(backend)))
}

func printJSON(env *Env, v interface{}) error {
	enc := json.NewEncoder(env.out())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
