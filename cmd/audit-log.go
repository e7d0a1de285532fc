package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var auditLogCmd = &cobra.Command{
	Use:   "audit-log <id>",
	Short: "Display the audit trail for a workspace",
	Long: `Display the lifecycle events recorded for a workspace. The trail of a
deleted workspace is kept and can still be shown.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuditLog,
}

var auditLogJSON bool

func init() {
	auditLogCmd.Flags().BoolVar(&auditLogJSON, "json", false, "Output events as JSON lines")
	rootCmd.AddCommand(auditLogCmd)
}

func runAuditLog(cmd *cobra.Command, args []string) error {
	id := args[0]
	svc, err := service()
	if err != nil {
		return err
	}

	events, err := svc.AuditEvents(id)
	if err != nil {
		return fmt.Errorf("failed to read audit log: %w", err)
	}

	if len(events) == 0 {
		logInfo("No events found for workspace %s", id)
		return nil
	}

	w := cmd.OutOrStdout()
	for _, e := range events {
		if auditLogJSON {
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("failed to marshal event: %w", err)
			}
			fmt.Fprintln(w, string(data))
		} else {
			ts := e.Timestamp.Local().Format("2006-01-02 15:04:05")
			if e.Details != "" {
				fmt.Fprintf(w, "[%s] %-8s %s (%s)\n", ts, e.Type, e.Workspace, e.Details)
			} else {
				fmt.Fprintf(w, "[%s] %-8s %s\n", ts, e.Type, e.Workspace)
			}
		}
	}

	return nil
}
