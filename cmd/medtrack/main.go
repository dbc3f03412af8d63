package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"medtrack/internal/app"
	"medtrack/internal/config"
	"medtrack/internal/model"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
// command identifies the CLI command being run (e.g. "AddMedication", "Backup").
func newApp(command string) (*app.App, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewApp(cfg, command)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

func readConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// readPassphrase prompts for a passphrase without echoing it.
func readPassphrase(prompt string) (string, error) {
	fmt.Print(prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(pass), nil
}

// parseRecordItem parses a --med flag value of the form
// "name:dosage[:actual[:memo]]".
func parseRecordItem(spec string) (model.RecordItem, error) {
	parts := strings.SplitN(spec, ":", 4)
	if len(parts) < 2 || parts[0] == "" {
		return model.RecordItem{}, fmt.Errorf("invalid medication spec %q: expected name:dosage[:actual[:memo]]", spec)
	}

	item := model.RecordItem{Name: parts[0], Dosage: parts[1]}
	if len(parts) > 2 {
		item.ActualDosage = parts[2]
	}
	if len(parts) > 3 {
		item.Memo = parts[3]
	}
	return item, nil
}

func toTimings(values []string) []model.Timing {
	timings := make([]model.Timing, len(values))
	for i, v := range values {
		timings[i] = model.Timing(v)
	}
	return timings
}

func timingsString(timings []model.Timing) string {
	parts := make([]string, len(timings))
	for i, t := range timings {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}

var rootCmd = &cobra.Command{
	Use:   "medtrack",
	Short: "Personal medication tracker",
}

// config command

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("getting defaults: %w", err)
		}

		profileID := uuid.New().String()
		cfg := config.NewConfig(profileID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("initializing config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Profile ID: %s\n", profileID)
		fmt.Printf("Base Dir:   %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("getting defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Profile ID: %s\n", cfg.ProfileID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Database:   %s (%s)\n", cfg.Database.Type, cfg.Database.DataDir)
		return nil
	},
}

// keys command

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the snapshot encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		pass, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if pass != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := app.SetupKeys(cfg, pass); err != nil {
			return fmt.Errorf("setting up keys: %w", err)
		}

		fmt.Println("Encryption keys generated.")
		return nil
	},
}

// med command

var medCmd = &cobra.Command{
	Use:   "med",
	Short: "Manage the medication roster",
}

var medAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a medication to the roster",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		dosage, _ := cmd.Flags().GetString("dosage")
		memo, _ := cmd.Flags().GetString("memo")
		timings, _ := cmd.Flags().GetStringArray("timing")

		a, err := newApp("AddMedication")
		if err != nil {
			return err
		}
		defer a.Close()

		m, err := a.Service().AddMedication(model.Medication{
			Name:    name,
			Dosage:  dosage,
			Memo:    memo,
			Timings: toTimings(timings),
		})
		if err != nil {
			return fmt.Errorf("adding medication: %w", err)
		}

		fmt.Printf("Added %s (%s)\n", m.Name, m.ID)
		return nil
	},
}

var medListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the medication roster",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListMedications")
		if err != nil {
			return err
		}
		defer a.Close()

		meds, err := a.Service().Medications()
		if err != nil {
			return err
		}

		if len(meds) == 0 {
			fmt.Println("No medications registered.")
			return nil
		}

		for _, m := range meds {
			line := fmt.Sprintf("%s  %-20s  %s", m.ID, m.Name, m.Dosage)
			if len(m.Timings) > 0 {
				line += "  [" + timingsString(m.Timings) + "]"
			}
			if m.Memo != "" {
				line += "  " + m.Memo
			}
			fmt.Println(line)
		}
		return nil
	},
}

var medUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Update a medication",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("UpdateMedication")
		if err != nil {
			return err
		}
		defer a.Close()

		m, err := a.Service().Medication(args[0])
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("name") {
			m.Name, _ = cmd.Flags().GetString("name")
		}
		if cmd.Flags().Changed("dosage") {
			m.Dosage, _ = cmd.Flags().GetString("dosage")
		}
		if cmd.Flags().Changed("memo") {
			m.Memo, _ = cmd.Flags().GetString("memo")
		}
		if cmd.Flags().Changed("timing") {
			values, _ := cmd.Flags().GetStringArray("timing")
			m.Timings = toTimings(values)
		}

		if err := a.Service().UpdateMedication(*m); err != nil {
			return fmt.Errorf("updating medication: %w", err)
		}

		fmt.Printf("Updated %s\n", m.Name)
		return nil
	},
}

var medRemoveCmd = &cobra.Command{
	Use:   "remove ID",
	Short: "Remove a medication from the roster",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RemoveMedication")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().RemoveMedication(args[0]); err != nil {
			return err
		}

		fmt.Println("Removed.")
		return nil
	},
}

// record command

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Manage intake records",
}

var recordAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log an intake event",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")
		timeOfDay, _ := cmd.Flags().GetString("time")
		timing, _ := cmd.Flags().GetString("timing")
		memo, _ := cmd.Flags().GetString("memo")
		medSpecs, _ := cmd.Flags().GetStringArray("med")

		now := time.Now()
		if date == "" {
			date = now.Format("2006-01-02")
		}
		if timeOfDay == "" {
			timeOfDay = now.Format("15:04")
		}

		items := make([]model.RecordItem, 0, len(medSpecs))
		for _, spec := range medSpecs {
			item, err := parseRecordItem(spec)
			if err != nil {
				return err
			}
			items = append(items, item)
		}

		a, err := newApp("AddRecord")
		if err != nil {
			return err
		}
		defer a.Close()

		r, err := a.Service().AddRecord(model.MedicationRecord{
			Date:       date,
			Time:       timeOfDay,
			Timing:     model.Timing(timing),
			Items:      items,
			RecordMemo: memo,
		})
		if err != nil {
			return fmt.Errorf("adding record: %w", err)
		}

		fmt.Printf("Recorded %d medication(s) at %s %s (%s)\n", len(r.Items), r.Date, r.Time, r.ID)
		return nil
	},
}

var recordListCmd = &cobra.Command{
	Use:   "list",
	Short: "List intake records",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListRecords")
		if err != nil {
			return err
		}
		defer a.Close()

		recs, err := a.Service().Records()
		if err != nil {
			return err
		}

		if len(recs) == 0 {
			fmt.Println("No records.")
			return nil
		}

		for _, r := range recs {
			printRecord(r)
		}
		return nil
	},
}

var recordUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Update an intake record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("UpdateRecord")
		if err != nil {
			return err
		}
		defer a.Close()

		r, err := a.Service().Record(args[0])
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("date") {
			r.Date, _ = cmd.Flags().GetString("date")
		}
		if cmd.Flags().Changed("time") {
			r.Time, _ = cmd.Flags().GetString("time")
		}
		if cmd.Flags().Changed("timing") {
			v, _ := cmd.Flags().GetString("timing")
			r.Timing = model.Timing(v)
		}
		if cmd.Flags().Changed("memo") {
			r.RecordMemo, _ = cmd.Flags().GetString("memo")
		}
		if cmd.Flags().Changed("med") {
			specs, _ := cmd.Flags().GetStringArray("med")
			items := make([]model.RecordItem, 0, len(specs))
			for _, spec := range specs {
				item, err := parseRecordItem(spec)
				if err != nil {
					return err
				}
				items = append(items, item)
			}
			r.Items = items
		}

		if err := a.Service().UpdateRecord(*r); err != nil {
			return fmt.Errorf("updating record: %w", err)
		}

		fmt.Println("Updated.")
		return nil
	},
}

var recordRemoveCmd = &cobra.Command{
	Use:   "remove ID",
	Short: "Delete an intake record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RemoveRecord")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().RemoveRecord(args[0]); err != nil {
			return err
		}

		fmt.Println("Removed.")
		return nil
	},
}

// history command

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View intake history grouped by day",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")

		now := time.Now()
		if to == "" {
			to = now.Format("2006-01-02")
		}
		if from == "" {
			from = now.AddDate(0, 0, -6).Format("2006-01-02")
		}

		a, err := newApp("History")
		if err != nil {
			return err
		}
		defer a.Close()

		days, err := a.Service().History(from, to)
		if err != nil {
			return err
		}

		if len(days) == 0 {
			fmt.Printf("No records between %s and %s.\n", from, to)
			return nil
		}

		for _, day := range days {
			fmt.Printf("%s\n", day.Date)
			for _, r := range day.Records {
				printRecord(r)
			}
			fmt.Println()
		}
		return nil
	},
}

func printRecord(r *model.MedicationRecord) {
	header := fmt.Sprintf("  %s  %s", r.Time, r.ID)
	if r.Timing != "" {
		header += "  [" + string(r.Timing) + "]"
	}
	if r.RecordMemo != "" {
		header += "  " + r.RecordMemo
	}
	fmt.Println(header)

	for _, item := range r.Items {
		line := fmt.Sprintf("    %s %s", item.Name, item.EffectiveDosage())
		if item.Memo != "" {
			line += "  (" + item.Memo + ")"
		}
		fmt.Println(line)
	}
}

// backup and restore commands

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Store an encrypted snapshot in the configured vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Backup")
		if err != nil {
			return err
		}
		defer a.Close()

		version, err := a.Backup()
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}

		fmt.Printf("Snapshot stored (version %d)\n", version)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Replace the local database with the vault snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		pass, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}

		if err := app.Restore(cfg, pass); err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}

		fmt.Println("Database restored from snapshot.")
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// keys subcommands
	keysCmd.AddCommand(keysInitCmd)

	// med subcommands
	medCmd.AddCommand(medAddCmd)
	medCmd.AddCommand(medListCmd)
	medCmd.AddCommand(medUpdateCmd)
	medCmd.AddCommand(medRemoveCmd)
	for _, c := range []*cobra.Command{medAddCmd, medUpdateCmd} {
		c.Flags().String("name", "", "Medication display name")
		c.Flags().String("dosage", "", "Default dosage, e.g. \"1 tablet\"")
		c.Flags().String("memo", "", "Optional note")
		c.Flags().StringArray("timing", nil, "Timing slot (wake, morning, noon, evening, before_sleep); repeatable")
	}
	medAddCmd.MarkFlagRequired("name")
	medAddCmd.MarkFlagRequired("dosage")

	// record subcommands
	recordCmd.AddCommand(recordAddCmd)
	recordCmd.AddCommand(recordListCmd)
	recordCmd.AddCommand(recordUpdateCmd)
	recordCmd.AddCommand(recordRemoveCmd)
	for _, c := range []*cobra.Command{recordAddCmd, recordUpdateCmd} {
		c.Flags().String("date", "", "Intake date, YYYY-MM-DD (default today)")
		c.Flags().String("time", "", "Intake time, HH:MM (default now)")
		c.Flags().String("timing", "", "Timing slot this intake corresponds to")
		c.Flags().String("memo", "", "Note for the whole event")
		c.Flags().StringArray("med", nil, "Medication taken, name:dosage[:actual[:memo]]; repeatable")
	}

	// history
	historyCmd.Flags().String("from", "", "Start date, YYYY-MM-DD (default 6 days ago)")
	historyCmd.Flags().String("to", "", "End date, YYYY-MM-DD (default today)")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(medCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
}
