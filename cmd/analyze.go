package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"svitlo/core/schedule"
)

var showExclusions bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <schedules-file>",
	Short: "Analyze a set of schedules from a YAML or JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&showExclusions, "exclusions", false, "also report windows gained by excluding one participant")
	rootCmd.AddCommand(analyzeCmd)
}

// userDef is one participant in an offline analysis file.
type userDef struct {
	UserID  int64                `yaml:"user_id" json:"user_id"`
	Name    string               `yaml:"name" json:"name"`
	Group   string               `yaml:"group" json:"group"`
	Outages []schedule.HourRange `yaml:"outages" json:"outages"`
}

func loadUsers(path string) ([]schedule.UserSchedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var defs []userDef
	switch filepath.Ext(path) {
	case ".json":
		err = json.Unmarshal(data, &defs)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &defs)
	default:
		return nil, fmt.Errorf("unsupported schedules format: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	users := make([]schedule.UserSchedule, 0, len(defs))
	for _, d := range defs {
		users = append(users, schedule.UserSchedule{
			UserID:  d.UserID,
			Name:    d.Name,
			Group:   d.Group,
			Outages: schedule.OutageIntervals(d.Outages),
		})
	}
	return users, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	users, err := loadUsers(args[0])
	if err != nil {
		return err
	}
	common := schedule.Intersect(users)
	fmt.Fprintln(cmd.OutOrStdout(), schedule.FormatReport("Common power", common))

	if !showExclusions {
		return nil
	}
	out := cmd.OutOrStdout()
	for _, e := range schedule.Exclusions(users) {
		fmt.Fprintf(out, "without %s: from %s to %s (%d min)\n",
			e.Name,
			schedule.MinutesToCompact(e.Start),
			schedule.MinutesToCompact(e.End),
			e.Duration)
	}
	return nil
}
