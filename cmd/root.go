package cmd

import (
	"github.com/abhisek/studywise/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "studywise",
	Short: "Adaptive AI tutor for any subject",
	Long:  "StudyWise — adaptive tutoring engine that builds lesson plans, generates practice content, and tracks per-subject mastery.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides STUDYWISE_DB env var)")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(answerCmd)
	rootCmd.AddCommand(advanceCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then STUDYWISE_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
