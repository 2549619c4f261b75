package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset [subject]",
	Short: "Clear a subject's data, or everything with --all",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		if !all && len(args) == 0 {
			return fmt.Errorf("name a subject to reset, or pass --all")
		}

		s, err := openSession(cmd, false)
		if err != nil {
			return err
		}
		defer s.close()

		if all {
			s.engine.ClearAll()
			fmt.Println("Cleared all subjects.")
		} else {
			subject := strings.Join(args, " ")
			s.engine.ClearSubject(subject)
			fmt.Printf("Cleared %s.\n", subject)
		}

		return s.save(cmd.Context())
	},
}

func init() {
	resetCmd.Flags().Bool("all", false, "Clear every subject")
}
