package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var advanceCmd = &cobra.Command{
	Use:   "advance <subject>",
	Short: "Advance a subject to its next lesson",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject := strings.Join(args, " ")

		s, err := openSession(cmd, false)
		if err != nil {
			return err
		}
		defer s.close()

		if _, ok := s.engine.Plan(subject); !ok {
			return fmt.Errorf("no learning plan for %q — run 'studywise plan' first", subject)
		}

		prog := s.engine.Progress(subject)
		if !prog.ReadyForNext {
			fmt.Println("Heads up: the advancement criteria aren't met yet. Advancing anyway.")
		}

		if !s.engine.AdvanceToNextLesson(subject) {
			fmt.Printf("Already at the last lesson of %s — nothing to advance to.\n", subject)
			return nil
		}

		plan, _ := s.engine.Plan(subject)
		current := plan.CurrentLesson()
		fmt.Printf("Advanced. Now on %s: %s\n", current.ID, current.Title)
		return s.save(cmd.Context())
	},
}
