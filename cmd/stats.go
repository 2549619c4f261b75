package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-subject learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, false)
		if err != nil {
			return err
		}
		defer s.close()

		subjects := s.engine.Subjects()
		if len(subjects) == 0 {
			fmt.Println("No subjects yet. Run 'studywise plan <subject>' to start one.")
			return nil
		}

		ctx := cmd.Context()

		fmt.Printf("%-24s  %-12s  %-9s  %-9s  %-9s  %s\n",
			"Subject", "Lesson", "Progress", "Accuracy", "All-time", "Status")
		fmt.Println(strings.Repeat("─", 84))

		for _, subject := range subjects {
			plan, ok := s.engine.Plan(subject)
			if !ok {
				continue
			}
			prog := s.engine.Progress(subject)

			lessonLabel := "-"
			if l := plan.CurrentLesson(); l != nil {
				lessonLabel = fmt.Sprintf("%d/%d", plan.CurrentLessonIndex+1, len(plan.Lessons))
			}

			allTime, err := s.store.EventRepo().SubjectAccuracy(ctx, subject)
			if err != nil {
				return fmt.Errorf("query accuracy: %w", err)
			}

			status := "in progress"
			switch {
			case prog.ReadyForNext:
				status = "ready to advance"
			case prog.NeedsReview:
				status = "needs review"
			}

			fmt.Printf("%-24s  %-12s  %-9s  %-9s  %-9s  %s\n",
				truncate(subject, 24),
				lessonLabel,
				fmt.Sprintf("%d/%d", prog.CorrectAnswers, prog.TotalAttempts),
				fmt.Sprintf("%.0f%%", prog.Accuracy()*100),
				fmt.Sprintf("%.0f%%", allTime*100),
				status,
			)
		}
		return nil
	},
}
