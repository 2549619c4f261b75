package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studywise/internal/domain"
)

var planCmd = &cobra.Command{
	Use:   "plan <subject>",
	Short: "Create (or show) the learning plan for a subject",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject := strings.Join(args, " ")

		s, err := openSession(cmd, true)
		if err != nil {
			return err
		}
		defer s.close()

		ctx := cmd.Context()

		_, existed := s.engine.Plan(subject)
		plan, err := s.planner.CreateLearningPlan(ctx, subject)
		if err != nil {
			return err
		}

		fmt.Println(s.planner.GenerateWelcomeMessage(ctx, subject, !existed))
		fmt.Println()
		printPlan(plan)

		return s.save(ctx)
	},
}

func printPlan(plan *domain.LessonPlan) {
	fmt.Printf("Learning plan: %s (%d lessons)\n", plan.Subject, len(plan.Lessons))
	fmt.Println(strings.Repeat("─", 72))
	for i, l := range plan.Lessons {
		marker := " "
		switch {
		case l.Completed:
			marker = "✓"
		case i == plan.CurrentLessonIndex:
			marker = "▶"
		}
		fmt.Printf("%s %-10s  %s\n", marker, l.ID, l.Title)
		if l.Description != "" {
			fmt.Printf("             %s\n", l.Description)
		}
		for _, c := range l.Concepts {
			fmt.Printf("             - %s (%s)\n", c.Name, c.Difficulty)
		}
	}
}
