package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studywise/internal/domain"
	"github.com/abhisek/studywise/internal/store"
)

var answerCmd = &cobra.Command{
	Use:   "answer <subject>",
	Short: "Record an answer outcome and show updated progress",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject := strings.Join(args, " ")
		correct, _ := cmd.Flags().GetBool("correct")
		wrong, _ := cmd.Flags().GetBool("wrong")
		lessonID, _ := cmd.Flags().GetString("lesson")
		contentType, _ := cmd.Flags().GetString("type")

		if correct == wrong {
			return fmt.Errorf("pass exactly one of --correct or --wrong")
		}

		s, err := openSession(cmd, false)
		if err != nil {
			return err
		}
		defer s.close()

		ctx := cmd.Context()

		plan, ok := s.engine.Plan(subject)
		if !ok {
			return fmt.Errorf("no learning plan for %q — run 'studywise plan' first", subject)
		}
		if lessonID == "" {
			if l := plan.CurrentLesson(); l != nil {
				lessonID = l.ID
			}
		}

		prog := s.engine.UpdateProgress(subject, correct, lessonID)

		err = s.store.EventRepo().AppendAnswer(ctx, store.AnswerEventData{
			Subject:     subject,
			LessonID:    lessonID,
			ContentType: contentType,
			Correct:     correct,
		})
		if err != nil {
			return fmt.Errorf("record answer: %w", err)
		}

		printProgress(subject, lessonID, prog)
		return s.save(ctx)
	},
}

func printProgress(subject, lessonID string, prog domain.LearningProgress) {
	fmt.Printf("%s / %s: %d correct of %d attempts (%.0f%%)\n",
		subject, lessonID, prog.CorrectAnswers, prog.TotalAttempts, prog.Accuracy()*100)
	switch {
	case prog.ReadyForNext:
		fmt.Println("Ready to advance — run 'studywise advance' when you are.")
	case prog.NeedsReview:
		fmt.Println("This lesson needs some review before moving on.")
	default:
		fmt.Println("Keep going.")
	}
}

func init() {
	answerCmd.Flags().Bool("correct", false, "The answer was correct")
	answerCmd.Flags().Bool("wrong", false, "The answer was wrong")
	answerCmd.Flags().StringP("lesson", "l", "", "Lesson ID (defaults to the plan's current lesson)")
	answerCmd.Flags().StringP("type", "t", "", "Content type the answer was for")
}
