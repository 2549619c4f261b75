package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studywise/internal/domain"
)

var contentCmd = &cobra.Command{
	Use:   "content <subject>",
	Short: "Generate practice content for a subject's current lesson",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject := strings.Join(args, " ")
		typeFlag, _ := cmd.Flags().GetString("type")
		lessonID, _ := cmd.Flags().GetString("lesson")

		contentType := domain.ContentType(typeFlag)

		s, err := openSession(cmd, true)
		if err != nil {
			return err
		}
		defer s.close()

		ctx := cmd.Context()
		content, err := s.planner.GenerateLessonContent(ctx, subject, lessonID, contentType)
		if err != nil {
			return err
		}

		printContent(content)
		return s.save(ctx)
	},
}

func printContent(content *domain.LessonContent) {
	fmt.Printf("Type: %s\n", content.Type)
	fmt.Println(strings.Repeat("─", 60))

	var pretty map[string]any
	if err := json.Unmarshal(content.Data, &pretty); err != nil {
		fmt.Println(string(content.Data))
		return
	}
	b, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		fmt.Println(string(content.Data))
		return
	}
	fmt.Println(string(b))
}

func init() {
	contentCmd.Flags().StringP("type", "t", string(domain.ContentMultipleChoice),
		"Content type: multiple_choice, concept_card, step_solver, fill_blank, explainer")
	contentCmd.Flags().StringP("lesson", "l", "", "Lesson ID (defaults to the plan's current lesson)")
}
