package planner

import (
	"fmt"
	"strings"

	"github.com/abhisek/studywise/internal/domain"
)

const planSystemPrompt = `You are an experienced curriculum designer. You build focused, well-sequenced lesson plans that take a motivated self-learner from their current level to working competence in a subject.`

const contentSystemPrompt = `You are a patient, encouraging tutor. You create one piece of practice or explanatory content at a time, pitched exactly at the learner's current concept and difficulty level. Use plain text, no markdown.`

const tutorSystemPrompt = `You are a warm, concise tutor chatting with a self-learner. Keep responses to 2-4 sentences, encouraging but substantive. Use plain text, no markdown.`

func buildStructureAnalysisMessage(subject string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Subject: %s\n", subject))
	b.WriteString(`
Instructions:
Analyze the scope of this subject for a self-paced learner:
1. Recommend how many lessons a solid introductory plan needs (6-15). Broad or deep subjects need more lessons; narrow ones fewer.
2. Judge the overall complexity for a newcomer: beginner, intermediate, or advanced.
3. Name 2-5 focus areas the plan should emphasize.`)

	return b.String()
}

func buildPlanUserMessage(subject string, analysis structureAnalysis) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Subject: %s\n", subject))
	b.WriteString(fmt.Sprintf("Lesson count: %d\n", analysis.LessonCount))
	b.WriteString(fmt.Sprintf("Overall complexity: %s\n", analysis.Complexity))
	if len(analysis.FocusAreas) > 0 {
		b.WriteString(fmt.Sprintf("Focus areas: %s\n", strings.Join(analysis.FocusAreas, ", ")))
	}

	b.WriteString(fmt.Sprintf(`
Instructions:
Create a learning plan with exactly %d lessons:
1. Order lessons from foundations to advanced material. Each lesson builds on the previous ones.
2. Give each lesson a stable id (lesson-1, lesson-2, ...), a short title, and a 1-2 sentence description.
3. Break each lesson into 2-4 concepts. Each concept gets an id, a name, a one-sentence description, a difficulty (beginner/intermediate/advanced), and an estimated number of practice items (1-5).
4. Difficulty should ramp across the plan; early lessons lean beginner, later ones harder.`, analysis.LessonCount))

	return b.String()
}

func buildCriteriaMessage(subject string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Subject: %s\n", subject))
	b.WriteString(`
Instructions:
Propose advancement criteria for this subject — the bar a learner must clear on each lesson before moving to the next:
1. minCorrectAnswers: how many correct answers are needed (3-6). Precision subjects (math, science, programming) warrant more.
2. minTotalAttempts: minimum attempts before advancement is considered (4-8).
3. minAccuracy: required accuracy as a fraction (0.6-0.85).
4. adaptiveFactors: difficultyAdjustment (0.8-1.2, scales the correct-answer bar), engagementWeight (0.05-0.2, how strongly engagement shifts the accuracy bar), retentionFactor (0.8-1.2).
Stay inside the given ranges.`)

	return b.String()
}

func buildContentUserMessage(subject string, lesson *domain.Lesson, concept domain.ConceptInfo, contentType domain.ContentType) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Subject: %s\n", subject))
	b.WriteString(fmt.Sprintf("Lesson: %s\n", lesson.Title))
	if lesson.Description != "" {
		b.WriteString(fmt.Sprintf("Lesson description: %s\n", lesson.Description))
	}
	b.WriteString(fmt.Sprintf("Current concept: %s\n", concept.Name))
	if concept.Description != "" {
		b.WriteString(fmt.Sprintf("Concept description: %s\n", concept.Description))
	}
	b.WriteString(fmt.Sprintf("Difficulty: %s\n", concept.Difficulty))

	b.WriteString("\nInstructions:\n")
	switch contentType {
	case domain.ContentMultipleChoice:
		b.WriteString(`Create one multiple-choice question on the current concept:
1. The question must be answerable from the concept alone.
2. Provide 4 options with exactly one correct. Distractors should reflect plausible mistakes.
3. Explain briefly why the correct option is correct.`)
	case domain.ContentConceptCard:
		b.WriteString(`Create a concept card for the current concept:
1. A short title and a 2-4 sentence plain-language summary.
2. 2-4 key points a learner should remember.
3. One concrete example.`)
	case domain.ContentStepSolver:
		b.WriteString(`Create a worked problem for the current concept:
1. State a problem matched to the difficulty level.
2. Solve it in 2-6 numbered steps, each a single short action.
3. State the final answer.`)
	case domain.ContentFillBlank:
		b.WriteString(`Create a fill-in-the-blank exercise for the current concept:
1. Write one sentence with the key term replaced by ___.
2. Give the answer and a short hint that doesn't reveal it.`)
	case domain.ContentExplainer:
		b.WriteString(`Write an explainer for the current concept:
1. A clear explanation in 4-8 sentences, building from what a learner at this level knows.
2. One everyday analogy that makes the idea stick.`)
	}

	return b.String()
}

func buildTutorMessage(subject, action, data, contextNote string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Subject: %s\n", subject))
	b.WriteString(fmt.Sprintf("Event: %s\n", action))
	if data != "" {
		b.WriteString(fmt.Sprintf("Details: %s\n", data))
	}
	if contextNote != "" {
		b.WriteString(fmt.Sprintf("Context: %s\n", contextNote))
	}

	b.WriteString(`
Instructions:
Respond to this event as the learner's tutor. Acknowledge what happened, then point at the next useful step. 2-4 sentences.`)

	return b.String()
}

func buildWelcomeMessage(subject string, isNew bool) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Subject: %s\n", subject))
	if isNew {
		b.WriteString("Learner status: starting this subject for the first time\n")
		b.WriteString(`
Instructions:
Welcome the learner to the subject. One or two sentences of genuine enthusiasm about what's ahead, then invite them to begin the first lesson.`)
	} else {
		b.WriteString("Learner status: returning to continue this subject\n")
		b.WriteString(`
Instructions:
Welcome the learner back. Briefly encourage them to pick up where they left off. Keep it to two sentences.`)
	}

	return b.String()
}
