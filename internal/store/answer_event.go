package store

import (
	"context"
	"fmt"

	"github.com/abhisek/studywise/ent/answerevent"
)

func (r *eventRepo) AppendAnswer(ctx context.Context, data AnswerEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.client.AnswerEvent.Create().
		SetSequence(seqNum).
		SetSubject(data.Subject).
		SetLessonID(data.LessonID).
		SetContentType(data.ContentType).
		SetCorrect(data.Correct).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) SubjectAccuracy(ctx context.Context, subject string) (float64, error) {
	events, err := r.client.AnswerEvent.Query().
		Where(answerevent.Subject(subject)).
		All(ctx)
	if err != nil {
		return 0, fmt.Errorf("query subject accuracy: %w", err)
	}
	if len(events) == 0 {
		return 0, nil
	}

	correct := 0
	for _, e := range events {
		if e.Correct {
			correct++
		}
	}
	return float64(correct) / float64(len(events)), nil
}
