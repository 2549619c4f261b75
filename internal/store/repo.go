package store

import (
	"context"
	"time"

	"github.com/abhisek/studywise/internal/domain"
)

// SnapshotVersion is the current snapshot schema version. Bump when the
// shape of SnapshotData changes so restore code can migrate old captures.
const SnapshotVersion = 1

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// SubjectStateData captures everything the tutoring engine tracks for one
// subject: the lesson plan, mastery progress, the criteria in force, and
// the per-lesson content log.
type SubjectStateData struct {
	Plan     *domain.LessonPlan                `json:"plan,omitempty"`
	Progress domain.LearningProgress           `json:"progress"`
	Criteria domain.Criteria                   `json:"criteria"`
	Records  map[string][]domain.ContentRecord `json:"records,omitempty"`
}

// SnapshotData captures the full learner state at a point in time.
type SnapshotData struct {
	Version  int                          `json:"version"`
	Subjects map[string]*SubjectStateData `json:"subjects,omitempty"`
}

// Snapshot represents a point-in-time capture of learner state.
type Snapshot struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Data      SnapshotData
}

// SnapshotRepo manages learner state snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot, or nil if none exist.
	Latest(ctx context.Context) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots.
	Prune(ctx context.Context, keep int) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is the read model for a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStat aggregates token usage for a single purpose label.
type LLMUsageStat struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates token usage for a single model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// AnswerEventData captures a single learner answer to generated content.
type AnswerEventData struct {
	Subject     string
	LessonID    string
	ContentType string
	Correct     bool
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// AppendAnswer records a learner answer event.
	AppendAnswer(ctx context.Context, data AnswerEventData) error

	// QueryLLMEvents returns LLM events matching opts, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]*LLMEvent, error)

	// GetLLMEvent returns a single LLM event by ID, or nil if not found.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates token usage per purpose label.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStat, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)

	// SubjectAccuracy returns the all-time answer accuracy for a subject,
	// or 0 when no answers exist.
	SubjectAccuracy(ctx context.Context, subject string) (float64, error)
}
