package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/studywise/internal/cache"
	"github.com/abhisek/studywise/internal/llm"
	"github.com/abhisek/studywise/internal/planner"
	"github.com/abhisek/studywise/internal/progress"
	"github.com/abhisek/studywise/internal/ratelimit"
	"github.com/abhisek/studywise/internal/store"
)

// keepSnapshots is how many state snapshots survive pruning.
const keepSnapshots = 10

// session wires the store, the restored progress engine, and (when the
// command generates content) the planner. Commands persist engine state
// back as a snapshot via save.
type session struct {
	store   *store.Store
	engine  *progress.Engine
	planner *planner.Planner
}

// openSession opens the store and restores the engine from the latest
// snapshot. With needLLM, it also builds the provider chain and planner;
// state-only commands (answer, advance, stats, reset) skip that so they
// work without an API key.
func openSession(cmd *cobra.Command, needLLM bool) (*session, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ctx := cmd.Context()
	snap, err := st.SnapshotRepo().Latest(ctx)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	var data *store.SnapshotData
	if snap != nil {
		data = &snap.Data
	}
	engine := progress.NewEngine(data)

	s := &session{store: st, engine: engine}
	if needLLM {
		provider, err := llm.NewProviderFromEnv(ctx, st.EventRepo())
		if err != nil {
			st.Close()
			return nil, err
		}
		s.planner = planner.New(provider, cache.New(), ratelimit.New(ratelimit.DefaultMinDelay), engine, planner.DefaultConfig())
	}
	return s, nil
}

// save persists the engine state as a new snapshot and prunes old ones.
func (s *session) save(ctx context.Context) error {
	seq, err := s.store.CurrentSequence(ctx)
	if err != nil {
		return err
	}
	err = s.store.SnapshotRepo().Save(ctx, &store.Snapshot{
		Sequence:  seq,
		Timestamp: time.Now().UTC(),
		Data:      *s.engine.SnapshotData(),
	})
	if err != nil {
		return err
	}
	return s.store.SnapshotRepo().Prune(ctx, keepSnapshots)
}

func (s *session) close() {
	s.store.Close()
}
