package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one canned reply for the MockProvider. Err, when set,
// is returned instead of a Response.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider serves canned responses in FIFO order and records every
// request. Planner tests enqueue replies in call order — structure
// analysis, then plan, then criteria — and inspect Calls to assert on
// prompts and token budgets. An exhausted queue answers with
// ErrProviderUnavailable, which is how failure paths are staged.
type MockProvider struct {
	mu     sync.Mutex
	queue  []MockResponse
	served int
	Calls  []Request
}

// NewMockProvider creates a MockProvider preloaded with responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{queue: responses}
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if m.served >= len(m.queue) {
		return nil, &ErrProviderUnavailable{}
	}

	next := m.queue[m.served]
	m.served++

	if next.Err != nil {
		return nil, next.Err
	}
	return &Response{
		Content:    next.Content,
		Usage:      next.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, resp)
}

// CallCount is the number of Generate calls seen so far.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
