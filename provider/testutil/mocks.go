package testutil

import (
	"context"
	"fmt"
	"sync"

	"tinygen/model"
)

// MockProvider implements model.Provider for testing.
type MockProvider struct {
	// Configurable responses
	ChatFunc       func(ctx context.Context, messages []model.Message, callback model.StreamCallback) error
	ListModelsFunc func(ctx context.Context) ([]model.ModelInfo, error)
	PingFunc       func(ctx context.Context) error

	// State
	currentModel string
}

// NewMockProvider creates a mock provider with default implementations.
func NewMockProvider(modelName string) *MockProvider {
	mock := &MockProvider{
		currentModel: modelName,
	}
	mock.ChatFunc = mock.defaultChat
	mock.ListModelsFunc = mock.defaultListModels
	mock.PingFunc = mock.defaultPing
	return mock
}

func (m *MockProvider) defaultChat(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	if len(messages) > 0 && callback != nil {
		return callback("Mock response")
	}
	return nil
}

func (m *MockProvider) defaultListModels(ctx context.Context) ([]model.ModelInfo, error) {
	return []model.ModelInfo{
		{Name: "mock-model-1", Size: 1000, Provider: "mock"},
		{Name: "mock-model-2", Size: 2000, Provider: "mock"},
	}, nil
}

func (m *MockProvider) defaultPing(ctx context.Context) error {
	return nil
}

func (m *MockProvider) Chat(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	return m.ChatFunc(ctx, messages, callback)
}

func (m *MockProvider) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	return m.ListModelsFunc(ctx)
}

func (m *MockProvider) GetModel() string {
	return m.currentModel
}

func (m *MockProvider) SetModel(model string) {
	m.currentModel = model
}

func (m *MockProvider) Ping(ctx context.Context) error {
	return m.PingFunc(ctx)
}

// ScriptedProvider replies with a fixed script: call i streams Replies[i].
// Every request is recorded so tests can inspect what each pass saw.
type ScriptedProvider struct {
	*MockProvider

	Replies   []string
	ChunkSize int // Zero streams each reply as one chunk

	mu    sync.Mutex
	calls [][]model.Message
}

// NewScriptedProvider creates a provider that answers with replies in order.
func NewScriptedProvider(replies ...string) *ScriptedProvider {
	sp := &ScriptedProvider{
		MockProvider: NewMockProvider("scripted-model"),
		Replies:      replies,
	}
	sp.ChatFunc = sp.scriptedChat
	return sp
}

func (sp *ScriptedProvider) scriptedChat(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	sp.mu.Lock()
	idx := len(sp.calls)
	sp.calls = append(sp.calls, append([]model.Message(nil), messages...))
	sp.mu.Unlock()

	if idx >= len(sp.Replies) {
		return fmt.Errorf("scripted provider: no reply for call %d", idx+1)
	}
	if callback == nil {
		return nil
	}

	reply := sp.Replies[idx]
	size := sp.ChunkSize
	if size <= 0 {
		size = len(reply)
	}
	for start := 0; start < len(reply); start += size {
		end := min(start+size, len(reply))
		if err := callback(reply[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// Calls returns a copy of the messages received by each Chat call.
func (sp *ScriptedProvider) Calls() [][]model.Message {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	out := make([][]model.Message, len(sp.calls))
	copy(out, sp.calls)
	return out
}
