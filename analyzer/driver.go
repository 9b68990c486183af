package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"tinygen/model"
)

// ChunkFunc observes streamed output of a stage.
type ChunkFunc func(stage, chunk string)

// Config is the injected configuration of a Driver.
type Config struct {
	Provider model.Provider
	Stages   []Stage   // Empty means DefaultStages()
	OnChunk  ChunkFunc // Optional
	Logger   *zap.Logger
}

// Transcript is the outcome of one pipeline run.
type Transcript struct {
	History []model.Message // user/assistant turns in order
	Replies []string        // raw reply of each stage
}

// Final returns the reply of the last stage.
func (t *Transcript) Final() string {
	if len(t.Replies) == 0 {
		return ""
	}
	return t.Replies[len(t.Replies)-1]
}

// Driver runs the stages of a pipeline sequentially over one growing history.
type Driver struct {
	provider model.Provider
	stages   []Stage
	onChunk  ChunkFunc
	logger   *zap.Logger
}

// NewDriver creates a Driver. It returns an error when no provider is set.
func NewDriver(cfg Config) (*Driver, error) {
	if cfg.Provider == nil {
		return nil, errors.New("analyzer: provider is required")
	}
	stages := cfg.Stages
	if len(stages) == 0 {
		stages = DefaultStages()
	}
	for i, st := range stages {
		if st.Message == nil {
			return nil, fmt.Errorf("analyzer: stage %d (%s) has no message builder", i, st.Name)
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Driver{
		provider: cfg.Provider,
		stages:   stages,
		onChunk:  cfg.OnChunk,
		logger:   logger,
	}, nil
}

// Stages returns the names of the configured stages in order.
func (d *Driver) Stages() []string {
	names := make([]string, len(d.stages))
	for i, st := range d.stages {
		names[i] = st.Name
	}
	return names
}

// Run executes every stage in order. Before each call the stage's user message
// is appended to the history; each reply except the last is appended as an
// assistant turn so the next stage sees the full prefix. The first failing
// call aborts the run.
func (d *Driver) Run(ctx context.Context, in Input) (*Transcript, error) {
	t := &Transcript{
		History: make([]model.Message, 0, 2*len(d.stages)-1),
		Replies: make([]string, 0, len(d.stages)),
	}

	for i, st := range d.stages {
		t.History = append(t.History, model.UserMessage(st.Message(in)))

		d.logger.Info("Starting pass",
			zap.String("stage", st.Name),
			zap.Int("pass", i+1),
			zap.Int("history", len(t.History)))

		reply, err := d.send(ctx, st, t.History)
		if err != nil {
			return t, fmt.Errorf("%s pass failed: %w", st.Name, err)
		}
		t.Replies = append(t.Replies, reply)

		d.logger.Info("Finished pass",
			zap.String("stage", st.Name),
			zap.Int("reply_bytes", len(reply)))

		if i < len(d.stages)-1 {
			t.History = append(t.History, model.AssistantMessage(reply))
		}
	}

	return t, nil
}

// send makes one blocking round-trip: the stage instruction plus a copy of the
// history, with streamed chunks concatenated into the reply.
func (d *Driver) send(ctx context.Context, st Stage, history []model.Message) (string, error) {
	messages := make([]model.Message, 0, len(history)+1)
	messages = append(messages, model.SystemMessage(st.System))
	messages = append(messages, history...)

	var reply strings.Builder
	err := d.provider.Chat(ctx, messages, func(chunk string) error {
		reply.WriteString(chunk)
		if d.onChunk != nil {
			d.onChunk(st.Name, chunk)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return reply.String(), nil
}

// Model returns the model identifier of the backend.
func (d *Driver) Model() string {
	return d.provider.GetModel()
}
