package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vertexchat-go/internal/content"
	apperrors "vertexchat-go/internal/errors"
	"vertexchat-go/internal/events"
	"vertexchat-go/internal/monitoring"
	"vertexchat-go/internal/monitoring/tracing"
	"vertexchat-go/internal/upstream/vertex"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrAborted is returned by Submit once an earlier exchange failed.
var ErrAborted = errors.New("conversation aborted")

// Sender performs one generation call.
type Sender interface {
	Send(ctx context.Context, req vertex.GenerationRequest) (vertex.GenerationResponse, error)
}

// Outcome classifies a completed exchange.
type Outcome string

const (
	OutcomeCommitted Outcome = "committed"
	OutcomeRejected  Outcome = "rejected"
	OutcomeAborted   Outcome = "aborted"
)

// UserInput is one user turn before it enters the history.
type UserInput struct {
	Text        string
	Attachments []content.Blob
}

// Exchange is the result of a Submit that reached the platform.
type Exchange struct {
	Outcome  Outcome
	Response vertex.GenerationResponse
}

// ExchangeEvent is the payload published for every exchange.
type ExchangeEvent struct {
	SessionID    string    `json:"session_id"`
	Outcome      Outcome   `json:"outcome"`
	UserText     string    `json:"user_text"`
	Attachments  int       `json:"attachments"`
	ModelText    string    `json:"model_text,omitempty"`
	FinishReason string    `json:"finish_reason,omitempty"`
	BlockReason  string    `json:"block_reason,omitempty"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	Error        string    `json:"error,omitempty"`
	HistoryLen   int       `json:"history_len"`
	Model        string    `json:"model,omitempty"`
	PromptTokens int       `json:"prompt_tokens,omitempty"`
	OutputTokens int       `json:"output_tokens,omitempty"`
	TotalTokens  int       `json:"total_tokens,omitempty"`
	At           time.Time `json:"at"`
}

// Options configures a Controller.
type Options struct {
	Model     string
	Policy    content.SafetyPolicy
	Publisher events.Publisher
	SessionID string
	Now       func() time.Time
}

// Controller owns one conversation's history and drives the exchange
// state machine. It is not safe for concurrent use; exchanges are
// strictly sequential.
type Controller struct {
	sender    Sender
	model     string
	policy    content.SafetyPolicy
	publisher events.Publisher
	sessionID string
	now       func() time.Time

	state   State
	history content.History
	abort   error
}

// NewController creates a controller in AwaitingInput with empty history.
func NewController(sender Sender, opts Options) *Controller {
	c := &Controller{
		sender:    sender,
		model:     opts.Model,
		policy:    opts.Policy,
		publisher: opts.Publisher,
		sessionID: opts.SessionID,
		now:       opts.Now,
		state:     AwaitingInput,
	}
	if c.sessionID == "" {
		c.sessionID = uuid.NewString()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

func (c *Controller) State() State      { return c.state }
func (c *Controller) SessionID() string { return c.sessionID }

// History returns a copy of the transcript.
func (c *Controller) History() content.History { return c.history.Snapshot() }

// Err returns the failure that aborted the conversation, if any.
func (c *Controller) Err() error { return c.abort }

// Submit appends the user turn, sends the whole history and applies the
// outcome:
//   - a successful finish appends the model turn (history grows by two);
//   - any other finish discards the reply but keeps the user turn (history
//     grows by one), and is reported as OutcomeRejected without error;
//   - an error is returned unchanged and aborts the conversation. The
//     history keeps the unanswered user turn.
func (c *Controller) Submit(ctx context.Context, in UserInput) (Exchange, error) {
	if c.abort != nil {
		return Exchange{}, fmt.Errorf("%w: %w", ErrAborted, c.abort)
	}
	next, err := Transition(c.state, EventSubmit)
	if err != nil {
		return Exchange{}, err
	}

	ctx, span := tracing.StartSpan(ctx, "conversation", "Conversation.Submit")
	defer span.End()

	turn := content.UserTurn(in.Text, in.Attachments...)
	c.history.Append(turn)
	c.state = next

	req := vertex.Build(c.model, c.history, c.policy)
	span.SetAttributes(
		attribute.String("conversation.session_id", c.sessionID),
		attribute.Int("conversation.history_len", len(req.Contents)),
		attribute.Int("conversation.attachments", len(in.Attachments)),
	)

	resp, err := c.sender.Send(ctx, req)
	if err != nil {
		c.state, _ = Transition(c.state, EventFailed)
		c.abort = err
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.record(ctx, OutcomeAborted, in, vertex.GenerationResponse{}, err)
		return Exchange{}, err
	}

	if !resp.FinishReason.ConsideredSuccessful() {
		c.state, _ = Transition(c.state, EventRejected)
		span.SetAttributes(attribute.String("conversation.outcome", string(OutcomeRejected)))
		c.record(ctx, OutcomeRejected, in, resp, nil)
		return Exchange{Outcome: OutcomeRejected, Response: resp}, nil
	}

	c.history.Append(resp.Content)
	c.state, _ = Transition(c.state, EventCommitted)
	span.SetAttributes(attribute.String("conversation.outcome", string(OutcomeCommitted)))
	span.SetStatus(codes.Ok, "")
	c.record(ctx, OutcomeCommitted, in, resp, nil)
	return Exchange{Outcome: OutcomeCommitted, Response: resp}, nil
}

func (c *Controller) record(ctx context.Context, outcome Outcome, in UserInput, resp vertex.GenerationResponse, err error) {
	monitoring.RecordExchange(string(outcome), len(c.history))

	ev := ExchangeEvent{
		SessionID:   c.sessionID,
		Outcome:     outcome,
		UserText:    in.Text,
		Attachments: len(in.Attachments),
		HistoryLen:  len(c.history),
		Model:       c.model,
		At:          c.now(),
	}
	if u := resp.Usage; u != nil {
		ev.PromptTokens = u.PromptTokenCount
		ev.OutputTokens = u.CandidatesTokenCount
		ev.TotalTokens = u.TotalTokenCount
	}
	fields := log.Fields{
		"session_id":  c.sessionID,
		"outcome":     outcome,
		"history_len": len(c.history),
	}
	topic := events.TopicExchangeCommitted
	switch outcome {
	case OutcomeCommitted:
		ev.ModelText = resp.Content.DisplayText()
		ev.FinishReason = string(resp.FinishReason)
		fields["finish_reason"] = resp.FinishReason
		log.WithFields(fields).Debug("exchange committed")
	case OutcomeRejected:
		topic = events.TopicExchangeRejected
		ev.FinishReason = string(resp.FinishReason)
		ev.BlockReason = resp.BlockReason
		fields["finish_reason"] = resp.FinishReason
		log.WithFields(fields).Info("exchange rejected by model")
	case OutcomeAborted:
		topic = events.TopicExchangeAborted
		ev.ErrorKind = string(apperrors.KindOf(err))
		ev.Error = err.Error()
		log.WithFields(fields).WithError(err).Error("exchange failed, conversation aborted")
	}

	if c.publisher != nil {
		c.publisher.Publish(ctx, topic, ev, map[string]string{"session_id": c.sessionID})
	}
}
