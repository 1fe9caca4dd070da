package consumerWorker

import (
	"codebeyond/internal/dto"
	"codebeyond/internal/mailer"
	"codebeyond/internal/rabbit"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
)

type Sender interface {
	SendReviewResult(ctx context.Context, msg dto.ReviewMessage) error
}

// Reader turns review messages from RabbitMQ into notification mails.
type Reader struct {
	RMQ    rabbit.Consumer
	sender Sender
	log    *zerolog.Logger
	done   chan struct{}
	cancel context.CancelFunc
}

func NewReader(rmq rabbit.Consumer, sender Sender, log *zerolog.Logger) *Reader {
	return &Reader{
		RMQ:    rmq,
		sender: sender,
		log:    log,
		done:   make(chan struct{}),
	}
}

func (r *Reader) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.log.Info().Msg("RabbitMQ Reader started")

	go func() {
		defer close(r.done)

		handler := func(body []byte) error {
			return r.Handle(cctx, body)
		}

		if err := r.RMQ.Consume(handler); err != nil {
			r.log.Error().Err(err).Msg("Failed to start consuming")
			return
		}

		<-cctx.Done()
		r.log.Info().Msg("RabbitMQ Reader stopped by context")
	}()
}

// Handle processes one delivery. Malformed and unsupported messages are logged and
// acknowledged; only mail delivery failures are returned for a retry.
func (r *Reader) Handle(ctx context.Context, body []byte) error {
	var msg dto.ReviewMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		r.log.Error().Err(err).Msgf("Failed to unmarshal message: %s", string(body))
		return nil
	}
	if msg.Email == "" {
		r.log.Warn().Str("participant_id", msg.ParticipantID).Msg("review message without email, skipping")
		return nil
	}

	r.log.Info().
		Str("participant_id", msg.ParticipantID).
		Str("status", string(msg.Status)).
		Msg("Received review message from RabbitMQ")

	err := r.sender.SendReviewResult(ctx, msg)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mailer.ErrUnsupportedStatus):
		r.log.Warn().Err(err).Str("participant_id", msg.ParticipantID).Msg("skipping notification")
		return nil
	default:
		return fmt.Errorf("notify participant %s: %w", msg.ParticipantID, err)
	}
}

func (r *Reader) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}
