package api

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName     = "tasktracker/api"
	cardsSpanName  = "board.cards.list"
	cardsEventName = "cards.request.metrics"
	cardsRoute     = "/api/cards"
)

type cardRequestMetrics struct {
	logger *log.Logger
	span   trace.Span
	start  time.Time

	fetchDuration  time.Duration
	encodeDuration time.Duration
	cardsReturned  int
	errorStage     string
}

func newCardRequestMetrics(ctx context.Context, logger *log.Logger) (*cardRequestMetrics, context.Context) {
	m := &cardRequestMetrics{logger: logger, start: time.Now()}
	spanCtx, span := otel.Tracer(tracerName).Start(ctx, cardsSpanName)
	m.span = span
	return m, spanCtx
}

func (m *cardRequestMetrics) ObserveFetch(d time.Duration) {
	if d <= 0 {
		return
	}
	m.fetchDuration = d
}

func (m *cardRequestMetrics) ObserveEncode(d time.Duration) {
	if d <= 0 {
		return
	}
	m.encodeDuration = d
}

func (m *cardRequestMetrics) SetCardsReturned(count int) {
	if count < 0 {
		count = 0
	}
	m.cardsReturned = count
}

func (m *cardRequestMetrics) SetErrorStage(stage string) {
	if stage == "" {
		return
	}
	m.errorStage = stage
}

// Log finishes the request span and emits one structured log entry.
func (m *cardRequestMetrics) Log(status int, err error) {
	if m == nil {
		return
	}

	total := time.Since(m.start)
	if m.span != nil {
		m.span.SetAttributes(
			attribute.String("http.route", cardsRoute),
			attribute.Int("http.status_code", status),
			attribute.Int("board.cards.returned", m.cardsReturned),
			attribute.Float64("board.cards.total_ms", durationToMillis(total)),
		)
		if m.errorStage != "" {
			m.span.SetAttributes(attribute.String("board.cards.error_stage", m.errorStage))
		}
		if err != nil {
			m.span.SetStatus(codes.Error, err.Error())
		}
		m.span.End()
	}

	if m.logger == nil {
		return
	}
	fields := log.Fields{
		"route":          cardsRoute,
		"status":         status,
		"total_ms":       durationToMillis(total),
		"cards_returned": m.cardsReturned,
	}
	if m.fetchDuration > 0 {
		fields["fetch_ms"] = durationToMillis(m.fetchDuration)
	}
	if m.encodeDuration > 0 {
		fields["encode_ms"] = durationToMillis(m.encodeDuration)
	}
	if m.errorStage != "" {
		fields["error_stage"] = m.errorStage
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	m.logger.WithFields(fields).Info(cardsEventName)
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
