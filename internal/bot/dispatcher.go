// Package bot orchestrates the message-handling pipeline: admission check,
// quick-command expansion, snapshot build, model call, marker extraction
// and the chart-or-text reply. Each inbound message is one stateless
// request-response unit; concurrent messages share nothing but the
// allow-list.
package bot

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-assistant/internal/charts"
	"github.com/dvloznov/finance-assistant/internal/metrics"
	"github.com/dvloznov/finance-assistant/internal/protocol"
	"github.com/dvloznov/finance-assistant/internal/snapshot"
)

// maxCaptionRunes is the transport's caption bound for image replies.
const maxCaptionRunes = 1024

// Message is the inbound envelope from the chat transport.
type Message struct {
	ChatID int64
	Text   string
}

// SnapshotBuilder assembles the financial context for one message.
type SnapshotBuilder interface {
	Build(ctx context.Context, ref time.Time) (*snapshot.Snapshot, error)
}

// Model answers a question given the financial snapshot.
type Model interface {
	Ask(ctx context.Context, question string, snap *snapshot.Snapshot) (string, error)
}

// Renderer turns chart payloads into opaque image bytes. The pipeline
// never inspects pixel content.
type Renderer interface {
	RenderCategoryBreakdown(data *charts.CategoryBreakdown) ([]byte, error)
	RenderDailySpending(data *charts.DailySpending) ([]byte, error)
	RenderMonthSummary(data *charts.MonthSummary) ([]byte, error)
	RenderBudgetProgress(data *charts.BudgetProgress) ([]byte, error)
	RenderInvoiceHistory(data *charts.InvoiceHistory) ([]byte, error)
	RenderMonthComparison(data *charts.MonthComparison) ([]byte, error)
}

// Transport delivers replies to the chat platform.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendPhoto(ctx context.Context, chatID int64, photo []byte, caption string) error
	SendChatAction(ctx context.Context, chatID int64, action string) error
}

// Dispatcher runs the sequential per-message state flow.
type Dispatcher struct {
	gate      *AuthGate
	snapshots SnapshotBuilder
	model     Model
	renderer  Renderer
	transport Transport
	metrics   *metrics.Metrics
	now       func() time.Time
	log       zerolog.Logger
}

// NewDispatcher wires the pipeline's collaborators together.
func NewDispatcher(
	gate *AuthGate,
	snapshots SnapshotBuilder,
	model Model,
	renderer Renderer,
	transport Transport,
	m *metrics.Metrics,
	log zerolog.Logger,
) *Dispatcher {
	return &Dispatcher{
		gate:      gate,
		snapshots: snapshots,
		model:     model,
		renderer:  renderer,
		transport: transport,
		metrics:   m,
		now:       time.Now,
		log:       log,
	}
}

// HandleMessage processes one inbound message end to end. It never
// propagates a failure to the caller: every error path converts into a
// user-visible reply, and anything unexpected is caught here and replaced
// with a generic apology.
func (d *Dispatcher) HandleMessage(ctx context.Context, msg Message) {
	log := d.log.With().
		Str("message_id", uuid.NewString()).
		Int64("chat_id", msg.ChatID).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Pipeline panicked; sending generic apology")
			d.metrics.Messages.WithLabelValues(metrics.OutcomePanic).Inc()
			_ = d.transport.SendMessage(ctx, msg.ChatID, msgGenericApology)
		}
	}()

	if !d.gate.IsAuthorized(msg.ChatID) {
		// Access event, not an application error.
		log.Warn().Msg("Unauthorized access attempt")
		d.metrics.Messages.WithLabelValues(metrics.OutcomeDenied).Inc()
		_ = d.transport.SendMessage(ctx, msg.ChatID, accessDeniedMessage(msg.ChatID))
		return
	}

	text := msg.Text

	if text == "/start" || text == "/help" {
		d.metrics.Messages.WithLabelValues(metrics.OutcomeText).Inc()
		_ = d.transport.SendMessage(ctx, msg.ChatID, HelpMessage)
		return
	}

	if expanded, ok := QuickCommands[text]; ok {
		log.Debug().Str("command", text).Msg("Quick command expanded")
		text = expanded
	}

	// Best effort; a failed typing indicator never blocks the reply.
	_ = d.transport.SendChatAction(ctx, msg.ChatID, "typing")

	snap, err := d.snapshots.Build(ctx, d.now())
	if err != nil {
		log.Error().Err(err).Msg("Snapshot build failed")
		d.metrics.Messages.WithLabelValues(metrics.OutcomeLedgerError).Inc()
		_ = d.transport.SendMessage(ctx, msg.ChatID, msgLedgerError)
		return
	}

	textOutcome := metrics.OutcomeText
	reply, err := d.model.Ask(ctx, text, snap)
	if err != nil {
		// Recovered locally: the pipeline continues with a fixed apology,
		// which carries no markers and therefore flows out as plain text.
		log.Error().Err(err).Msg("Model call failed; substituting apology")
		textOutcome = metrics.OutcomeModelFallback
		reply = msgModelApology
	}

	if action, ok := protocol.ExtractActionCommand(reply); ok {
		// Detection only; execution is someone else's job.
		log.Info().Str("action", string(action)).Msg("Action marker detected")
		d.metrics.ActionSignals.WithLabelValues(string(action)).Inc()
	}

	if kind, ok := protocol.ExtractChartCommand(reply); ok {
		d.handleChart(ctx, log, msg.ChatID, kind, snap, reply)
		return
	}

	d.metrics.Messages.WithLabelValues(textOutcome).Inc()
	_ = d.transport.SendMessage(ctx, msg.ChatID, protocol.StripMarkers(reply))
}

// handleChart builds and renders the requested chart. A chart kind with no
// underlying data is a normal outcome, answered with a text reply.
func (d *Dispatcher) handleChart(ctx context.Context, log zerolog.Logger, chatID int64, kind protocol.ChartKind, snap *snapshot.Snapshot, reply string) {
	var (
		image []byte
		err   error
	)

	switch kind {
	case protocol.ChartPie:
		if data := charts.BuildCategoryBreakdown(snap.All); data != nil {
			image, err = d.renderer.RenderCategoryBreakdown(data)
		}
	case protocol.ChartBar:
		if data := charts.BuildDailySpending(snap.All); data != nil {
			image, err = d.renderer.RenderDailySpending(data)
		}
	case protocol.ChartSummary:
		image, err = d.renderer.RenderMonthSummary(charts.BuildMonthSummary(snap.Summary()))
	case protocol.ChartBudget:
		if data := charts.BuildBudgetProgress(snap.Budgets); data != nil {
			image, err = d.renderer.RenderBudgetProgress(data)
		}
	case protocol.ChartInvoice:
		if data := charts.BuildInvoiceHistory(snap.Invoices); data != nil {
			image, err = d.renderer.RenderInvoiceHistory(data)
		}
	case protocol.ChartComparison:
		image, err = d.renderer.RenderMonthComparison(charts.BuildMonthComparison(snap.Summary(), snap.Previous))
	}

	if err != nil {
		log.Error().Err(err).Str("chart", string(kind)).Msg("Chart rendering failed")
		d.metrics.Messages.WithLabelValues(metrics.OutcomeInsufficientData).Inc()
		_ = d.transport.SendMessage(ctx, chatID, msgRenderFailure)
		return
	}
	if image == nil {
		log.Info().Str("chart", string(kind)).Msg("No data for requested chart")
		d.metrics.Messages.WithLabelValues(metrics.OutcomeInsufficientData).Inc()
		_ = d.transport.SendMessage(ctx, chatID, msgInsufficientData)
		return
	}

	caption := truncateCaption(protocol.StripMarkers(reply))
	d.metrics.Messages.WithLabelValues(metrics.OutcomeChart).Inc()
	d.metrics.Charts.WithLabelValues(string(kind)).Inc()
	_ = d.transport.SendPhoto(ctx, chatID, image, caption)
}

// truncateCaption bounds a caption to the transport's limit, cutting on a
// rune boundary with a trailing ellipsis.
func truncateCaption(caption string) string {
	runes := []rune(caption)
	if len(runes) <= maxCaptionRunes {
		return caption
	}
	return string(runes[:maxCaptionRunes-3]) + "..."
}
