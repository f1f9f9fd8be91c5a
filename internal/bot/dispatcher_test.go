package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/finance-assistant/internal/charts"
	"github.com/dvloznov/finance-assistant/internal/domain"
	"github.com/dvloznov/finance-assistant/internal/logger"
	"github.com/dvloznov/finance-assistant/internal/metrics"
	"github.com/dvloznov/finance-assistant/internal/snapshot"
)

type stubBuilder struct {
	snap  *snapshot.Snapshot
	err   error
	calls int
}

func (b *stubBuilder) Build(ctx context.Context, ref time.Time) (*snapshot.Snapshot, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return b.snap, nil
}

type stubModel struct {
	reply string
	err   error
	asked []string
}

func (m *stubModel) Ask(ctx context.Context, question string, snap *snapshot.Snapshot) (string, error) {
	m.asked = append(m.asked, question)
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

type stubRenderer struct {
	image []byte
	err   error
	calls []string
}

func (r *stubRenderer) render(name string) ([]byte, error) {
	r.calls = append(r.calls, name)
	if r.err != nil {
		return nil, r.err
	}
	return r.image, nil
}

func (r *stubRenderer) RenderCategoryBreakdown(*charts.CategoryBreakdown) ([]byte, error) {
	return r.render("pie")
}
func (r *stubRenderer) RenderDailySpending(*charts.DailySpending) ([]byte, error) {
	return r.render("bar")
}
func (r *stubRenderer) RenderMonthSummary(*charts.MonthSummary) ([]byte, error) {
	return r.render("summary")
}
func (r *stubRenderer) RenderBudgetProgress(*charts.BudgetProgress) ([]byte, error) {
	return r.render("budget")
}
func (r *stubRenderer) RenderInvoiceHistory(*charts.InvoiceHistory) ([]byte, error) {
	return r.render("invoice")
}
func (r *stubRenderer) RenderMonthComparison(*charts.MonthComparison) ([]byte, error) {
	return r.render("comparison")
}

type sentPhoto struct {
	chatID  int64
	caption string
}

type stubTransport struct {
	messages []string
	photos   []sentPhoto
	actions  []string
}

func (t *stubTransport) SendMessage(ctx context.Context, chatID int64, text string) error {
	t.messages = append(t.messages, text)
	return nil
}

func (t *stubTransport) SendPhoto(ctx context.Context, chatID int64, photo []byte, caption string) error {
	t.photos = append(t.photos, sentPhoto{chatID: chatID, caption: caption})
	return nil
}

func (t *stubTransport) SendChatAction(ctx context.Context, chatID int64, action string) error {
	t.actions = append(t.actions, action)
	return nil
}

type fixture struct {
	dispatcher *Dispatcher
	builder    *stubBuilder
	model      *stubModel
	renderer   *stubRenderer
	transport  *stubTransport
	metrics    *metrics.Metrics
}

func newFixture(t *testing.T, allowed []int64) *fixture {
	t.Helper()
	f := &fixture{
		builder:   &stubBuilder{snap: snapshotWithExpenses()},
		model:     &stubModel{reply: "tudo certo"},
		renderer:  &stubRenderer{image: []byte{0x89, 'P', 'N', 'G'}},
		transport: &stubTransport{},
		metrics:   metrics.NewUnregistered(),
	}
	f.dispatcher = NewDispatcher(
		NewAuthGate(allowed),
		f.builder,
		f.model,
		f.renderer,
		f.transport,
		f.metrics,
		logger.NewWithLevel("disabled"),
	)
	return f
}

func snapshotWithExpenses() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		MonthLabel: "agosto",
		Year:       2025,
		Expenses:   decimal.New(5000, -2),
		Net:        decimal.New(-5000, -2),
		All: []snapshot.DisplayTransaction{
			{
				Transaction: domain.Transaction{
					ID:     1,
					Date:   time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC),
					Amount: decimal.New(-5000, -2),
				},
				Category: "Alimentação",
			},
		},
	}
}

func TestHandleMessageUnauthorized(t *testing.T) {
	f := newFixture(t, []int64{100})

	f.dispatcher.HandleMessage(t.Context(), Message{ChatID: 555, Text: "qual meu saldo?"})

	require.Len(t, f.transport.messages, 1)
	assert.Contains(t, f.transport.messages[0], "555")
	assert.Contains(t, f.transport.messages[0], "Acesso não autorizado")
	assert.Equal(t, 0, f.builder.calls)
	assert.Empty(t, f.model.asked)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Messages.WithLabelValues(metrics.OutcomeDenied)))
}

func TestHandleMessageEmptyAllowListDeniesAll(t *testing.T) {
	f := newFixture(t, nil)

	f.dispatcher.HandleMessage(t.Context(), Message{ChatID: 100, Text: "oi"})

	require.Len(t, f.transport.messages, 1)
	assert.Contains(t, f.transport.messages[0], "Acesso não autorizado")
	assert.Equal(t, 0, f.builder.calls)
}

func TestHandleMessageHelp(t *testing.T) {
	for _, text := range []string{"/start", "/help"} {
		f := newFixture(t, []int64{100})

		f.dispatcher.HandleMessage(t.Context(), Message{ChatID: 100, Text: text})

		require.Len(t, f.transport.messages, 1)
		assert.Equal(t, HelpMessage, f.transport.messages[0])
		assert.Equal(t, 0, f.builder.calls)
		assert.Empty(t, f.model.asked)
	}
}

func TestHandleMessageQuickCommandExpansion(t *testing.T) {
	f := newFixture(t, []int64{100})

	f.dispatcher.HandleMessage(t.Context(), Message{ChatID: 100, Text: "/saldo"})

	require.Len(t, f.model.asked, 1)
	assert.Equal(t, QuickCommands["/saldo"], f.model.asked[0])
	assert.NotEqual(t, "/saldo", f.model.asked[0])
}

func TestHandleMessageSendsTypingAction(t *testing.T) {
	f := newFixture(t, []int64{100})

	f.dispatcher.HandleMessage(t.Context(), Message{ChatID: 100, Text: "quanto gastei?"})

	require.Len(t, f.transport.actions, 1)
	assert.Equal(t, "typing", f.transport.actions[0])
}

func TestHandleMessageLedgerFailure(t *testing.T) {
	f := newFixture(t, []int64{100})
	f.builder.err = errors.New("upstream timeout")

	f.dispatcher.HandleMessage(t.Context(), Message{ChatID: 100, Text: "quanto gastei?"})

	require.Len(t, f.transport.messages, 1)
	assert.Equal(t, msgLedgerError, f.transport.messages[0])
	assert.Empty(t, f.model.asked)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Messages.WithLabelValues(metrics.OutcomeLedgerError)))
}

func TestHandleMessageModelFailure(t *testing.T) {
	f := newFixture(t, []int64{100})
	f.model.err = errors.New("quota exceeded")

	f.dispatcher.HandleMessage(t.Context(), Message{ChatID: 100, Text: "quanto gastei?"})

	require.Len(t, f.transport.messages, 1)
	assert.Equal(t, msgModelApology, f.transport.messages[0])
	assert.Empty(t, f.transport.photos)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Messages.WithLabelValues(metrics.OutcomeModelFallback)))
}

func TestHandleMessagePlainTextReply(t *testing.T) {
	f := newFixture(t, []int64{100})
	f.model.reply = "Você gastou R$ 50,00 este mês."

	f.dispatcher.HandleMessage(t.Context(), Message{ChatID: 100, Text: "quanto gastei?"})

	require.Len(t, f.transport.messages, 1)
	assert.Equal(t, "Você gastou R$ 50,00 este mês.", f.transport.messages[0])
	assert.Empty(t, f.transport.photos)
}

func TestHandleMessageChartReply(t *testing.T) {
	f := newFixture(t, []int64{100})
	f.model.reply = "[CHART:PIE] Aqui está a divisão por categoria."

	f.dispatcher.HandleMessage(t.Context(), Message{ChatID: 100, Text: "/gastos_categoria"})

	require.Len(t, f.transport.photos, 1)
	assert.Equal(t, "Aqui está a divisão por categoria.", f.transport.photos[0].caption)
	assert.Equal(t, []string{"pie"}, f.renderer.calls)
	assert.Empty(t, f.transport.messages)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Charts.WithLabelValues("PIE")))
}

func TestHandleMessageChartWithoutData(t *testing.T) {
	f := newFixture(t, []int64{100})
	f.builder.snap = &snapshot.Snapshot{MonthLabel: "agosto", Year: 2025}
	f.model.reply = "[CHART:PIE] aqui está seu gráfico"

	f.dispatcher.HandleMessage(t.Context(), Message{ChatID: 100, Text: "/gastos_categoria"})

	assert.Empty(t, f.transport.photos)
	assert.Empty(t, f.renderer.calls)
	require.Len(t, f.transport.messages, 1)
	assert.Equal(t, msgInsufficientData, f.transport.messages[0])
}

func TestHandleMessageRenderFailure(t *testing.T) {
	f := newFixture(t, []int64{100})
	f.renderer.err = errors.New("encode failed")
	f.model.reply = "[CHART:PIE] aqui está"

	f.dispatcher.HandleMessage(t.Context(), Message{ChatID: 100, Text: "/gastos_categoria"})

	assert.Empty(t, f.transport.photos)
	require.Len(t, f.transport.messages, 1)
	assert.Equal(t, msgRenderFailure, f.transport.messages[0])
}

func TestHandleMessageActionMarkerStripped(t *testing.T) {
	f := newFixture(t, []int64{100})
	f.model.reply = "[ACTION:CREATE_EXPENSE] Anotado: R$ 30,00 em alimentação."

	f.dispatcher.HandleMessage(t.Context(), Message{ChatID: 100, Text: "gastei 30 no mercado"})

	require.Len(t, f.transport.messages, 1)
	assert.Equal(t, "Anotado: R$ 30,00 em alimentação.", f.transport.messages[0])
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ActionSignals.WithLabelValues("CREATE_EXPENSE")))
}

func TestHandleMessageSummaryChartIgnoresEmptyMonth(t *testing.T) {
	// SUMMARY always has a payload, even for an empty month.
	f := newFixture(t, []int64{100})
	f.builder.snap = &snapshot.Snapshot{MonthLabel: "agosto", Year: 2025}
	f.model.reply = "[CHART:SUMMARY] resumo do mês"

	f.dispatcher.HandleMessage(t.Context(), Message{ChatID: 100, Text: "/resumo_visual"})

	require.Len(t, f.transport.photos, 1)
	assert.Equal(t, []string{"summary"}, f.renderer.calls)
}

func TestHandleMessageCaptionTruncation(t *testing.T) {
	f := newFixture(t, []int64{100})
	f.model.reply = "[CHART:PIE] " + strings.Repeat("é", 2000)

	f.dispatcher.HandleMessage(t.Context(), Message{ChatID: 100, Text: "/gastos_categoria"})

	require.Len(t, f.transport.photos, 1)
	caption := f.transport.photos[0].caption
	assert.Equal(t, maxCaptionRunes, utf8.RuneCountInString(caption))
	assert.True(t, strings.HasSuffix(caption, "..."))
}

func TestHandleMessagePanicRecovery(t *testing.T) {
	f := newFixture(t, []int64{100})
	f.builder.snap = nil // model stub tolerates it, chart path would not

	f.dispatcher.HandleMessage(t.Context(), Message{ChatID: 100, Text: "quanto gastei?"})

	// A nil snapshot with a plain-text reply still flows through.
	require.Len(t, f.transport.messages, 1)

	// Force a panic inside the pipeline.
	f2 := newFixture(t, []int64{100})
	f2.builder.snap = nil
	f2.model.reply = "[CHART:PIE] gráfico"

	f2.dispatcher.HandleMessage(t.Context(), Message{ChatID: 100, Text: "/gastos_categoria"})

	require.Len(t, f2.transport.messages, 1)
	assert.Equal(t, msgGenericApology, f2.transport.messages[0])
	assert.Equal(t, 1.0, testutil.ToFloat64(f2.metrics.Messages.WithLabelValues(metrics.OutcomePanic)))
}

func TestTruncateCaption(t *testing.T) {
	assert.Equal(t, "curto", truncateCaption("curto"))

	exact := strings.Repeat("a", maxCaptionRunes)
	assert.Equal(t, exact, truncateCaption(exact))

	long := strings.Repeat("a", maxCaptionRunes+1)
	got := truncateCaption(long)
	assert.Equal(t, maxCaptionRunes, utf8.RuneCountInString(got))
	assert.Equal(t, strings.Repeat("a", maxCaptionRunes-3)+"...", got)
}
