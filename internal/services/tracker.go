package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"hisab/internal/amqp"
	"hisab/internal/core"
	"hisab/internal/report"
	"hisab/internal/store"
)

// ErrUnknownChart is returned when a chart kind is not recognized.
var ErrUnknownChart = errors.New("unknown chart kind")

// EventPublisher publishes table change notifications. A nil publisher is
// valid and means changes are not announced.
type EventPublisher interface {
	PublishChange(ctx context.Context, msg *amqp.ChangeMessage) error
}

// Tracker orchestrates transaction operations across the CSV store and AMQP
type Tracker struct {
	store  *store.Store
	events EventPublisher
}

func NewTracker(s *store.Store, events EventPublisher) *Tracker {
	return &Tracker{store: s, events: events}
}

// ListResult bundles everything a transaction listing view needs. All fields
// are computed over the filtered rows.
type ListResult struct {
	Rows       []core.Transaction `json:"rows"`
	Summary    report.Summary     `json:"summary"`
	Months     []string           `json:"months"`
	Categories []string           `json:"categories"`
	Recent     []core.Transaction `json:"recent"`
}

// ChartData is a label/value series ready for rendering.
type ChartData struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Chart kinds accepted by ChartData.
const (
	ChartExpenseCategories = "expense-categories"
	ChartIncomeVsExpense   = "income-vs-expense"
)

// ListTransactions returns the filtered rows together with the summary and
// the month/category values derived from them.
func (t *Tracker) ListTransactions(ctx context.Context, f report.Filter) ListResult {
	rows := report.Apply(t.store.Load(ctx), f)

	return ListResult{
		Rows:       rows,
		Summary:    report.Summarize(rows),
		Months:     report.Months(rows),
		Categories: report.Categories(rows),
		Recent:     report.Recent(rows, 10),
	}
}

// AddTransaction appends a transaction and announces the change.
func (t *Tracker) AddTransaction(ctx context.Context, tx core.Transaction) error {
	index := len(t.store.Load(ctx))

	if err := t.store.Append(ctx, tx); err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}

	t.publishChange(ctx, amqp.OpAppend, index)
	return nil
}

// AddInvestment appends a transaction with the type forced to investment.
func (t *Tracker) AddInvestment(ctx context.Context, tx core.Transaction) error {
	tx.Type = core.TypeInvestment
	return t.AddTransaction(ctx, tx)
}

// DeleteTransaction removes the row at the given position.
func (t *Tracker) DeleteTransaction(ctx context.Context, index int) error {
	if err := t.store.DeleteRow(ctx, index); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	t.publishChange(ctx, amqp.OpDelete, index)
	return nil
}

// EditTransaction replaces the row at the given position.
func (t *Tracker) EditTransaction(ctx context.Context, index int, tx core.Transaction) error {
	if err := t.store.UpdateRow(ctx, index, tx); err != nil {
		return fmt.Errorf("edit transaction: %w", err)
	}

	t.publishChange(ctx, amqp.OpUpdate, index)
	return nil
}

// InvestmentReport analyzes all investment rows in the table.
func (t *Tracker) InvestmentReport(ctx context.Context) report.InvestmentReport {
	return report.AnalyzeInvestments(t.store.Load(ctx))
}

// Investments returns the investment rows with their table positions, for
// the manage listing where rows are edited or deleted by position.
func (t *Tracker) Investments(ctx context.Context) []report.InvestmentRow {
	return report.Investments(t.store.Load(ctx))
}

// ChartData builds the series for the requested chart kind over the
// filtered rows.
func (t *Tracker) ChartData(ctx context.Context, kind string, f report.Filter) (ChartData, error) {
	rows := report.Apply(t.store.Load(ctx), f)

	switch kind {
	case ChartExpenseCategories:
		totals := report.ExpenseByCategory(rows)
		data := ChartData{
			Labels: make([]string, 0, len(totals)),
			Values: make([]float64, 0, len(totals)),
		}
		for _, ct := range totals {
			data.Labels = append(data.Labels, ct.Category)
			data.Values = append(data.Values, ct.Total)
		}
		return data, nil

	case ChartIncomeVsExpense:
		s := report.Summarize(rows)
		return ChartData{
			Labels: []string{"Income", "Expense"},
			Values: []float64{s.Income, s.Expense},
		}, nil

	default:
		return ChartData{}, fmt.Errorf("%w: %q", ErrUnknownChart, kind)
	}
}

func (t *Tracker) publishChange(ctx context.Context, op string, index int) {
	if t.events == nil {
		return
	}

	if err := t.events.PublishChange(ctx, amqp.NewChangeMessage(op, index)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change message",
			"op", op,
			"index", index,
			"error", err)
		// Don't fail the request, the row is already saved locally
	}
}

// Close releases the AMQP connection if one is attached.
func (t *Tracker) Close() error {
	if closer, ok := t.events.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("close tracker: %w", err)
		}
	}
	return nil
}
