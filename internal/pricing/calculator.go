package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/Simplici0/aluquote/internal/catalog"
	"github.com/Simplici0/aluquote/internal/formula"
	"github.com/google/uuid"
)

// QuoteValidity is how long a calculated quote stays valid.
const QuoteValidity = 30 * 24 * time.Hour

// Result is a complete calculated quote.
type Result struct {
	ID           uuid.UUID        `json:"id"`
	Items        []CalculatedLine `json:"items"`
	Totals       Totals           `json:"totals"`
	Rates        OverheadRates    `json:"rates"`
	CalculatedAt time.Time        `json:"calculated_at"`
	ValidUntil   time.Time        `json:"valid_until"`
}

// Calculator turns quote requests into results. It holds no per-quote state
// and is safe for concurrent use.
type Calculator struct {
	eval     *formula.Evaluator
	defaults OverheadRates
	now      func() time.Time
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithEvaluator sets the formula evaluator, typically one sharing a parse cache.
func WithEvaluator(ev *formula.Evaluator) Option {
	return func(c *Calculator) { c.eval = ev }
}

// WithClock overrides the time source used for CalculatedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) { c.now = now }
}

// NewCalculator returns a calculator applying defaults when a request does
// not override the overhead rates.
func NewCalculator(defaults OverheadRates, opts ...Option) *Calculator {
	c := &Calculator{
		eval:     formula.NewEvaluator(),
		defaults: defaults,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Quote reads one snapshot for the request's products from src and calculates against it.
func (c *Calculator) Quote(ctx context.Context, src catalog.Source, req Request) (*Result, error) {
	if err := checkShape(req); err != nil {
		return nil, err
	}
	snap, err := src.Snapshot(ctx, req.ProductIDs())
	if err != nil {
		return nil, fmt.Errorf("load catalog snapshot: %w", err)
	}
	return c.Calculate(req, snap)
}

// Calculate prices every item of req against snap. It either returns a full
// result or an error; a failing item aborts the whole quote and is reported
// as *ItemError.
func (c *Calculator) Calculate(req Request, snap *catalog.Snapshot) (*Result, error) {
	if err := checkShape(req); err != nil {
		return nil, err
	}
	rates, err := req.rates(c.defaults)
	if err != nil {
		return nil, err
	}

	items := &itemCalculator{
		snap:          snap,
		lines:         NewLineCalculator(c.eval, snap),
		laborOverride: req.LaborRatePerM2Override,
	}
	lines := make([]CalculatedLine, 0, len(req.Items))
	for i, it := range req.Items {
		line, err := items.calculate(i, it)
		if err != nil {
			return nil, &ItemError{Index: i, ProductID: it.ProductID, Err: err}
		}
		lines = append(lines, line)
	}

	totals, err := Aggregate(lines, rates)
	if err != nil {
		return nil, err
	}

	now := c.now().UTC()
	return &Result{
		ID:           uuid.New(),
		Items:        lines,
		Totals:       totals,
		Rates:        rates,
		CalculatedAt: now,
		ValidUntil:   now.Add(QuoteValidity),
	}, nil
}

func checkShape(req Request) error {
	if n := len(req.Items); n == 0 || n > MaxItems {
		return fmt.Errorf("%w: %d items, want 1..%d", ErrInvalidRequest, n, MaxItems)
	}
	return nil
}
