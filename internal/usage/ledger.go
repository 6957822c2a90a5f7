// Package usage meters model invocations: one append-only record per call,
// with aggregate reporting for cost visibility.
package usage

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Record captures one model invocation. Records are never mutated after
// creation.
type Record struct {
	ID           string        `json:"id"`
	Operation    string        `json:"operation"`
	Model        string        `json:"model"`
	InputTokens  int           `json:"inputTokens"`
	OutputTokens int           `json:"outputTokens"`
	Latency      time.Duration `json:"latency"`
	Cost         float64       `json:"cost"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// OperationSummary aggregates records sharing an operation name.
type OperationSummary struct {
	Operation    string        `json:"operation"`
	Calls        int           `json:"calls"`
	InputTokens  int           `json:"inputTokens"`
	OutputTokens int           `json:"outputTokens"`
	TotalCost    float64       `json:"totalCost"`
	TotalLatency time.Duration `json:"totalLatency"`
}

// Summary is the full ledger report.
type Summary struct {
	TotalCalls   int                `json:"totalCalls"`
	TotalCost    float64            `json:"totalCost"`
	InputTokens  int                `json:"inputTokens"`
	OutputTokens int                `json:"outputTokens"`
	Operations   []OperationSummary `json:"operations"`
	Since        time.Time          `json:"since"`
}

// Ledger is safe for concurrent use; every pipeline worker records into the
// same instance.
type Ledger struct {
	mu      sync.Mutex
	records []Record
	entropy *rand.Rand
	started time.Time
}

func NewLedger() *Ledger {
	return &Ledger{
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		started: time.Now(),
	}
}

// Record appends one usage record. Implements the recorder hook the model
// client calls after each invocation.
func (l *Ledger) Record(op, model string, inputTokens, outputTokens int, latency time.Duration) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, Record{
		ID:           ulid.MustNew(ulid.Timestamp(now), l.entropy).String(),
		Operation:    op,
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Latency:      latency,
		Cost:         Cost(model, inputTokens, outputTokens),
		CreatedAt:    now,
	})
}

// Records returns a copy of all records in insertion order.
func (l *Ledger) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Summarize aggregates records per operation, sorted by cost descending.
func (l *Ledger) Summarize() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	byOp := make(map[string]*OperationSummary)
	summary := Summary{Since: l.started}
	for _, r := range l.records {
		op, ok := byOp[r.Operation]
		if !ok {
			op = &OperationSummary{Operation: r.Operation}
			byOp[r.Operation] = op
		}
		op.Calls++
		op.InputTokens += r.InputTokens
		op.OutputTokens += r.OutputTokens
		op.TotalCost += r.Cost
		op.TotalLatency += r.Latency

		summary.TotalCalls++
		summary.TotalCost += r.Cost
		summary.InputTokens += r.InputTokens
		summary.OutputTokens += r.OutputTokens
	}

	for _, op := range byOp {
		summary.Operations = append(summary.Operations, *op)
	}
	sort.Slice(summary.Operations, func(i, j int) bool {
		if summary.Operations[i].TotalCost != summary.Operations[j].TotalCost {
			return summary.Operations[i].TotalCost > summary.Operations[j].TotalCost
		}
		return summary.Operations[i].Operation < summary.Operations[j].Operation
	})

	return summary
}

// Reset drops all records, keeping the ledger usable.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = nil
	l.started = time.Now()
}
