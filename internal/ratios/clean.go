package ratios

import (
	"context"

	"occratios/internal/infrastructure"
	"occratios/pkg/contracts/domain"
)

// CleanReport counts clamped values per ratio.
type CleanReport struct {
	Clamped map[string]int `json:"clamped"`
}

// Cleaner clamps ratios to their bounds.
type Cleaner struct {
	bounds  Bounds
	metrics *infrastructure.PipelineMetrics
}

// NewCleaner creates a cleaner. A nil bounds map only normalises values.
func NewCleaner(bounds Bounds) *Cleaner {
	return &Cleaner{bounds: bounds}
}

// WithMetrics attaches run metrics to the cleaner
func (c *Cleaner) WithMetrics(m *infrastructure.PipelineMetrics) *Cleaner {
	c.metrics = m
	return c
}

// Clean returns a new frame with every bounded ratio clamped into its
// interval. Any value left non-finite becomes missing.
func (c *Cleaner) Clean(frame *Frame) (*Frame, CleanReport) {
	return c.CleanContext(context.Background(), frame)
}

// CleanContext is Clean with metrics recorded against ctx.
func (c *Cleaner) CleanContext(ctx context.Context, frame *Frame) (*Frame, CleanReport) {
	report := CleanReport{Clamped: make(map[string]int)}
	rows := frame.Rows()

	for i := range rows {
		for _, name := range RatioNames {
			v := rows[i].Ratios.Get(name)
			if !v.Valid {
				continue
			}
			out := v.Value
			if b, ok := c.bounds[name]; ok {
				out = b.Clamp(v.Value)
				if out != v.Value {
					report.Clamped[name]++
				}
			}
			// domain.Float maps any remaining infinity to missing
			rows[i].Ratios = rows[i].Ratios.With(name, domain.Float(out))
		}
	}

	for name, n := range report.Clamped {
		c.metrics.RecordClamped(ctx, name, n)
	}

	return NewFrame(rows), report
}
