package dice

import "go.uber.org/zap"

// floatResolution is the number of steps Float divides its interval into.
const floatResolution = 1_000_000

// Roller wraps a Source and logger to provide logged rolling helpers.
// Every roll is logged at debug level with its label and outcome.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src must be non-nil. A nil logger is replaced by a no-op logger.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roller{src: src, logger: logger}
}

// Percent returns a uniform integer in [1, 100].
//
// Postcondition: 1 <= result <= 100.
func (r *Roller) Percent(label string) int {
	v := r.src.Intn(100) + 1
	r.logger.Debug("percent roll", zap.String("label", label), zap.Int("result", v))
	return v
}

// Chance rolls Percent and reports whether it landed at or under pct.
func (r *Roller) Chance(label string, pct int) bool {
	v := r.src.Intn(100) + 1
	hit := v <= pct
	r.logger.Debug("chance roll",
		zap.String("label", label),
		zap.Int("result", v),
		zap.Int("threshold", pct),
		zap.Bool("hit", hit),
	)
	return hit
}

// Between returns a uniform integer in [lo, hi].
//
// Precondition: lo <= hi.
// Postcondition: lo <= result <= hi.
func (r *Roller) Between(label string, lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	v := lo + r.src.Intn(hi-lo+1)
	r.logger.Debug("range roll",
		zap.String("label", label),
		zap.Int("min", lo),
		zap.Int("max", hi),
		zap.Int("result", v),
	)
	return v
}

// InRange rolls Between over rg.
func (r *Roller) InRange(label string, rg Range) int {
	return r.Between(label, rg.Min, rg.Max)
}

// Float returns a value in [lo, hi] quantized to one millionth of the interval.
func (r *Roller) Float(label string, lo, hi float64) float64 {
	step := r.src.Intn(floatResolution + 1)
	v := lo + (hi-lo)*float64(step)/floatResolution
	r.logger.Debug("float roll",
		zap.String("label", label),
		zap.Float64("min", lo),
		zap.Float64("max", hi),
		zap.Float64("result", v),
	)
	return v
}

// Pick returns a uniform index in [0, n).
//
// Precondition: n > 0.
func (r *Roller) Pick(label string, n int) int {
	v := r.src.Intn(n)
	r.logger.Debug("pick roll", zap.String("label", label), zap.Int("options", n), zap.Int("index", v))
	return v
}
