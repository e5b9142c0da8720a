package tokenizer

import (
	"go.uber.org/zap"

	"github.com/temirov/cdigest/internal/utils"
)

const (
	countFailedWarningMessage = "failed to count tokens, counting zero"
	counterLogField           = "counter"
)

// SafeCounter adapts a Counter to a never-failing count. Failures are logged
// as warnings and counted as zero tokens.
type SafeCounter struct {
	counter Counter
	logger  *zap.Logger
}

// NewSafeCounter wraps counter. A nil counter always counts zero.
func NewSafeCounter(counter Counter, logger *zap.Logger) *SafeCounter {
	return &SafeCounter{counter: counter, logger: utils.LoggerOrNop(logger)}
}

// CountTokens returns the token count of text, or zero when counting fails.
func (safeCounter *SafeCounter) CountTokens(text string) int {
	if safeCounter.counter == nil {
		return 0
	}
	tokens, countError := safeCounter.counter.CountString(text)
	if countError != nil {
		safeCounter.logger.Warn(countFailedWarningMessage, zap.String(counterLogField, safeCounter.counter.Name()), zap.Error(countError))
		return 0
	}
	return tokens
}
