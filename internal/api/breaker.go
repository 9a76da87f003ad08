package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/wordsmith/internal/vocab"
)

// newBreaker opens after failures consecutive server or transport failures.
// Client errors, including the scheduler's 404, do not count.
func newBreaker(failures uint32, timeout time.Duration, logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "backend",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	var se *vocab.ServiceError
	if errors.As(err, &se) {
		return se.Status >= http.StatusBadRequest && se.Status < http.StatusInternalServerError
	}
	return false
}
