package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit rejects requests beyond ratePerSec (with the given burst) with 429.
// A non-positive rate disables limiting.
func RateLimit(ratePerSec float64, burst int) gin.HandlerFunc {
	if ratePerSec <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(ratePerSec), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			ingestRejected.WithLabelValues("rate_limited").Inc()
			abortV2(c, http.StatusTooManyRequests, CodeTooManyReqs, "Too many requests")
			return
		}
		c.Next()
	}
}
