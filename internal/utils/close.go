package utils

import (
	"io"

	"github.com/MrSnakeDoc/bikeyard/internal/logger"
)

// maxDrainBytes caps how much of an unread body is discarded before close,
// so the connection can go back to the pool.
const maxDrainBytes = 64 << 10

// CloseLogged closes c and logs any error under what.
func CloseLogged(c io.Closer, log logger.Logger, what string) {
	if err := c.Close(); err != nil {
		log.Warn("failed to close", logger.String("resource", what), logger.Error(err))
	}
}

// DrainAndClose discards what is left of an HTTP response body, then closes it.
func DrainAndClose(body io.ReadCloser) {
	_, _ = io.CopyN(io.Discard, body, maxDrainBytes)
	_ = body.Close()
}
