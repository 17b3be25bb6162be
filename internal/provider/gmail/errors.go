package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/lu-zhengda/zeromail/internal/domain"
)

// classify attaches a domain error kind to a Gmail API failure.
func classify(err error, action string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", action, err)
	}
	if errors.Is(err, domain.ErrAuthRequired) {
		return fmt.Errorf("%s: %w", action, err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s: %w", domain.ErrNotFound, action, err)
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s: %w", domain.ErrAuthRequired, action, err)
		}
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrBackendUnavailable, action, err)
}
