package mcp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
)

func parseUUID(value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.UUID{}, errors.New("id is required")
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("invalid id: %w", err)
	}
	return id, nil
}

// parseRef accepts a persisted id or the client key of a pending row.
func parseRef(value string) (domain.Ref, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return domain.Ref{}, errors.New("ref is required")
	}
	return domain.ParseRef(value), nil
}

func parseOptionalTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp, use RFC3339: %w", err)
	}
	return parsed, nil
}
