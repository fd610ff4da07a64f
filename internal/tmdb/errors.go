// Reelatlas - Movie Recommendation and Catalog Service
// Copyright 2026 Reelatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelatlas/reelatlas

package tmdb

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the catalog has no match for the request. It is a
// terminal outcome for primary lookups, distinct from upstream failures.
var ErrNotFound = errors.New("tmdb: not found")

// UpstreamError indicates TMDB returned a non-success status or the request
// failed at the transport level. StatusCode is 0 for transport failures.
type UpstreamError struct {
	Operation  string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("tmdb %s returned status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("tmdb %s request failed: %v", e.Operation, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstreamError reports whether err is (or wraps) an UpstreamError.
func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
