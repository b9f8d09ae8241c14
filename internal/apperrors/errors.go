package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrFetchFailed indicates a ledger fetch failed. Fetch errors are fatal to a
// reconciliation run: no partial report is ever built from an incomplete fetch.
var ErrFetchFailed = errors.New("ledger fetch failed")

// ErrIncompleteFetch indicates a fetcher could not paginate to completion.
// Treated exactly like ErrFetchFailed by callers; kept distinct so the cause
// is visible in logs.
var ErrIncompleteFetch = errors.New("ledger fetch incomplete")

// ErrConcurrentRun indicates a reconciliation run was rejected because another
// run is already active. Rejected immediately, never queued.
var ErrConcurrentRun = errors.New("reconciliation run already in progress")

// ErrRateLimited indicates the external processor signalled a rate limit.
// Retryable with backoff; exhausting retries demotes the item to a recorded
// failure rather than blocking the whole batch.
var ErrRateLimited = errors.New("external processor rate limited")
