// Package eval submits canvas exports to an external kolam evaluator
// service and reports its verdict.
//
// The evaluator is a remote HTTP endpoint that accepts a PNG upload as
// multipart form data and returns an opaque JSON verdict. The client
// tracks a coarse submission status (idle, loading, success, error) so
// callers can disable their submit control while a request is in flight.
// Only one submission may be in flight at a time; concurrent submits are
// rejected rather than queued.
//
// Submissions are never retried automatically. A failed evaluation leaves
// the client in StatusError and the caller decides whether to submit
// again.
package eval
