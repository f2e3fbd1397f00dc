// Package async provides a bounded worker pool for background work that must
// not slow down request handling.
//
// Tasks run with panic recovery and a per-task timeout. Failures are logged,
// never returned to the submitter. Submit refuses work instead of blocking
// when the queue is full, so callers decide whether dropping is acceptable.
package async
