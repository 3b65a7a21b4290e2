// Package audit records one structured entry per request through the
// gateway, including denial and error paths.
//
// Writes are asynchronous: the request path enqueues onto a bounded channel
// drained by a background worker, and a full queue drops records rather
// than blocking. Storage failures are logged locally and never alter the
// client response; auditing is strictly best-effort by contract.
//
// Streaming response bodies are recorded as a literal marker since they
// cannot be captured without breaking passthrough.
//
// Backends live in the storage sub-package; the retention sub-package
// prunes old rows on a cron schedule.
package audit
