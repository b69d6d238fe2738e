// Package health serves liveness and readiness probes.
//
// Readiness runs every registered [CheckFunc] concurrently and reports 503
// if any fails. Responses are plain text unless JSON is requested through
// the Accept header or ?format=json.
package health
