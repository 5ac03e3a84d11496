// Package trace names the span attribute keys the oracle client attaches to
// every outbound RPC span.
package trace

const (
	// AttrSelector names the cheat-code selector being invoked.
	AttrSelector = "oracle.selector"

	// AttrEndpoint names the oracle server URL the request was sent to.
	AttrEndpoint = "oracle.endpoint"

	// AttrPolling reports whether the invocation used polling mode.
	AttrPolling = "oracle.polling"

	// AttrAttempt is the 1-based poll attempt number (polling mode only).
	AttrAttempt = "oracle.attempt"

	// AttrJobID is the polling job identifier returned by the initial POST.
	AttrJobID = "oracle.job_id"
)
