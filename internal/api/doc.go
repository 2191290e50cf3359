// Package api speaks the lecture processing service's HTTP interface and
// ships the typed client used by the CLI and the watch controller.
//
// The Client attaches the current bearer credential to every outgoing
// request, reading it fresh from the session layer each time, and applies a
// fixed request timeout. Any response signaling an invalid credential fires
// the OnUnauthorized hook before the call returns, so a revoked session is
// torn down globally no matter which operation tripped it.
//
// Resource operations are single request/response pairs with no retry
// logic; retry policy belongs to callers such as the polling controller.
// Errors are classified against the package sentinels so callers can branch
// on validation, auth, not-found, and transient failures without inspecting
// status codes.
package api
