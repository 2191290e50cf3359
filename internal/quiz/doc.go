// Package quiz models an in-progress quiz attempt on the client.
//
// An Attempt is ephemeral: it maps question indexes to selected options and
// is never persisted. It gates submission so an incomplete or out-of-range
// answer set is rejected before any network call is made.
package quiz
