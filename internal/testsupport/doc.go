// Package testsupport provides shared helpers for package tests: an
// in-memory fake of the lecture processing service and config builders
// seeded with temp directories.
//
// The fake service implements the full HTTP surface the client speaks
// (auth, upload, list, detail, status, delete, quiz grading) with scripted
// processing progress, so polling behaviour can be exercised
// deterministically without sleeping through real pipelines.
package testsupport
