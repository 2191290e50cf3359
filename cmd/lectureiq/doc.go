// Package main hosts the LectureIQ CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into HTTP
// calls against the lecture processing service: account management, audio
// uploads, lecture listing and inspection, status watching, and quiz
// submission. It centralizes configuration resolution, session restoration,
// and structured logging setup so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
