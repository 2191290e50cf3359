// Package watch tracks lectures through the processing pipeline by polling
// the service and pushing snapshots to subscribers.
//
// The Controller keeps one polling loop per lecture id no matter how many
// views subscribe to it. A loop runs while its lecture is non-terminal and
// at least one subscriber remains; it stops on the first terminal snapshot,
// which stays cached so late subscribers are served without further
// network traffic. Overlapping fetches for the same lecture (a manual
// refresh racing a scheduled tick) are collapsed into a single request, so
// snapshot emissions are strictly ordered per subscription.
//
// Background refresh failures are swallowed: the previous snapshot stays
// current and the next tick retries at the same fixed interval. Only
// foreground calls (the initial fetch on subscribe, explicit Refresh)
// surface errors to the caller.
package watch
