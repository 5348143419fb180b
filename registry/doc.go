// Package registry implements the client-side activity store.
//
// A Registry mirrors the remote activities collection in memory, exposes a
// date-grouped view of it, and mediates every create/read/update/delete call
// to the backend through an API. Mutations are applied to the cache only
// after the backend confirms them; nothing is applied speculatively.
//
// Besides the cache, the Registry tracks the state a UI needs for feedback:
//   - LoadingInitial: the first load, or any single-record fetch, is in flight.
//   - Submitting: at least one create, update or delete is in flight.
//   - Target: the UI control that started the most recent pending delete.
//   - Pending: per-record in-flight status, so concurrent operations on
//     different records do not clobber each other.
//
// Every remote operation logs its failure and returns it, wrapped with the
// operation name. Callers that only poll state may ignore the error.
//
// The Registry is safe for concurrent use. Its lock is never held while a
// remote call is in flight.
//
// Example usage:
//
//	client, _ := activityclient.New("http://localhost:5000")
//	reg := registry.New(client, registry.WithLogger(logger))
//	if err := reg.LoadAll(ctx); err != nil {
//		// the cache is unchanged, LoadingInitial is now false
//	}
//	for _, group := range reg.ActivitiesByDate() {
//		fmt.Println(group.Date, len(group.Activities))
//	}
package registry
