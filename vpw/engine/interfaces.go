package engine

// BucketLoader fetches bucket contents on demand. Requests are
// fire-and-forget: results surface asynchronously by writing into the shared
// bucket store, which the engine observes through its normal rebuild path.
// Implementations must be safe to call multiple times for the same id
// (no-op if already loaded or in flight); the engine additionally avoids
// re-issuing a request for an entry that was already visible in the previous
// frame.
type BucketLoader interface {
	RequestBucketLoad(bucketID string)
}

// PageSource supplies additional pages for flat-list mode. RequestMore is
// called at most once per outstanding page, when the scroll position nears
// the end of the filtered results and HasMore reports true.
type PageSource interface {
	HasMore() bool
	RequestMore()
}
