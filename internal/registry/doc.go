// Package registry implements the Route Registry Service.
//
// The registry owns the route path → handler address cache. All resolution
// requests are processed one at a time by a single goroutine, so concurrent
// first requests for the same path observe exactly one handler being created.
// Handlers live until the registry is stopped; nothing is evicted at runtime.
package registry
