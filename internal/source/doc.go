// Package source provides the two interchangeable post sources: a local
// source that overlays draft edits on a read-only content root, and an API
// source that talks to a running notes API. Service picks one at
// construction and publishes change events after every mutation.
package source
