// Package cache provides a bounded LRU cache with explicit eviction.
//
// The renderer keeps per-camera state (light blend-style targets, layer
// batch scratch space) in a Cache keyed by camera ID. When more cameras are
// live than the capacity allows, the least recently rendered camera's state
// is evicted and handed to the OnEvict callback so it can release what it
// owns, instead of waiting for the garbage collector to notice the camera
// is gone.
package cache
