// Package backend selects the allocator that backs render graph resources.
//
// Allocators are registered by name and selected by priority. The software
// allocator registers itself on import; the native allocator registers
// once a HAL device is available:
//
//	native.Register(device)
//	a := backend.Default() // native when registered, software otherwise
//
// Use Get to request a specific allocator by name:
//
//	a := backend.Get(backend.Software)
package backend
