// Package registry holds the lookup tables of memscope.
//
// Registry[T] is a generic, thread-safe catalogue of named items used for
// plugins and output backends. Renderers is the renderer binding table: it
// maps a (semantic type, backend) pair to the renderer that knows how to
// display or encode values of that type, and resolves a value's type chain
// against an active backend to the most specific binding available.
//
// Both are explicit objects built once at session start. Nothing in this
// package is global.
package registry
