// Package types defines the core data model shared by the renderer registry,
// the codecs and the output backends: type resolution chains, table columns,
// display cells and the safe interchange value shape.
package types
