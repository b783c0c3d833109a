// Package plugins holds the analysis plugins.
//
// A plugin reads from the session's image and writes only through a
// ui.Output, so the same plugin feeds every backend. Each plugin ships a
// markdown description under descriptions/ shown by `memscope describe`.
package plugins
