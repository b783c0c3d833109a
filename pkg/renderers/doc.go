// Package renderers holds the built-in renderer bindings: cell renderers for
// the text family and codecs for the structured family.
//
// RegisterBuiltins declares every backend with the families it answers to
// and binds a renderer for BaseObject in each family, so every value has a
// renderer. Plugins may register more specific bindings afterwards; the last
// registration for a (type, backend) pair wins.
package renderers
