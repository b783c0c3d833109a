// Package objects holds the typed values reconstructed from a memory image:
// generic structs read from the image, scalar wrappers such as kuid_t, and
// the NoneObject marker standing in for anything that could not be read.
//
// Every value here implements types.Object so the renderer registry can walk
// its ancestry. Plain Go values (integers, strings, maps) are mapped to a
// chain by ChainOf.
package objects
