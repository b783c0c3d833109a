// Package image loads memory image snapshots.
//
// A snapshot is a YAML description of the structures an analysis framework
// has already reconstructed from a memory image: the profile's type
// ancestry, kernel modules with their exports, structs keyed by the offset
// they were read from, and per-process address spaces.
//
// Struct fields use small tagged mappings for typed values:
//
//	UniqueProcessId: 512
//	ImageFileName: lsass.exe
//	ObjectTable: null                        # unreadable
//	Peb: {ptr: 0x7fffffdf000, type: _PEB}
//	CreateTime: {win_time: 1336466490}
//	StartAddress: {addr: 0x77c70100}
//	Cid: {struct: _CLIENT_ID, fields: {UniqueProcess: 512, UniqueThread: 520}}
//
// Any other mapping is kept as a plain dict.
package image
