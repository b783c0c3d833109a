// Package filesystem is the file access layer used to read image snapshots
// and write process dumps. Tests swap in an in-memory filesystem.
package filesystem
