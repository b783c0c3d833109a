// Package testutil provides shared fixtures for memscope tests.
//
// Key components:
//   - Snapshot: a small Windows image snapshot with three processes
//   - LoadImage: parses Snapshot into an image.Image
//   - NewSession: a session over Snapshot writing to in-memory backends
//
// All test data is defined inline so every test is isolated.
package testutil
