// Package backend defines the port a concrete messaging implementation
// must satisfy to host wirebus entities. The lifecycle layer resolves the
// active backend once per process and passes endpoints through this
// interface; it never assumes anything about how a backend achieves
// transport or discovery. Multiple backends may be linked into one
// process, which is why every entity carries the implementation
// identifier of the backend that created it.
package backend
