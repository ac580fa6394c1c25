// Package registry tracks the live communication entities owned by this
// process. Each entry records the entity's kind, topic, owning node, and
// the implementation identifier of the backend that created it. The
// registry is the single source of truth for "is this handle currently
// owned by this process": insert on successful creation, remove on
// successful destruction, and removal of an absent handle is an error so
// double-destroy is never silent.
package registry
