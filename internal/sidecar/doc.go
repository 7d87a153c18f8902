// Package sidecar reconciles per-video NFO metadata files with the
// catalog.
//
// Every record carries a provenance tag that says who owns its
// descriptive metadata: nobody yet ("none"), an external tool that wrote
// the NFO before this app saw it ("external"), or this app itself
// ("app"). The reconciler enforces two invariants on top of that tag:
//
//   - a user's explicit edit is never reverted by a later scan, and
//   - an externally-authored sidecar file is never rewritten.
//
// The merge and edit rules are pure functions (Merge, ApplyEdit) so they
// can be tested without a store or a filesystem; Reconciler wires them to
// both. Duration probing via ffprobe lives here too because it is part of
// the same best-effort metadata refresh.
package sidecar
