// Package watcher triggers quick library scans when files under the
// media root change, debouncing event bursts into a single run.
package watcher
