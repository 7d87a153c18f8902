// Package workers calculates worker pool sizes based on available CPU,
// used to bound the metadata probe pool during full library scans.
package workers
