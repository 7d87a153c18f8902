// Package folders derives the virtual folder tree from the set of
// catalogued folder paths. Folder paths are "/"-joined path strings; no
// folder rows exist in the catalog, the hierarchy is computed.
package folders
