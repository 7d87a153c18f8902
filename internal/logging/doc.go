// Package logging provides leveled logging for the video library server.
//
// Background components obtain a component-tagged Logger via
// ForComponent; main and the HTTP layer use the untagged package-level
// functions. The log level is controlled by the LOG_LEVEL environment
// variable (debug, info, warn, error) and defaults to info. Setting
// DEBUG=true forces debug output.
package logging
