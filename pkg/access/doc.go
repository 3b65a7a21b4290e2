// Package access implements admission policy for Beacon: a banned-IP deny
// set and an origin allow-list.
//
// The ban check is an exact-match membership test on the client key and
// always runs first. The origin check matches allow-listed substrings
// against the Origin header, falling back to Referer; an empty allow-list
// disables it entirely (open policy). Both modes are configuration, not
// code.
//
// Rules may be loaded inline from the main configuration or from a separate
// YAML rules file watched with fsnotify, so operators can ban an IP without
// a restart.
package access
