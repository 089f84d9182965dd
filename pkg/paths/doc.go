// Package paths provides centralized path validation and resolution for
// tidy. Every user-supplied path passes through a Resolver before the
// engine acts on it: validation catches malformed input, resolution
// canonicalizes the path, and an optional allowed root confines all
// operations to one directory tree.
package paths
