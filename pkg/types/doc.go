// Package types defines the data structures shared by every jiek package:
// the ordered JSON Object used for entry-point declarations, export maps and
// manifests, and the FS interface that keeps filesystem access swappable
// between the real disk and in-memory test filesystems.
package types
