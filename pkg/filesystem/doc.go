// Package filesystem provides filesystem implementations for jiek.
//
// Both the real disk and the in-memory test filesystem go through afero so
// that globbing (doublestar) behaves identically in production and tests.
package filesystem
