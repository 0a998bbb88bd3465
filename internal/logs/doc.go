// Package logs provides file tailing helpers for harness diagnostics.
//
// ReadLastLines streams a file once and keeps only the newest N lines in a
// fixed-size Window, so memory stays bounded regardless of file size. Blank
// and whitespace-only lines are dropped after the window is filled. Tail adds
// byte offsets and a follow mode that waits on filesystem events, which the
// CLI uses for `harnessutil tail --follow`.
package logs
