// Package main hosts the harnessutil CLI entrypoint and command graph.
//
// Each command is a thin wrapper over an internal package: notify posts to the
// chat webhook, tail prints the last lines of a log, reset empties files, and
// config scaffolds or inspects the configuration. Configuration resolution and
// logger setup live in commandContext so commands only deal with flags and
// output.
package main
