// Package fswatch re-runs analysis when the file dismod is disassembling
// changes on disk, for the -watch flag. The backend is chosen at build
// time: inotify on Linux, kqueue on Darwin, mtime polling elsewhere.
// All three expose the same Watcher shape: New, Add, Run, Close.
package fswatch
