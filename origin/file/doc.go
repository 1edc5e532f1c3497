// Package file provides Origins and Destinations backed by files on the local filesystem.
// Origins read a file in its entirety; Glob expands a pattern into one Origin per file.
package file
