// Package upload moves images from the inbox to the remote image host.
//
// Each inbox file passes through detected, uploading, and then succeeded or
// failed. The upload itself is delegated to an external helper command; the
// pipeline records the returned URL, publishes it to the clipboard, moves
// the file to the uploaded area, and optionally writes a URL sidecar. A file
// whose identity already has a record is not uploaded again: the stored URL
// is reused and the file is still moved.
//
// RunOnce processes the current inbox contents and returns. Watcher reacts
// to filesystem events until it is stopped, debouncing bursts of writes so
// partially-written files are not uploaded.
package upload
