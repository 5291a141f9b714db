// Package opener hands authorization URLs to the platform.
//
// [Browser] shells out to the operating system URL handler. [Func] adapts a
// closure, which is how tests and embedding applications with their own
// webview plug in.
package opener
