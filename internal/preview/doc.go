// Package preview serves a built site over HTTP and rebuilds it when sources change.
//
// The server watches the content and static trees plus the page template with fsnotify,
// coalesces bursts of events through a debouncer and runs one build at a time. A failed
// rebuild is logged and the last good output keeps being served. Browsers are told to
// reload over a server-sent events stream whose script is injected into every HTML page.
package preview
