// Package httpserver exposes loglet's HTTP surface.
//
// Routes:
//
//	GET  /            front page
//	POST /new         create a log, redirect to /{id}
//	GET  /{id}        HTML view (optional ?tzoffset=hours for display)
//	POST /{id}        append a message (form or JSON body)
//	GET  /{id}/txt    plain-text dump, "<time> <level> <message>" lines
//	GET  /{id}/json   JSON dump
//	GET  /{id}/feed   Atom feed
//	POST /{id}/meta   update title / notification handle
//
// The txt and json dumps accept an optional ?filter= CEL expression over
// {level, message, time, id}. Unknown log identifiers render the 404 page.
package httpserver
