// Package http provides the optional HTTP adapter for the inline editor.
//
// Routes mount under a configurable base path (default /webedit):
//   - POST {base}/save: saves a posted editor form
//   - GET {base}/state: reports the save command state
//   - POST {base}/servercall: normalises field values for the server call pipeline
//
// Host applications can register handlers on their own mux/router as needed.
package http
