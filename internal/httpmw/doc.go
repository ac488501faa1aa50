// Package httpmw provides the HTTP middleware stages for the public site
// server.
//
// The stages are composed as one explicit ordered list in
// httpserver.NewHandler: client IP resolution, request ID, recovery,
// security/CSP/HSTS headers, canonical host redirect, MIME overrides,
// cache-control assignment, compression, access logging, and the chi router
// terminating in the static site handler.
//
// Each middleware is an independent function with a pass-through-or-terminate
// contract and can be tested in isolation. User-supplied data (query params,
// user agents) is kept out of logs.
package httpmw
