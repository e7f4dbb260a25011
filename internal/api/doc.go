// Package api exposes the template importer over HTTP.
//
// Routes:
//
//	GET  /health                      dependency health
//	GET  /api/conversion/status       Beefree connectivity check
//	POST /api/templates/import        import one HTML document
//	POST /api/templates/import/batch  import many documents
//	GET  /api/templates/{id}          fetch an imported template
//	POST /api/templates/preview       normalize and render merge tags
//
// Every /api route requires the X-Organization-ID header; X-User-ID is
// recorded as the template author when present.
package api
