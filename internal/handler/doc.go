// Package handler exposes the help service over HTTP.
//
// NewRouter mounts the JSON API on a chi router with request ids, panic
// recovery, CORS and a zap request logger that also feeds the Prometheus
// request metrics.
//
// # Routes
//
//	POST   /api/query                    classify a question and compose the answer
//	GET    /api/search?q=                nodes matching any key term of q
//	GET    /api/nodes?q=                 substring search on label or type
//	GET    /api/nodes/{id}               node with incident edges
//	GET    /api/nodes/{id}/related       neighborhood, ?depth= (default 2)
//	POST   /api/sessions                 open a browsing session
//	DELETE /api/sessions/{sid}           close it
//	GET    /api/sessions/{sid}/selection current selection
//	PUT    /api/sessions/{sid}/selection select {"node_id": ...}
//	DELETE /api/sessions/{sid}/selection clear the selection
//	GET    /api/graph/stats              counts by node and edge type
//	GET    /api/export/{json|yaml}       catalog download
//	GET    /health                       loaded components
//	GET    /metrics                      Prometheus exposition
//	GET    /events                       SSE stream of service events
//
// Errors are returned as {error, details}. Unknown nodes and sessions are
// 404, malformed input is 400, anything else is 500.
package handler
