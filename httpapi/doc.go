// Package httpapi serves a Router over HTTP.
//
// Every response uses the same envelope:
//
//	{"success": true, "data": {...}, "meta": {...}, "request_id": "..."}
//
// Endpoints:
//
//	GET  /healthz
//	GET  /api/network
//	GET  /api/resolve?lat=..&lon=..
//	POST /api/routes            {"from": {...}, "to": {...}}
//	POST /api/routes/batch      {"requests": [{"from": ..., "to": ...}]}
//	POST /api/routes/matrix     {"from": {...}, "to": [{...}]}
//	POST /api/scores/samples    [{"latitude": .., "longitude": .., "score": ..}]
//	POST /api/scores/process
//	GET  /metrics               when enabled with WithMetricsHandler
package httpapi
