// Package api hosts the HTTP server, middleware, and handlers. Routes:
//   - GET /healthz for liveness probes.
//   - GET /metrics for Prometheus scraping.
//   - GET /v1/services lists supported services.
//   - GET /v1/resolve?url= returns the image location as JSON.
//   - GET /v1/image?url= redirects to the image.
//   - GET /bypass?url= and GET /supportedServices answer in the older
//     {success, message, ...} envelope, always with status 200.
package api
