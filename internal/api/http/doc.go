// Package http exposes the navigation core over a small read-only JSON API:
//
//	GET /api/fs/children?path=&text=&startDate=&endDate=
//	GET /api/fs/default-directory
//	GET /api/fs/find?path=&text=&depth=
//	GET /health
//
// Dates use the YYYY-MM-DD layout. Access-denied failures map to 403 with
// the policy's reason, malformed queries to 400, other listing failures
// to 500.
package http
