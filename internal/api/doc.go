// Package api provides the IG REST API client used to export trade history.
//
// REST endpoints:
//   - Production: https://api.ig.com/gateway/deal
//   - Demo: https://demo-api.ig.com/gateway/deal
//
// Endpoints used:
//   - POST /session (login, Version 2)
//   - GET /history/transactions (paginated, Version 2)
//
// Requests are sent strictly sequentially and are never retried.
package api
