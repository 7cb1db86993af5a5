// Package services talks to remote HTTP APIs.
//
// [RESTClient] reads the playlist snapshot table through Supabase's PostgREST endpoint,
// authenticating with the project API key sent as both the apikey and bearer headers.
// Requests are throttled with a token-bucket [rate.Limiter].
//
// Errors wrap sentinels from the shared package:
//   - [shared.ErrMissingCredentials] : project URL or API key not configured
//   - [shared.ErrAPIRequest] : non-2xx response
package services
