// Package server provides HTTP routing, middleware, and the playlist handlers of the cpx API.
//
// # Router Infrastructure
//
// [Router] wraps a chi mux. Global [Middleware] is passed to [NewRouter] so it wraps every route.
// Custom handlers implement the [Handler] interface and are mounted under the configured prefix with
// their own middleware stack (authentication, rate limiting).
//
// # Authentication
//
// Authentication itself happens upstream of the handlers. [Authenticator] verifies a bearer JWT,
// and stores the subject claim as the user id in the request context. Handlers read it back
// with [UserFromContext] and scope every store call to that user.
//
// # Responses
//
// Every response is a JSON envelope: [Success] carries {status, message, data} and
// [Failure] carries {status, message, data?}. Store errors are logged and reported as
// a generic 500 message so internal details never reach the client.
//
// # Routes
//
//	GET    /healthz                       (public, [HealthHandler])
//	POST   {prefix}/playlists
//	GET    {prefix}/playlists
//	GET    {prefix}/playlists/{playlistId}
//	DELETE {prefix}/playlists/{playlistId}
//	POST   {prefix}/playlists/{playlistId}/problems
//	DELETE {prefix}/playlists/{playlistId}/problems
package server
