// Package client talks to the user service over gRPC.
//
// GRPCClient manages the connection, attaches the current bearer token to
// every call through an interceptor and maps gRPC status errors onto the
// sentinels in errors.go. Server-side rejections with a known code surface
// as *APIError so callers can show the server's message and field errors.
package client
