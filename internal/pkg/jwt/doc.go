// Package jwt issues and verifies HS512 tokens for operator access to the
// audit endpoints, and carries verified claims through the request context.
package jwt
