// Package test holds integration tests that apply SQL generated by the
// "sql" runtime to a real PostgreSQL server.
//
// Tests start a PostgreSQL container through testcontainers unless
// DATABASE_URL or DATABASE_HOST points at an existing server. Run with
// -short to skip them.
package test
