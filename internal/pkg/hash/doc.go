// Package hash derives and verifies salted digests of one-time codes.
//
// A session stores only the digest and its salt. Verification recomputes the
// digest from the submitted code and compares in constant time. Two
// algorithms are available behind the Digester interface: a keyed SHA-256
// (default) and Argon2id.
package hash
