// Package validator checks request and usecase inputs against `validate`
// struct tags.
//
// Besides the stock go-playground rules it knows phone (E.164) and
// identifier (email or phone).
package validator
