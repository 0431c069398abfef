// Package validation validates request payloads with go-playground/validator.
//
// Field names come from json tags, and failures are collected into Errors, a
// field-to-messages map that handlers return as the body of a 400 response. Besides
// the built-in tags, "username" accepts letters, digits and @ . + - _ only.
package validation
