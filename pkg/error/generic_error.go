// Package error defines typed errors that carry an HTTP status and a
// stable machine-readable code for the REST layer.
package error

// GenericError is implemented by every typed error in this package.
type GenericError interface {
	Error() string
	ErrCode() string
	StatusCode() int
}
