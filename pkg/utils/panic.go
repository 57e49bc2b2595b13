package utils

// PanicIfNeeded panics with the given error so the Recovery middleware
// can map it to an HTTP response.
func PanicIfNeeded(err error) {
	if err != nil {
		panic(err)
	}
}
