package errx

import "net/http"

// WrapStore maps a record/document store or transport failure to the unified Error type.
func WrapStore(err error) *Error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, StoreErrorMessage)
}
