package apiv1

import (
	"net/http"
	"net/http/httptest"
)

func newRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}
