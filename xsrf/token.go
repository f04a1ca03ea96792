package xsrf

import "net/http"

// HeaderExtractor reads the token from a request header. This is the default,
// using Config.HeaderName.
func HeaderExtractor(name string) TokenExtractor {
	return func(_ http.ResponseWriter, r *http.Request) string {
		return r.Header.Get(name)
	}
}

// QueryExtractor reads the token from a URL query parameter.
func QueryExtractor(name string) TokenExtractor {
	return func(_ http.ResponseWriter, r *http.Request) string {
		return r.URL.Query().Get(name)
	}
}

// FormExtractor reads the token from a form field (x-www-form-urlencoded or
// multipart).
//
// Params:
// - header: header checked first; "" disables it.
// - field: form field name.
//
// Returns:
// - a TokenExtractor preferring the header over the form field.
func FormExtractor(header, field string) TokenExtractor {
	return func(_ http.ResponseWriter, r *http.Request) string {
		if header != "" {
			if h := r.Header.Get(header); h != "" {
				return h
			}
		}
		_ = r.ParseForm()
		return r.Form.Get(field)
	}
}
