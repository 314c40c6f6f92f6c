// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts the router's parameter extraction and the body decoding rules:
endpoints accept JSON bodies as well as classic form posts, and both land in
the same input struct.
*/
package requestutil

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/cryptonotify/internal/platform/apperr"
	"github.com/taibuivan/cryptonotify/internal/platform/constants"
	"github.com/taibuivan/cryptonotify/internal/platform/ctxutil"
	"github.com/taibuivan/cryptonotify/internal/platform/sec"
	"github.com/taibuivan/cryptonotify/internal/platform/validate"
)

// maxBodyBytes bounds every decoded request body.
const maxBodyBytes = 1 << 20

// FormBinder is implemented by input structs that can be filled from form values.
type FormBinder interface {
	BindForm(values url.Values)
}

/*
DecodeJSON reads the request body and decodes it into the target structure.

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	decoder := json.NewDecoder(io.LimitReader(request.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Decode fills target from a JSON body or, for form content types, from the
parsed form values. An empty body leaves target untouched.

Parameters:
  - request: *http.Request
  - target: FormBinder (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON / validate.ErrInvalidForm on malformed bodies
*/
func Decode(request *http.Request, target FormBinder) error {
	mediaType, _, _ := mime.ParseMediaType(request.Header.Get(constants.HeaderContentType))

	switch mediaType {
	case constants.ContentTypeForm, constants.ContentTypeMultipart:
		request.Body = http.MaxBytesReader(nil, request.Body, maxBodyBytes)
		if err := request.ParseMultipartForm(maxBodyBytes); err != nil && err != http.ErrNotMultipart {
			return validate.ErrInvalidForm
		}
		target.BindForm(request.Form)
		return nil
	}

	if request.Body == nil || request.Body == http.NoBody || request.ContentLength == 0 {
		return nil
	}
	return DecodeJSON(request, target)
}

// Param retrieves a named URL parameter from the request.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// Principal returns the authenticated caller, or nil for anonymous requests.
func Principal(request *http.Request) *sec.Principal {
	return ctxutil.GetPrincipal(request.Context())
}

/*
RequiredPrincipal ensures the request is authenticated and returns the caller.

Returns:
  - *sec.Principal: The authenticated caller
  - error: apperr.Unauthorized if the request is anonymous
*/
func RequiredPrincipal(request *http.Request) (*sec.Principal, error) {
	principal := ctxutil.GetPrincipal(request.Context())
	if principal == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return principal, nil
}

// RequiredAccountID returns the account id of the authenticated caller.
func RequiredAccountID(request *http.Request) (string, error) {
	principal, err := RequiredPrincipal(request)
	if err != nil {
		return "", err
	}
	return principal.AccountID, nil
}
