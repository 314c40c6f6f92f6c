// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/cryptonotify/internal/platform/middleware"
	requestutil "github.com/taibuivan/cryptonotify/internal/platform/request"
	"github.com/taibuivan/cryptonotify/internal/platform/respond"
	"github.com/taibuivan/cryptonotify/internal/platform/validate"
	"github.com/taibuivan/cryptonotify/pkg/pagination"
)

// Handler implements the HTTP layer for profile and account administration.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with the account domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Own profile
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.getMe)
		r.Patch("/me", handler.updateMe)
	})

	// Administration
	router.Route("/admin/accounts", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Get("/", handler.listAccounts)
		r.Delete("/{id}", handler.deleteAccount)
	})

	return router
}

// # Profile Endpoints

/*
GET /api/v1/me.

Description: Retrieves the full private view of the authenticated account.

Response:
  - 200: Account
  - 401: UNAUTHORIZED: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.GetProfile(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

type updateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

func (input *updateProfileRequest) BindForm(values url.Values) {
	if values.Has(FieldFirstName) {
		value := values.Get(FieldFirstName)
		input.FirstName = &value
	}
	if values.Has(FieldLastName) {
		value := values.Get(FieldLastName)
		input.LastName = &value
	}
}

/*
PATCH /api/v1/me.

Request:
  - Body: updateProfileRequest (JSON or form, absent fields unchanged)

Response:
  - 200: Account
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.Decode(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if input.FirstName != nil {
		validator.MaxLen(FieldFirstName, *input.FirstName, 100)
	}
	if input.LastName != nil {
		validator.MaxLen(FieldLastName, *input.LastName, 100)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.UpdateProfile(request.Context(), accountID, UpdateProfileInput{
		FirstName: input.FirstName,
		LastName:  input.LastName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

// # Admin Endpoints

/*
GET /api/v1/admin/accounts.

Request:
  - Query: page, limit

Response:
  - 200: Paginated list of accounts
  - 403: FORBIDDEN: Caller is not an administrator
*/
func (handler *Handler) listAccounts(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	accounts, total, err := handler.accountService.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, accounts, params.Meta(total))
}

/*
DELETE /api/v1/admin/accounts/{id}.

Response:
  - 204: Deleted
  - 404: NOT_FOUND
  - 409: CONFLICT: Administrators cannot delete themselves
*/
func (handler *Handler) deleteAccount(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.Delete(request.Context(), actorID, requestutil.Param(request, FieldID)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
