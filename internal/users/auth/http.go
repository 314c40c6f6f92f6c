// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/cryptonotify/internal/platform/apperr"
	"github.com/taibuivan/cryptonotify/internal/platform/constants"
	"github.com/taibuivan/cryptonotify/internal/platform/middleware"
	requestutil "github.com/taibuivan/cryptonotify/internal/platform/request"
	"github.com/taibuivan/cryptonotify/internal/platform/respond"
	"github.com/taibuivan/cryptonotify/internal/platform/sec"
	"github.com/taibuivan/cryptonotify/internal/platform/validate"
)

// minPasswordLength applies to every newly chosen password.
const minPasswordLength = 8

// # Definitions & Constructors

// Handler implements the /api/v1/auth endpoints.
type Handler struct {
	authService   *Service
	secureCookies bool
}

// NewHandler constructs a [Handler]. secureCookies marks the session cookie
// Secure and should be on whenever the API is served over TLS.
func NewHandler(service *Service, secureCookies bool) *Handler {
	return &Handler{authService: service, secureCookies: secureCookies}
}

// Routes returns a [chi.Router] with the authentication routes.
//
// Routes that require a caller rely on [middleware.Authenticate] having run
// further up the chain.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Get("/register", handler.registerInfo)
	router.Post("/register", handler.register)
	router.Get("/login", handler.loginInfo)
	router.Post("/login", handler.login)
	router.Get("/confirm/{token}", handler.confirm)
	router.Post("/reset", handler.requestReset)
	router.Post("/reset/{token}", handler.resetPassword)
	router.Get("/change-email/{token}", handler.changeEmail)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Get("/logout", handler.logout)
		r.Post("/confirm", handler.resendConfirmation)
		r.Post("/change-password", handler.changePassword)
		r.Post("/change-email", handler.requestEmailChange)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (input *registerRequest) BindForm(values url.Values) {
	input.Username = values.Get(FieldUsername)
	input.Email = values.Get(FieldEmail)
	input.Password = values.Get(FieldPassword)
	input.FirstName = values.Get(FieldFirstName)
	input.LastName = values.Get(FieldLastName)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (input *loginRequest) BindForm(values url.Values) {
	input.Username = values.Get(FieldUsername)
	input.Password = values.Get(FieldPassword)
}

type emailRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (input *emailRequest) BindForm(values url.Values) {
	input.Email = values.Get(FieldEmail)
	input.Password = values.Get(FieldPassword)
}

type passwordRequest struct {
	Password string `json:"password"`
}

func (input *passwordRequest) BindForm(values url.Values) {
	input.Password = values.Get(FieldPassword)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (input *changePasswordRequest) BindForm(values url.Values) {
	input.OldPassword = values.Get(FieldOldPassword)
	input.NewPassword = values.Get(FieldNewPassword)
}

// # Response Payloads

type loginResponse struct {
	Message   string   `json:"message"`
	Token     string   `json:"token"`
	TokenType string   `json:"token_type"`
	ExpiresIn int64    `json:"expires_in"`
	Account   *Account `json:"account"`
}

type registerResponse struct {
	Message string   `json:"message"`
	More    string   `json:"more"`
	Account *Account `json:"account,omitempty"`
}

// # Registration

/*
registerInfo describes how to register.

GET /api/v1/auth/register

Response:
  - 200: registerResponse: Usage hint
*/
func (handler *Handler) registerInfo(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, registerResponse{
		Message: "Welcome to Cryptonotify",
		More:    "To register make a POST with username, email and password to /api/v1/auth/register",
	})
}

/*
register creates a new account and mails the confirmation link.

POST /api/v1/auth/register

Request:
  - Body: registerRequest (JSON or form)

Response:
  - 201: registerResponse: Created account
  - 400: VALIDATION_ERROR: Missing or malformed fields
  - 409: CONFLICT: Username or email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.Decode(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		Username(FieldUsername, input.Username).
		MaxLen(FieldUsername, input.Username, 250).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		MaxLen(FieldEmail, input.Email, 250).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, minPasswordLength).
		MaxBytes(FieldPassword, input.Password, sec.MaxPasswordBytes).
		MaxLen(FieldFirstName, input.FirstName, 100).
		MaxLen(FieldLastName, input.LastName, 100)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.authService.Register(request.Context(), RegisterInput{
		Username:  input.Username,
		Email:     input.Email,
		Password:  input.Password,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, registerResponse{
		Message: "Registered successfully",
		More:    "Login using POST to /api/v1/auth/login",
		Account: account,
	})
}

// # Session Lifecycle

// loginInfo rejects GET logins: credentials are only accepted by POST.
func (handler *Handler) loginInfo(writer http.ResponseWriter, request *http.Request) {
	respond.Error(writer, request, apperr.CredentialsRequired())
}

/*
login verifies the credentials and opens a session.

POST /api/v1/auth/login

Description: Sets the session cookie and also returns a bearer token for
clients that do not keep cookies.

Request:
  - Body: loginRequest (JSON or form)

Response:
  - 200: loginResponse
  - 401: CREDENTIALS_REQUIRED, UNKNOWN_USER or INVALID_CREDENTIALS
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.Decode(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Login(request.Context(), LoginInput{
		Username: input.Username,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookie(writer, result.SessionID, handler.authService.settings.SessionTTL)

	respond.OK(writer, loginResponse{
		Message:   "You have logged in successfully",
		Token:     result.BearerToken,
		TokenType: "Bearer",
		ExpiresIn: int64(result.ExpiresIn / time.Second),
		Account:   result.Account,
	})
}

/*
logout ends the current session and clears the cookie.

POST|GET /api/v1/auth/logout

Response:
  - 200: Message
  - 401: UNAUTHORIZED: No authenticated caller
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if err := handler.authService.Logout(request.Context(), requestutil.Principal(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookie(writer, "", -1)
	respond.Message(writer, "You have logged out successfully")
}

func (handler *Handler) setSessionCookie(writer http.ResponseWriter, value string, ttl time.Duration) {
	cookie := &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    value,
		Path:     constants.SessionCookiePath,
		Secure:   handler.secureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	if ttl < 0 {
		cookie.MaxAge = -1
	} else {
		cookie.MaxAge = int(ttl / time.Second)
	}

	http.SetCookie(writer, cookie)
}

// # Email Confirmation

/*
confirm applies a confirmation link.

GET /api/v1/auth/confirm/{token}

Response:
  - 200: Message
  - 400: TOKEN_INVALID: details carry invalid, expired or malformed
  - 404: NOT_FOUND: The account no longer exists
*/
func (handler *Handler) confirm(writer http.ResponseWriter, request *http.Request) {
	if _, err := handler.authService.Confirm(request.Context(), requestutil.Param(request, FieldToken)); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, "You have confirmed your account. Thanks!")
}

// resendConfirmation mails a new confirmation link to the caller.
func (handler *Handler) resendConfirmation(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResendConfirmation(request.Context(), accountID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, "A new confirmation email has been sent")
}

// # Password Recovery

/*
requestReset mails a reset link.

POST /api/v1/auth/reset

Description: Answers the same whether or not the address is registered.

Request:
  - Body: emailRequest (only email is read)

Response:
  - 200: Message
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) requestReset(writer http.ResponseWriter, request *http.Request) {
	var input emailRequest
	if err := requestutil.Decode(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RequestPasswordReset(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, "An email with instructions to reset your password has been sent to you")
}

/*
resetPassword applies a reset link.

POST /api/v1/auth/reset/{token}

Request:
  - Body: passwordRequest

Response:
  - 200: Message
  - 400: VALIDATION_ERROR or TOKEN_INVALID
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input passwordRequest
	if err := requestutil.Decode(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, minPasswordLength).
		MaxBytes(FieldPassword, input.Password, sec.MaxPasswordBytes)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), requestutil.Param(request, FieldToken), input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, "Your password has been updated")
}

// changePassword replaces the caller's password.
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.Decode(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldOldPassword, input.OldPassword).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, minPasswordLength).
		MaxBytes(FieldNewPassword, input.NewPassword, sec.MaxPasswordBytes)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ChangePassword(request.Context(), accountID, input.OldPassword, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, "Your password has been updated")
}

// # Email Change

/*
requestEmailChange mails a change link to the new address.

POST /api/v1/auth/change-email

Request:
  - Body: emailRequest (new email and current password)

Response:
  - 200: Message
  - 401: INVALID_CREDENTIALS: Wrong password
  - 409: CONFLICT: Address already registered
*/
func (handler *Handler) requestEmailChange(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input emailRequest
	if err := requestutil.Decode(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RequestEmailChange(request.Context(), accountID, input.Email, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, "An email with instructions to confirm your new email address has been sent to you")
}

/*
changeEmail applies an email change link.

GET /api/v1/auth/change-email/{token}

Response:
  - 200: Message
  - 400: TOKEN_INVALID
  - 409: CONFLICT: Address claimed by another account meanwhile
*/
func (handler *Handler) changeEmail(writer http.ResponseWriter, request *http.Request) {
	if _, err := handler.authService.ChangeEmail(request.Context(), requestutil.Param(request, FieldToken)); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, "Your email address has been updated")
}
