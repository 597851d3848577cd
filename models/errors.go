package models

import (
	"net/http"
	"strings"
)

// ResponseError is a business-rule violation carrying its own HTTP status.
type ResponseError struct {
	Status  int
	Message string
}

func (e *ResponseError) Error() string {
	return e.Message
}

func NewResponseError(status int, message string) *ResponseError {
	return &ResponseError{Status: status, Message: message}
}

var (
	ErrInvalidCredentials = NewResponseError(http.StatusBadRequest, "Username/Password is incorrect")
	ErrUnauthenticated    = NewResponseError(http.StatusUnauthorized, "Unauthorized")
	ErrInvalidToken       = NewResponseError(http.StatusUnauthorized, "Invalid token")
	ErrForbidden          = NewResponseError(http.StatusForbidden, "Forbidden")

	ErrDuplicateEmail     = NewResponseError(http.StatusBadRequest, "Email is already exist")
	ErrMemberNotFound     = NewResponseError(http.StatusBadRequest, "Member Id not found")
	ErrNewsletterNotFound = NewResponseError(http.StatusBadRequest, "Newsletter not found")

	ErrInvalidStatusTransition = NewResponseError(http.StatusBadRequest, "Newsletter status cannot be changed to the requested value")
	ErrInvalidNewsletterType   = NewResponseError(http.StatusBadRequest, "Newsletter type is not supported")

	ErrAdminExists   = NewResponseError(http.StatusBadRequest, "Admin already exists")
	ErrInvalidRole   = NewResponseError(http.StatusBadRequest, "Role is not supported")
	ErrAdminNotFound = NewResponseError(http.StatusBadRequest, "Admin not found")
	ErrSelfDelete    = NewResponseError(http.StatusBadRequest, "You cannot delete your own account")
	ErrWrongPassword = NewResponseError(http.StatusBadRequest, "Old password is incorrect")

	ErrInvalidImage = NewResponseError(http.StatusBadRequest, "Only .png, .jpg and .jpeg format allowed")
	ErrFileTooLarge = NewResponseError(http.StatusBadRequest, "File is too large")
	ErrFileRequired = NewResponseError(http.StatusBadRequest, "Photo is required")

	ErrTooManyRequests = NewResponseError(http.StatusTooManyRequests, "Too many requests, please try again later")
)

// ValidationError reports a malformed request.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Issues, "; ")
}

func NewValidationError(issues ...string) *ValidationError {
	return &ValidationError{Issues: issues}
}
