package helper

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"agency-cms/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const (
	textSuccess = "Success"
	textError   = "Error"

	errValidation     = "ValidationError"
	errResponse       = "ResponseError"
	errAuthentication = "AuthenticationError"
	errAuthorization  = "AuthorizationError"
	errInternal       = "InternalError"

	internalMessage = "Internal server error"
)

// ResponseHelper ...
type ResponseHelper struct {
	C         *gin.Context
	Status    string
	Code      int
	Message   interface{}
	Data      interface{}
	ErrorName string
}

// HTTPHelper ...
type HTTPHelper struct {
	Validate   *validator.Validate
	Translator ut.Translator
}

// NewHTTPHelper wires english translations and the custom tags into gin's validator.
// adminDomain restricts the admin_email tag; empty accepts any domain.
func NewHTTPHelper(adminDomain string) (*HTTPHelper, error) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil, errors.New("unexpected gin validator engine")
	}

	locale := en.New()
	trans, _ := ut.New(locale, locale).GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, fmt.Errorf("register translations: %w", err)
	}

	v.RegisterTagNameFunc(fieldName)

	if err := v.RegisterValidation("admin_email", adminEmail(adminDomain)); err != nil {
		return nil, err
	}
	msg := "{0} must be a company email address"
	if adminDomain != "" {
		msg = "{0} must end with @" + adminDomain
	}
	err := v.RegisterTranslation("admin_email", trans,
		func(t ut.Translator) error { return t.Add("admin_email", msg, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T("admin_email", fe.Field())
			return s
		})
	if err != nil {
		return nil, err
	}

	return &HTTPHelper{Validate: v, Translator: trans}, nil
}

// fieldName reports fields by their json or form name.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

func adminEmail(domain string) validator.Func {
	suffix := "@" + strings.ToLower(domain)
	return func(fl validator.FieldLevel) bool {
		if domain == "" {
			return true
		}
		return strings.HasSuffix(strings.ToLower(fl.Field().String()), suffix)
	}
}

// ValidationError converts a binding error into a list of readable issues.
func (u *HTTPHelper) ValidationError(err error) *models.ValidationError {
	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	var numErr *strconv.NumError

	switch {
	case errors.As(err, &verrs):
		issues := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			issues = append(issues, fe.Translate(u.Translator))
		}
		return models.NewValidationError(issues...)
	case errors.As(err, &typeErr):
		return models.NewValidationError(fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type))
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return models.NewValidationError("Invalid request body")
	case errors.As(err, &numErr):
		return models.NewValidationError(fmt.Sprintf("%q is not a valid number", numErr.Num))
	default:
		return models.NewValidationError(err.Error())
	}
}

// GetStatusCode maps err onto the HTTP status, error name and message sent to consumers.
func (u *HTTPHelper) GetStatusCode(err error) (int, string, interface{}) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, errValidation, verr.Issues
	}

	var rerr *models.ResponseError
	if errors.As(err, &rerr) {
		switch rerr.Status {
		case http.StatusUnauthorized:
			return rerr.Status, errAuthentication, rerr.Message
		case http.StatusForbidden:
			return rerr.Status, errAuthorization, rerr.Message
		default:
			return rerr.Status, errResponse, rerr.Message
		}
	}

	return http.StatusInternalServerError, errInternal, internalMessage
}

// SetResponse ...
// Set response data.
func (u *HTTPHelper) SetResponse(c *gin.Context, status string, code int, message interface{}, data interface{}, errName string) ResponseHelper {
	return ResponseHelper{c, status, code, message, data, errName}
}

// SendError ...
// Send the error envelope for err. When exposeInternal is set unhandled
// errors keep their raw message.
func (u *HTTPHelper) SendError(c *gin.Context, err error, exposeInternal bool) {
	code, name, message := u.GetStatusCode(err)
	if code == http.StatusInternalServerError && exposeInternal {
		message = err.Error()
	}
	u.SendResponse(u.SetResponse(c, textError, code, message, nil, name))
}

// SendSuccess ...
// Send success response to consumers.
func (u *HTTPHelper) SendSuccess(c *gin.Context, message string, data interface{}) {
	u.SendResponse(u.SetResponse(c, textSuccess, http.StatusOK, message, data, ""))
}

// SendResponse ...
// Send response
func (u *HTTPHelper) SendResponse(res ResponseHelper) {
	if s, ok := res.Message.(string); ok && s == "" {
		res.Message = strings.ToLower(res.Status)
	}

	body := gin.H{
		"status":  res.Status,
		"code":    res.Code,
		"message": res.Message,
	}
	if res.Data != nil {
		body["data"] = res.Data
	}
	if res.ErrorName != "" {
		body["error"] = res.ErrorName
	}
	res.C.JSON(res.Code, body)
}
