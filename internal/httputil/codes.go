package httputil

// Machine-readable error codes returned alongside human messages so API
// clients can branch without string matching.
const (
	CodeInvalidRequestBody  = "invalid_request_body"
	CodeInvalidCredentials  = "invalid_credentials"
	CodeAccountDeactivated  = "account_deactivated"
	CodeDuplicateAccount    = "duplicate_account"
	CodeUserNotFound        = "user_not_found"
	CodeInvalidToken        = "invalid_token"
	CodeTokenExpired        = "token_expired"
	CodeMissingAuth         = "missing_auth"
	CodeInvalidAuthHeader   = "invalid_auth_header"
	CodeForbidden           = "forbidden"
	CodeNameRequired        = "name_required"
	CodeEmailRequired       = "email_required"
	CodeInvalidEmailFormat  = "invalid_email_format"
	CodePasswordRequired    = "password_required"
	CodePasswordTooWeak     = "password_too_weak"
	CodeNotFound            = "not_found"
	CodeInvalidID           = "invalid_id"
	CodeTooManyRequests     = "too_many_requests"
	CodeCooldownActive      = "cooldown_active"
	CodeInternalError       = "internal_error"
)
