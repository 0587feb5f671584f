package domain

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeAuthFailed    Code = "auth_failed"
	CodeUnreachable   Code = "unreachable"
	CodeTimeout       Code = "timeout"
	CodeNetworkError  Code = "network_error"
	CodeFetchFailed   Code = "fetch_failed"
	CodeCreateFailed  Code = "create_failed"
	CodeUpdateFailed  Code = "update_failed"
	CodeDeleteFailed  Code = "delete_failed"
	CodeNotConfigured Code = "not_configured"

	CodeInvalidInput   Code = "invalid_input"
	CodeInvalidType    Code = "invalid_type"
	CodeInvalidContent Code = "invalid_content"
	CodeInvalidTTL     Code = "invalid_ttl"
	CodeMissingField   Code = "missing_field"
	CodeInvalidName    Code = "invalid_name"
	CodeInvalidCAATag  Code = "invalid_caa_tag"

	CodeConflict Code = "conflict"

	CodeJSONDecodeFailed Code = "json_decode_failed"
	CodeSerializeError   Code = "serialize_error"
	CodeHTTPError        Code = "http_error"

	CodeAlreadyInitialized    Code = "already_initialized"
	CodeNotInitialized        Code = "not_initialized"
	CodeInvalidMasterPassword Code = "invalid_master_password"
	CodeUnsupportedVersion    Code = "unsupported_version"
	CodeIOError               Code = "io_error"
	CodeParseError            Code = "parse_error"
	CodeCryptoError           Code = "crypto_error"

	CodeInternal Code = "internal_error"
)

// Error is the tagged error every provider and vault operation returns.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error carrying the same code, so the sentinels below work
// with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrAuthFailed    = &Error{Code: CodeAuthFailed}
	ErrUnreachable   = &Error{Code: CodeUnreachable}
	ErrTimeout       = &Error{Code: CodeTimeout}
	ErrNetwork       = &Error{Code: CodeNetworkError}
	ErrFetchFailed   = &Error{Code: CodeFetchFailed}
	ErrCreateFailed  = &Error{Code: CodeCreateFailed}
	ErrUpdateFailed  = &Error{Code: CodeUpdateFailed}
	ErrDeleteFailed  = &Error{Code: CodeDeleteFailed}
	ErrNotConfigured = &Error{Code: CodeNotConfigured}

	ErrInvalidInput   = &Error{Code: CodeInvalidInput}
	ErrInvalidType    = &Error{Code: CodeInvalidType}
	ErrInvalidContent = &Error{Code: CodeInvalidContent}
	ErrInvalidTTL     = &Error{Code: CodeInvalidTTL}
	ErrMissingField   = &Error{Code: CodeMissingField}
	ErrInvalidName    = &Error{Code: CodeInvalidName}
	ErrInvalidCAATag  = &Error{Code: CodeInvalidCAATag}

	ErrConflict = &Error{Code: CodeConflict}

	ErrJSONDecode     = &Error{Code: CodeJSONDecodeFailed}
	ErrSerialize      = &Error{Code: CodeSerializeError}
	ErrHTTP           = &Error{Code: CodeHTTPError}
	ErrInvalidMaster  = &Error{Code: CodeInvalidMasterPassword}
	ErrNotInitialized = &Error{Code: CodeNotInitialized}
)

// CodeOf returns the taxonomy code carried by err, or internal_error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// MessageOf returns the human message without the code prefix.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Message == "" {
			return string(e.Code)
		}
		return e.Message
	}
	return err.Error()
}

// Payload is the {code, message} pair handed to the UI layer.
type Payload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func ToPayload(err error) Payload {
	return Payload{Code: string(CodeOf(err)), Message: MessageOf(err)}
}

func RequiredField(field string) error {
	return Newf(CodeMissingField, "%s is required", field)
}

func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
