package errs

import "net/http"

// BizError 业务错误：Status 为 HTTP 状态码，Code 进响应体
type BizError struct {
	Status int
	Code   int
	Msg    string
	Err    error
}

func (e *BizError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "biz error"
}

func (e *BizError) Unwrap() error { return e.Err }

func New(status, code int, msg string) *BizError {
	return &BizError{Status: status, Code: code, Msg: msg}
}

func BadRequest(msg string) *BizError {
	return New(http.StatusBadRequest, http.StatusBadRequest, msg)
}

func Unauthorized(msg string) *BizError {
	return New(http.StatusUnauthorized, http.StatusUnauthorized, msg)
}

func Forbidden(msg string) *BizError {
	return New(http.StatusForbidden, http.StatusForbidden, msg)
}

func NotFound(msg string) *BizError {
	return New(http.StatusNotFound, http.StatusNotFound, msg)
}

func Internal(msg string, err error) *BizError {
	return &BizError{Status: http.StatusInternalServerError, Code: http.StatusInternalServerError, Msg: msg, Err: err}
}
