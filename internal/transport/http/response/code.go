package response

// 业务码直接沿用 HTTP 语义
const (
	CodeOK           = 200
	CodeBadRequest   = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeValidation   = 422
	CodeServerError  = 500
)

// CodeMsgMap 集中管理 code - message
var CodeMsgMap = map[int]string{
	CodeOK:           "success",
	CodeBadRequest:   "Bad Request",
	CodeUnauthorized: "Unauthorized",
	CodeForbidden:    "Forbidden",
	CodeNotFound:     "Not Found",
	CodeValidation:   "Unprocessable Entity",
	CodeServerError:  "Internal Server Error",
}
