package utils

import "affiliate-settlement-api/internal/constant"

// Response is the uniform API envelope.
type Response struct {
	Code    int         `json:"code"`
	Msg     string      `json:"msg"`
	Data    interface{} `json:"data,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
}

func Success(data interface{}) Response {
	return Response{
		Code: constant.CodeSuccess,
		Msg:  "Success",
		Data: data,
	}
}

// Error builds a response from a registered code.
func Error(code int) Response {
	if msg, exists := constant.GetErrorMessage(code); exists {
		return Response{Code: code, Msg: msg}
	}
	return Response{Code: code, Msg: "Unknown error"}
}

func ErrorWithData(code int, data interface{}) Response {
	r := Error(code)
	r.Data = data
	return r
}

func ErrorWithTrace(code int, traceID string) Response {
	r := Error(code)
	r.TraceID = traceID
	return r
}

// CustomError carries a free-form message outside the registry.
func CustomError(code int, message string) Response {
	return Response{Code: code, Msg: message}
}
