package constant

import "fmt"

type Error interface {
	error
	Code() int
	Message() string
	WithData(data interface{}) Error
}

type CustomError struct {
	code    int
	message string
	data    interface{}
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("code: %d, message: %s", e.code, e.message)
}

func (e *CustomError) Code() int {
	return e.code
}

func (e *CustomError) Message() string {
	return e.message
}

func (e *CustomError) WithData(data interface{}) Error {
	e.data = data
	return e
}

// NewError creates an Error from a registered code.
func NewError(code int) Error {
	if msg, exists := ErrorMessages[code]; exists {
		return &CustomError{code: code, message: msg}
	}
	return &CustomError{code: code, message: "unknown error"}
}

func GetErrorMessage(code int) (string, bool) {
	msg, exists := ErrorMessages[code]
	return msg, exists
}
