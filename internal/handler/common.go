package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"affiliate-settlement-api/internal/constant"
	"affiliate-settlement-api/internal/utils"
)

// respondErr maps registered errors to their code and everything else to a
// generic system error; internals never leak raw driver messages.
func respondErr(c *gin.Context, err error) {
	if ce, ok := err.(constant.Error); ok {
		c.JSON(http.StatusOK, utils.Error(ce.Code()))
		return
	}
	// the trace id lets operators find the logged cause without leaking it
	c.JSON(http.StatusInternalServerError, utils.ErrorWithTrace(constant.CodeSystemError, c.GetString("trace_id")))
}

// respondBindErr turns binding failures into per-field messages when the
// error carries field details, and a plain param error otherwise.
func respondBindErr(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make([]map[string]string, 0, len(ve))
		for _, fe := range ve {
			fields = append(fields, map[string]string{
				"field": fe.Field(),
				"error": utils.ValidationMsg(fe),
			})
		}
		c.JSON(http.StatusBadRequest, utils.ErrorWithData(constant.CodeParamError, fields))
		return
	}
	c.JSON(http.StatusBadRequest, utils.CustomError(constant.CodeParamError, err.Error()))
}
