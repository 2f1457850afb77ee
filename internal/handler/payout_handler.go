package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"affiliate-settlement-api/internal/constant"
	"affiliate-settlement-api/internal/dto"
	"affiliate-settlement-api/internal/service"
	"affiliate-settlement-api/internal/utils"
)

type PayoutHandler struct {
	disburse *service.DisburseService
	query    *service.QueryService
}

func NewPayoutHandler(disburse *service.DisburseService) *PayoutHandler {
	return &PayoutHandler{disburse: disburse, query: service.NewQueryService()}
}

func (h *PayoutHandler) List(c *gin.Context) {
	var req dto.ListPayoutsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindErr(c, err)
		return
	}
	views, total, err := h.query.ListPayouts(req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.Success(gin.H{"items": views, "total": total}))
}

// Override lets an operator settle a stuck payout by hand when the processor
// confirmed out of band or the transfer is known dead. The override walks the
// same completion and failure paths as processor events.
func (h *PayoutHandler) Override(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.Error(constant.CodeParamError))
		return
	}
	var req dto.PayoutOverrideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindErr(c, err)
		return
	}

	trace := "manual:" + req.Operator
	switch req.Action {
	case dto.OverrideMarkProcessed:
		err = h.disburse.CompletePayout(id, "", trace)
	case dto.OverrideMarkFailed:
		reason := req.Reason
		if reason == "" {
			reason = "manually failed by " + req.Operator
		}
		err = h.disburse.FailPayout(id, reason, "", trace)
	}
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.Success(nil))
}

// Sweep retries disbursement for every affiliate parked in the retry set.
func (h *PayoutHandler) Sweep(c *gin.Context) {
	h.disburse.RetrySweep()
	c.JSON(http.StatusOK, utils.Success(nil))
}
