package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"affiliate-settlement-api/internal/constant"
	"affiliate-settlement-api/internal/dto"
	"affiliate-settlement-api/internal/service"
	"affiliate-settlement-api/internal/settlement"
	"affiliate-settlement-api/internal/utils"
)

type CommissionHandler struct {
	engine *settlement.Engine
	query  *service.QueryService
}

func NewCommissionHandler(engine *settlement.Engine) *CommissionHandler {
	return &CommissionHandler{engine: engine, query: service.NewQueryService()}
}

// Record splits a closed deal into its commission. One commission per deal;
// replays return the existing row.
func (h *CommissionHandler) Record(c *gin.Context) {
	var req dto.RecordCommissionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindErr(c, err)
		return
	}
	commission, err := h.engine.RecordCommission(req.DealID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.Success(commission))
}

func (h *CommissionHandler) Approve(c *gin.Context) {
	h.review(c, h.engine.Approve)
}

func (h *CommissionHandler) Reject(c *gin.Context) {
	h.review(c, h.engine.Reject)
}

func (h *CommissionHandler) review(c *gin.Context, action func(commissionID, companyID uint64, operator string) error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.Error(constant.CodeParamError))
		return
	}
	var req dto.CommissionActionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindErr(c, err)
		return
	}
	if err := action(id, req.CompanyID, req.Operator); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.Success(nil))
}

func (h *CommissionHandler) List(c *gin.Context) {
	var req dto.ListCommissionsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindErr(c, err)
		return
	}
	views, total, err := h.query.ListCommissions(req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.Success(gin.H{"items": views, "total": total}))
}
