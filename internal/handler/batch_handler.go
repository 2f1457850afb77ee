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

type BatchHandler struct {
	svc   *service.BatchService
	query *service.QueryService
}

func NewBatchHandler(svc *service.BatchService) *BatchHandler {
	return &BatchHandler{svc: svc, query: service.NewQueryService()}
}

// Create batches approved commissions into one company charge. With a stored
// payment method the charge is attempted inline; otherwise the response
// carries a hosted checkout URL and settlement continues on the webhook.
func (h *BatchHandler) Create(c *gin.Context) {
	var req dto.CreateBatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindErr(c, err)
		return
	}
	resp, err := h.svc.CreateBatch(c.Request.Context(), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.Success(resp))
}

func (h *BatchHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.Error(constant.CodeParamError))
		return
	}
	view, err := h.query.GetBatch(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	if view == nil {
		c.JSON(http.StatusNotFound, utils.Error(constant.CodeBatchNotFound))
		return
	}
	c.JSON(http.StatusOK, utils.Success(view))
}

func (h *BatchHandler) List(c *gin.Context) {
	companyID, _ := strconv.ParseUint(c.Query("companyId"), 10, 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	views, total, err := h.query.ListBatches(companyID, limit, offset)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.Success(gin.H{"items": views, "total": total}))
}
