package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"affiliate-settlement-api/internal/service"
	"affiliate-settlement-api/internal/utils"
)

type ReportHandler struct {
	query *service.QueryService
}

func NewReportHandler() *ReportHandler {
	return &ReportHandler{query: service.NewQueryService()}
}

// Reconciliation lists per-payment milestone rows; unsettled=1 filters down
// to rows still missing a milestone.
func (h *ReportHandler) Reconciliation(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	onlyUnsettled := c.Query("unsettled") == "1"
	rows, total, err := h.query.ListReconciliation(limit, offset, onlyUnsettled)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.Success(gin.H{"items": rows, "total": total}))
}

func (h *ReportHandler) TreasurySummary(c *gin.Context) {
	summary, err := h.query.TreasurySummary()
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.Success(summary))
}

// AuditTrail lists one month of state-transition records. month=YYYYMM
// (default current); entity_id narrows to one entity's shard.
func (h *ReportHandler) AuditTrail(c *gin.Context) {
	month := time.Now()
	if m := c.Query("month"); m != "" {
		parsed, err := time.Parse("200601", m)
		if err != nil {
			respondBindErr(c, fmt.Errorf("month must be YYYYMM"))
			return
		}
		month = parsed
	}
	entityID, _ := strconv.ParseUint(c.Query("entity_id"), 10, 64)
	rows, err := h.query.AuditTrail(entityID, month)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.Success(gin.H{"items": rows, "total": len(rows)}))
}
