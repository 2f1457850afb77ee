package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"affiliate-settlement-api/internal/config"
	"affiliate-settlement-api/internal/constant"
	"affiliate-settlement-api/internal/dal"
	"affiliate-settlement-api/internal/dto"
	"affiliate-settlement-api/internal/event"
	"affiliate-settlement-api/internal/utils"
)

const eventDedupeTTL = 24 * time.Hour

type WebhookHandler struct {
	pub event.Publisher
}

func NewWebhookHandler(pub event.Publisher) *WebhookHandler {
	return &WebhookHandler{pub: pub}
}

// Processor receives signed lifecycle events from the payment processor.
// The handler only verifies, dedupes and enqueues; all settlement effects
// happen in the consumers, so the processor gets its 200 fast.
func (h *WebhookHandler) Processor(c *gin.Context) {
	secret := config.C.Security.WebhookSecret
	if secret == "" {
		log.Printf("[WEBHOOK] ❌ webhook secret not configured, rejecting event")
		c.JSON(http.StatusInternalServerError, utils.Error(constant.CodeWebhookNoSecret))
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.Error(constant.CodeParamError))
		return
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(c.GetHeader("X-Processor-Signature"))) {
		c.JSON(http.StatusUnauthorized, utils.Error(constant.CodeWebhookSignInvalid))
		return
	}

	var evt dto.ProcessorEvent
	if err := json.Unmarshal(body, &evt); err != nil || evt.EventID == "" || evt.Type == "" {
		c.JSON(http.StatusBadRequest, utils.Error(constant.CodeParamError))
		return
	}

	// first delivery wins; replays of the same event_id are acknowledged
	// without re-enqueueing
	fresh, err := dal.RedisClient.SetNX(dal.RedisCtx, "processor_event:"+evt.EventID, 1, eventDedupeTTL).Result()
	if err != nil {
		log.Printf("[WEBHOOK] dedupe check for %s failed: %v, enqueueing anyway", evt.EventID, err)
	} else if !fresh {
		log.Printf("[WEBHOOK] 🔁 duplicate event %s (%s), ignoring", evt.EventID, evt.Type)
		c.JSON(http.StatusOK, utils.Success(nil))
		return
	}

	env := dto.EventEnvelope{
		Event:      evt,
		TraceID:    uuid.NewString(),
		ReceivedAt: time.Now().Unix(),
	}
	if err := h.pub.Publish(evt.Type, env); err != nil {
		// let the processor retry the delivery; the dedupe key is dropped so
		// the retry is not mistaken for a replay
		dal.RedisClient.Del(dal.RedisCtx, "processor_event:"+evt.EventID)
		c.JSON(http.StatusInternalServerError, utils.Error(constant.CodeSystemError))
		return
	}

	log.Printf("[WEBHOOK] 📨 accepted event %s type=%s trace=%s", evt.EventID, evt.Type, env.TraceID)
	c.JSON(http.StatusOK, utils.Success(nil))
}
