package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"affiliate-settlement-api/internal/callback"
	"affiliate-settlement-api/internal/config"
	"affiliate-settlement-api/internal/dal"
	"affiliate-settlement-api/internal/handler"
	"affiliate-settlement-api/internal/idgen"
	"affiliate-settlement-api/internal/middleware"
	"affiliate-settlement-api/internal/mq"
	"affiliate-settlement-api/internal/processor"
	"affiliate-settlement-api/internal/service"
	"affiliate-settlement-api/internal/settlement"
)

func main() {
	// load config env
	config.Init()

	// init infra
	dal.InitMainDB()
	dal.InitLedgerDB()
	dal.InitRedis()
	dal.InitRabbitMQ()

	// idgen
	idgen.Init(1)
	go idgen.CheckSystemClock()

	// wire services; batch and consumer paths share one disburser so both
	// converge on the same settlement effects
	proc := processor.NewClient()
	disburse := service.NewDisburseService(proc)
	batchSvc := service.NewBatchService(proc, disburse)
	engine := settlement.NewEngine()
	rec := callback.NewReconciler(disburse)

	// start consumers and the retry sweeper
	mq.StartConsumers(rec)
	disburse.StartSweeper(time.Duration(config.C.Settlement.SweepIntervalSec) * time.Second)

	// http server
	if config.C.Server.Mode != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.SetTrustedProxies([]string{"127.0.0.1", "192.168.0.0/16"})
	r.Use(middleware.Recover(), middleware.Trace())

	v1 := r.Group("/api/v1")
	{
		ch := handler.NewCommissionHandler(engine)
		v1.POST("/commissions", middleware.AuthHMAC(), ch.Record)
		v1.POST("/commissions/:id/approve", middleware.AuthHMAC(), ch.Approve)
		v1.POST("/commissions/:id/reject", middleware.AuthHMAC(), ch.Reject)
		v1.GET("/commissions", ch.List)

		bh := handler.NewBatchHandler(batchSvc)
		v1.POST("/batches", middleware.AuthHMAC(), bh.Create)
		v1.GET("/batches/:id", bh.Get)
		v1.GET("/batches", bh.List)

		ph := handler.NewPayoutHandler(disburse)
		v1.GET("/payouts", ph.List)
		v1.POST("/payouts/:id/override", middleware.AuthHMAC(), ph.Override)
		v1.POST("/disburse/sweep", middleware.AuthHMAC(), ph.Sweep)

		rh := handler.NewReportHandler()
		v1.GET("/reconciliation", rh.Reconciliation)
		v1.GET("/treasury/summary", rh.TreasurySummary)
		v1.GET("/audit", rh.AuditTrail)

		wh := handler.NewWebhookHandler(mq.NewPublisher())
		v1.POST("/webhook/processor", wh.Processor)
	}

	addr := ":" + config.C.Server.Port
	log.Printf("listening %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
