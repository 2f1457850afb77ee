package config

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerCfg struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}
type MysqlCfg struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Database     string `mapstructure:"database"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Charset      string `mapstructure:"charset"`
	MaxIdleConns int    `mapstructure:"maxIdleConns"`
	MaxOpenConns int    `mapstructure:"maxOpenConns"`
}
type RabbitCfg struct {
	URL string `mapstructure:"url"`
}
type RedisCfg struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}
type SecurityCfg struct {
	HMACSecret    string `mapstructure:"hmacSecret"`
	WebhookSecret string `mapstructure:"webhookSecret"`
}
type ProcessorCfg struct {
	ApiUrl     string `mapstructure:"apiUrl"`
	ApiKey     string `mapstructure:"apiKey"`
	TimeoutSec int    `mapstructure:"timeoutSec"`
}
type SettlementCfg struct {
	PlatformFeeRate  string `mapstructure:"platformFeeRate"` // percent, decimal string
	SweepIntervalSec int    `mapstructure:"sweepIntervalSec"`
	AuditShards      int    `mapstructure:"auditShards"`
}

type Root struct {
	Server      ServerCfg     `mapstructure:"server"`
	MysqlMain   MysqlCfg      `mapstructure:"mysql_main"`
	MysqlLedger MysqlCfg      `mapstructure:"mysql_ledger"`
	RabbitMQ    RabbitCfg     `mapstructure:"rabbitmq"`
	Redis       RedisCfg      `mapstructure:"redis"`
	Security    SecurityCfg   `mapstructure:"security"`
	Processor   ProcessorCfg  `mapstructure:"processor"`
	Settlement  SettlementCfg `mapstructure:"settlement"`
}

var C Root

func Init() {
	env := flag.String("env", "dev", "config env: dev|prod")
	flag.Parse()

	// secrets may come from .env in local setups
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile("config/config." + *env + ".yaml")
	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("read config file failed: %v", err)
	}
	if err := v.Unmarshal(&C); err != nil {
		log.Fatalf("unmarshal config failed: %v", err)
	}

	// env overrides for secrets
	if s := os.Getenv("PROCESSOR_API_KEY"); s != "" {
		C.Processor.ApiKey = s
	}
	if s := os.Getenv("PROCESSOR_WEBHOOK_SECRET"); s != "" {
		C.Security.WebhookSecret = s
	}

	// sane defaults
	if strings.TrimSpace(C.Server.Port) == "" {
		C.Server.Port = "8080"
	}
	if C.Processor.TimeoutSec <= 0 {
		C.Processor.TimeoutSec = 10
	}
	if C.Settlement.PlatformFeeRate == "" {
		C.Settlement.PlatformFeeRate = "20"
	}
	if C.Settlement.SweepIntervalSec <= 0 {
		C.Settlement.SweepIntervalSec = 300
	}
	if C.Settlement.AuditShards <= 0 {
		C.Settlement.AuditShards = 4
	}
}
