package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/RichardKnop/machinery/v1"
	machineryconf "github.com/RichardKnop/machinery/v1/config"
	"github.com/getsentry/sentry-go"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/standby-inc/standby-api/background"
	expiryWorker "github.com/standby-inc/standby-api/background/expiry"
	cadence "github.com/standby-inc/standby-api/external/cadence"
	"github.com/standby-inc/standby-api/store"
	"github.com/standby-inc/standby-api/utils"
)

var logger *zap.Logger

func init() {
	logger = buildLogger()
}

func buildLogger() *zap.Logger {
	config := zap.NewDevelopmentConfig()
	config.Level.SetLevel(zapcore.InfoLevel)

	var err error
	logger, err := config.Build()
	if err != nil {
		panic("Failed to setup logger")
	}

	return logger
}

func initSentry() {
	// Sentry
	logger.Info("Initializing sentry")
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              viper.GetString("sentry.dsn"),
		AttachStacktrace: true,
		Environment:      viper.GetString("sentry.environment"),
		Dist:             viper.GetString("sentry.dist"),
	}); err != nil {
		logger.Panic("fail to initialize sentry", zap.Error(err))
	}
}

func loadConfig(file string) {
	// Config from file
	viper.SetConfigType("yaml")
	if file != "" {
		viper.SetConfigFile(file)
	}

	viper.AddConfigPath("/.config/")
	viper.AddConfigPath(".")
	err := viper.ReadInConfig()
	if err != nil {
		fmt.Println("No config file. Read config from env.")
		viper.AllowEmptyEnv(false)
	}

	// Config from env if possible
	viper.AutomaticEnv()
	viper.SetEnvPrefix("standby")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

func main() {
	var configFile string
	flag.StringVar(&configFile, "c", "./config.yaml", "[optional] path of configuration file")
	flag.Parse()

	loadConfig(configFile)
	initSentry()
	utils.InitI18NBundle()

	ormDB, err := gorm.Open("postgres", viper.GetString("orm.conn"))
	if err != nil {
		logger.Panic("connect postgres with error", zap.Error(err))
	}

	machineryServer, err := machinery.NewServer(&machineryconf.Config{
		Broker:        viper.GetString("redis.conn"),
		DefaultQueue:  "standby_background",
		ResultBackend: viper.GetString("redis.conn"),
	})
	if err != nil {
		logger.Panic("connect task queue with error", zap.Error(err))
	}

	standbyCore := store.NewStandbyStore(ormDB, nil,
		background.NewQueuePublisher(machineryServer),
		viper.GetBool("arbiter.fail_on_negative"))

	worker := expiryWorker.NewExpiryWorker(
		viper.GetString("cadence.domain"),
		viper.GetString("onesignal.appid"),
		standbyCore,
	)
	worker.Register()

	go func() {
		if err := utils.TriggerExpiryCheck(*cadence.NewClient(), context.Background()); err != nil {
			logger.Error("fail to start expiry workflow", zap.Error(err))
		}
	}()

	worker.Start(cadence.BuildCadenceServiceClient(viper.GetString("cadence.conn")), logger)
}
