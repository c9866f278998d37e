package background

import (
	"errors"
	"net/http"
	"time"

	"github.com/RichardKnop/machinery/v1"
	"github.com/jinzhu/gorm"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/standby-inc/standby-api/external/onesignal"
	"github.com/standby-inc/standby-api/store"
)

// BackgroundManager is a struct for standby background manager
type BackgroundManager struct {
	store store.StandbyCore

	notifier NotificationCenter

	taskServer *machinery.Server

	worker *machinery.Worker
}

func New(ormDB *gorm.DB, mongoClient *mongo.Client, taskServer *machinery.Server) *BackgroundManager {
	// transitions committed here still have to reach the API process's
	// hub, so the store publishes over the task queue
	standbyCore := store.NewStandbyStore(ormDB, store.NewMongoStore(
		mongoClient,
		viper.GetString("mongo.database"),
	), NewQueuePublisher(taskServer), viper.GetBool("arbiter.fail_on_negative"))

	o := onesignal.NewClient(&http.Client{
		Timeout: 15 * time.Second,
	})

	return &BackgroundManager{
		store:      standbyCore,
		notifier:   NewOnesignalNotificationCenter(viper.GetString("onesignal.appid"), o),
		taskServer: taskServer,
	}
}

func (m *BackgroundManager) RegisterTask(name string, taskFunc interface{}) error {
	return m.taskServer.RegisterTask(name, taskFunc)
}

// Run spawn workers to execute background jobs
func (m *BackgroundManager) Run() error {
	if m.worker != nil {
		return errors.New("background worker has started")
	}
	m.worker = m.taskServer.NewWorker("standby-worker", 5)
	return m.worker.Launch()
}
