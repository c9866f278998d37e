package main

import (
	"fmt"
	"strings"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	"github.com/spf13/viper"

	"github.com/standby-inc/standby-api/schema"
)

func init() {
	viper.AutomaticEnv()
	viper.SetEnvPrefix("standby")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

func main() {
	db, err := gorm.Open("postgres", viper.GetString("orm.conn"))
	if err != nil {
		panic(err)
	}

	if err := db.Exec(`CREATE SCHEMA IF NOT EXISTS standby`).Error; err != nil {
		panic(err)
	}

	if err := db.Exec("SET search_path TO standby").Error; err != nil {
		panic(err)
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		panic(err)
	}

	if err := db.AutoMigrate(
		&schema.Account{},
		&schema.AccountProfile{},
		&schema.HelpRequest{},
		&schema.ProximityEvidence{},
		&schema.Device{},
	).Error; err != nil {
		panic(err)
	}

	// one open request per requester
	if err := db.Model(schema.HelpRequest{}).
		Where(fmt.Sprintf("state IN ('%s', '%s')", schema.HELP_PENDING, schema.HELP_MATCHED)).
		AddUniqueIndex("help_request_unique_if_not_done", "requester").Error; err != nil {
		panic(err)
	}

	schema.NewMongoDBIndexer(viper.GetString("mongo.conn"), viper.GetString("mongo.database")).IndexAll()
}
