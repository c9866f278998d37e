package store

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/standby-inc/standby-api/schema"
)

// Group - interface for finding group of people
type Group interface {
	NearestDistance(int, schema.Location) ([]string, error)
}

// NearestDistance - find nearest account number by distance
// return matches by account number
func (m *mongoDB) NearestDistance(distance int, cords schema.Location) ([]string, error) {
	query := distanceQuery(distance, cords)
	c := m.client.Database(m.database).Collection(schema.ProfileCollection)
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	cur, err := c.Find(ctx, query)
	if nil != err {
		log.WithField("prefix", mongoLogPrefix).Errorf("query nearest distance with error: %s", err)
		return []string{}, fmt.Errorf("nearest distance query with error: %s", err)
	}

	accountNumbers := make([]string, 0)
	var record schema.Profile

	// iterate
	for cur.Next(ctx) {
		err = cur.Decode(&record)
		if nil != err {
			log.WithField("prefix", mongoLogPrefix).Infof("query nearest distance with error: %s", err)
			return []string{}, fmt.Errorf("nearest distance query decode record with error: %s", err)
		}
		accountNumbers = append(accountNumbers, record.AccountNumber)
	}

	log.WithField("prefix", mongoLogPrefix).Debugf("nearest distance query gets %d account number: %v", len(accountNumbers),
		accountNumbers)

	return accountNumbers, nil
}

func distanceQuery(distance int, cords schema.Location) bson.D {
	return bson.D{{
		Key: "location",
		Value: bson.D{{
			Key: "$nearSphere",
			Value: bson.D{{
				Key: "$geometry",
				Value: bson.D{{
					Key:   "type",
					Value: "point",
				}, {
					Key:   "coordinates",
					Value: bson.A{cords.Longitude, cords.Latitude},
				}, {
					Key:   "$maxDistance",
					Value: distance,
				}},
			}},
		}},
	}}
}
