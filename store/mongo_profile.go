package store

import (
	"context"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/standby-inc/standby-api/schema"
)

// MongoProfile - profile presence operations
type MongoProfile interface {
	CreateAccountProfile(id, accountNumber string) error
	DeleteAccountProfile(accountNumber string) error
	GetProfile(accountNumber string) (*schema.Profile, error)
	UpdateProfileLocation(accountNumber string, location schema.Location, country string) error
}

// CreateAccountProfile inserts a presence profile for a new account.
func (m *mongoDB) CreateAccountProfile(id, accountNumber string) error {
	c := m.client.Database(m.database).Collection(schema.ProfileCollection)
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	_, err := c.InsertOne(ctx, schema.Profile{
		ID:            id,
		AccountNumber: accountNumber,
	})
	if err != nil {
		log.WithField("prefix", mongoLogPrefix).Errorf("create profile for %s with error: %s", accountNumber, err)
	}
	return err
}

// DeleteAccountProfile removes the presence profile of an account.
func (m *mongoDB) DeleteAccountProfile(accountNumber string) error {
	c := m.client.Database(m.database).Collection(schema.ProfileCollection)
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	_, err := c.DeleteOne(ctx, bson.M{"account_number": accountNumber})
	return err
}

// GetProfile returns the presence profile of an account.
func (m *mongoDB) GetProfile(accountNumber string) (*schema.Profile, error) {
	c := m.client.Database(m.database).Collection(schema.ProfileCollection)
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var p schema.Profile
	if err := c.FindOne(ctx, bson.M{"account_number": accountNumber}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfileLocation stores the last known position of an account in
// GeoJSON form so the 2dsphere index can serve nearby queries. An empty
// country leaves the resolved country untouched.
func (m *mongoDB) UpdateProfileLocation(accountNumber string, location schema.Location, country string) error {
	c := m.client.Database(m.database).Collection(schema.ProfileCollection)
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	update := bson.M{
		"location": schema.GeoJSON{
			Type:        "Point",
			Coordinates: []float64{location.Longitude, location.Latitude},
		},
	}
	if country != "" {
		update["country"] = country
	}

	_, err := c.UpdateOne(ctx,
		bson.M{"account_number": accountNumber},
		bson.M{"$set": update},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		log.WithField("prefix", mongoLogPrefix).Errorf("update profile location for %s with error: %s", accountNumber, err)
	}
	return err
}
