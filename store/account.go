package store

import (
	"time"

	"github.com/jinzhu/gorm"

	"github.com/standby-inc/standby-api/schema"
)

// CreateAccount is to register an account into the standby system
func (s *StandbyStore) CreateAccount(accountNumber, pubKey, name string, metadata map[string]interface{}) (*schema.Account, error) {
	a := schema.Account{
		AccountNumber: accountNumber,
		PubKey:        pubKey,
		Profile: schema.AccountProfile{
			AccountNumber: accountNumber,
			Name:          name,
			State: schema.ActivityState{
				LastActiveTime: time.Now(),
			},
			Metadata: schema.AccountMetadata(metadata),
		},
	}

	if err := s.ormDB.Create(&a).Error; err != nil {
		return nil, err
	}

	if err := s.mongo.CreateAccountProfile(a.Profile.ID.String(), accountNumber); err != nil {
		return nil, err
	}

	return &a, nil
}

// GetAccount returns an account instance of a given account number
func (s *StandbyStore) GetAccount(accountNumber string) (*schema.Account, error) {
	var a schema.Account
	if err := s.ormDB.Preload("Profile").Where("account_number = ?", accountNumber).First(&a).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, ErrAccountNotExist
		}
		return nil, err
	}
	return &a, nil
}

// UpdateAccountMetadata is to update metadata for a specific account
func (s *StandbyStore) UpdateAccountMetadata(accountNumber string, metadata map[string]interface{}) error {
	var a schema.Account
	if err := s.ormDB.Preload("Profile").Where("account_number = ?", accountNumber).First(&a).Error; err != nil {
		return err
	}

	for k, v := range metadata {
		a.Profile.Metadata[k] = v
	}

	return s.ormDB.Save(&a.Profile).Error
}

// UpdateAccountGeoPosition keeps the last reported position of an account
// so nearby queries can find it.
func (s *StandbyStore) UpdateAccountGeoPosition(accountNumber string, latitude, longitude float64) error {
	var a schema.Account
	if err := s.ormDB.Preload("Profile").Where("account_number = ?", accountNumber).First(&a).Error; err != nil {
		return err
	}

	a.Profile.State.LastLocation = &schema.Location{
		Latitude:  latitude,
		Longitude: longitude,
	}

	if err := s.ormDB.Save(&a.Profile).Error; err != nil {
		return err
	}

	return s.mongo.UpdateProfileLocation(accountNumber, schema.Location{
		Latitude:  latitude,
		Longitude: longitude,
	}, "")
}

// DeleteAccount removes an account from our system permanently
func (s *StandbyStore) DeleteAccount(accountNumber string) error {
	if err := s.ormDB.Delete(schema.Account{}, "account_number = ?", accountNumber).Error; err != nil {
		return err
	}

	if err := s.ormDB.Delete(schema.AccountProfile{}, "account_number = ?", accountNumber).Error; err != nil {
		return err
	}

	if err := s.ormDB.Delete(schema.Device{}, "owner = ?", accountNumber).Error; err != nil {
		return err
	}

	return s.mongo.DeleteAccountProfile(accountNumber)
}
