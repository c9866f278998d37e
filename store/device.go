package store

import (
	"fmt"

	"github.com/jinzhu/gorm"

	"github.com/standby-inc/standby-api/schema"
)

var ErrDeviceNotExist = fmt.Errorf("the device is not registered")

// RegisterDevice records a push-capable device for an account. The
// optional location seeds the account's presence profile so the device
// becomes discoverable by nearby queries right away.
func (s *StandbyStore) RegisterDevice(owner, pushToken string, location *schema.Location) (*schema.Device, error) {
	d := schema.Device{
		Owner:     owner,
		PushToken: pushToken,
	}

	if err := s.ormDB.Create(&d).Error; err != nil {
		return nil, err
	}

	if location != nil {
		if err := s.mongo.UpdateProfileLocation(owner, *location, ""); err != nil {
			return nil, err
		}
	}

	return &d, nil
}

// DeleteDevice removes a device registration. Deleting an unknown device
// reports ErrDeviceNotExist.
func (s *StandbyStore) DeleteDevice(owner, deviceID string) error {
	result := s.ormDB.Delete(schema.Device{}, "id = ? AND owner = ?", deviceID, owner)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrDeviceNotExist
	}

	return nil
}

// UpdateDeviceLocation refreshes the presence location of the device owner.
func (s *StandbyStore) UpdateDeviceLocation(owner, deviceID string, location schema.Location) error {
	var d schema.Device
	if err := s.ormDB.Where("id = ? AND owner = ?", deviceID, owner).First(&d).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return ErrDeviceNotExist
		}
		return err
	}

	return s.mongo.UpdateProfileLocation(owner, location, "")
}
