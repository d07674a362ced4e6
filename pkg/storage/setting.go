package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Setting struct {
	ID        string `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Value     string
}

func (s *Store) GetSetting(ctx context.Context, id string) (*Setting, error) {
	var v Setting
	if err := s.db.First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: failed to get setting %s: %w", id, err)
	}
	return &v, nil
}

func (s *Store) SetSetting(ctx context.Context, v *Setting) error {
	if err := s.db.Save(v).Error; err != nil {
		return fmt.Errorf("storage: failed to set setting %s: %w", v.ID, err)
	}
	return nil
}

func (s *Store) DeleteSetting(ctx context.Context, id string) error {
	if err := s.db.Delete(&Setting{ID: id}, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("storage: failed to delete setting %s: %w", id, err)
	}
	return nil
}

// NewKeyStore returns an API key store for a service account backed by
// the settings table.
func (s *Store) NewKeyStore(service, account string) *keyStore {
	return &keyStore{
		store:   s,
		service: service,
		account: account,
	}
}

type keyStore struct {
	store   *Store
	service string
	account string
}

func (k *keyStore) GetKey(ctx context.Context) (string, error) {
	setting, err := k.store.GetSetting(ctx, fmt.Sprintf("%s/%s/key", k.service, k.account))
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (k *keyStore) SetKey(ctx context.Context, key string) error {
	return k.store.SetSetting(ctx, &Setting{
		ID:    fmt.Sprintf("%s/%s/key", k.service, k.account),
		Value: key,
	})
}
