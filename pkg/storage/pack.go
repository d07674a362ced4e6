package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type TokenPackage struct {
	ID        string `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name        string `gorm:"uniqueIndex;not null"`
	Description string `gorm:"not null;default:''"`

	TokenAmount int     `gorm:"not null;default:0"`
	PriceUSD    float64 `gorm:"not null;default:0"`

	Active       bool `gorm:"index;not null;default:true"`
	DisplayOrder int  `gorm:"not null;default:0"`
}

var defaultPackages = []TokenPackage{
	{Name: "starter", Description: "500 tokens to get going", TokenAmount: 500, PriceUSD: 4.99, Active: true, DisplayOrder: 1},
	{Name: "creator", Description: "1200 tokens for regular use", TokenAmount: 1200, PriceUSD: 9.99, Active: true, DisplayOrder: 2},
	{Name: "studio", Description: "2600 tokens for heavy use", TokenAmount: 2600, PriceUSD: 19.99, Active: true, DisplayOrder: 3},
	{Name: "pro", Description: "7000 tokens for professionals", TokenAmount: 7000, PriceUSD: 49.99, Active: true, DisplayOrder: 4},
}

func (s *Store) GetPackage(ctx context.Context, name string) (*TokenPackage, error) {
	var v TokenPackage
	if err := s.db.First(&v, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: failed to get TokenPackage %s: %w", name, err)
	}
	return &v, nil
}

func (s *Store) SetPackage(ctx context.Context, v *TokenPackage) error {
	if err := s.db.Save(v).Error; err != nil {
		return fmt.Errorf("storage: failed to set TokenPackage %s: %w", v.ID, err)
	}
	return nil
}

// ListPackages returns the active packages in display order.
func (s *Store) ListPackages(ctx context.Context) ([]*TokenPackage, error) {
	vs := []*TokenPackage{}
	q := s.db.Where("active = ?", true).Order("display_order")
	if err := q.Find(&vs).Error; err != nil {
		return nil, fmt.Errorf("storage: failed to list TokenPackages: %w", err)
	}
	return vs, nil
}
