package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type Profile struct {
	ID        string `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Email    string `gorm:"uniqueIndex;not null"`
	FullName string `gorm:"not null;default:''"`

	TokenBalance         int `gorm:"not null;default:0"`
	TotalTokensPurchased int `gorm:"not null;default:0"`
	TotalTokensUsed      int `gorm:"not null;default:0"`

	DefaultModel       string `gorm:"not null;default:''"`
	AutoDownload       bool   `gorm:"not null;default:false"`
	EmailNotifications bool   `gorm:"not null;default:true"`
}

func (s *Store) GetProfile(ctx context.Context, id string) (*Profile, error) {
	var v Profile
	if err := s.db.First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: failed to get Profile %s: %w", id, err)
	}
	return &v, nil
}

func (s *Store) GetProfileByEmail(ctx context.Context, email string) (*Profile, error) {
	var v Profile
	if err := s.db.First(&v, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: failed to get Profile by email %s: %w", email, err)
	}
	return &v, nil
}

func (s *Store) SetProfile(ctx context.Context, v *Profile) error {
	if err := s.db.Save(v).Error; err != nil {
		return fmt.Errorf("storage: failed to set Profile %s: %w", v.ID, err)
	}
	return nil
}

// UpdateProfileSettings writes the non-balance fields of the profile.
// Balance fields are owned by ReserveTokens and CreditTokens.
func (s *Store) UpdateProfileSettings(ctx context.Context, v *Profile) error {
	res := s.db.Model(&Profile{}).Where("id = ?", v.ID).Updates(map[string]interface{}{
		"full_name":           v.FullName,
		"default_model":       v.DefaultModel,
		"auto_download":       v.AutoDownload,
		"email_notifications": v.EmailNotifications,
	})
	if res.Error != nil {
		return fmt.Errorf("storage: failed to update Profile %s: %w", v.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReserveTokens debits amount tokens from the profile and appends the
// matching usage transaction, both inside a single database
// transaction. The debit is a conditional update so that concurrent
// reserves can never drive the balance negative: when the balance is
// short the update matches no row and ErrInsufficientBalance is
// returned with nothing written.
func (s *Store) ReserveTokens(ctx context.Context, userID string, amount int, generationID string) error {
	if amount <= 0 {
		return fmt.Errorf("storage: invalid reserve amount %d", amount)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Profile{}).
			Where("id = ? AND token_balance >= ?", userID, amount).
			Updates(map[string]interface{}{
				"token_balance":     gorm.Expr("token_balance - ?", amount),
				"total_tokens_used": gorm.Expr("total_tokens_used + ?", amount),
			})
		if res.Error != nil {
			return fmt.Errorf("storage: failed to debit Profile %s: %w", userID, res.Error)
		}
		if res.RowsAffected == 0 {
			// Tell a missing profile apart from a short balance.
			var p Profile
			if err := tx.First(&p, "id = ?", userID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return fmt.Errorf("storage: failed to get Profile %s: %w", userID, err)
			}
			return ErrInsufficientBalance
		}
		v := &TokenTransaction{
			ID:          ulid.Make().String(),
			UserID:      userID,
			Type:        TxUsage,
			TokenAmount: -amount,
		}
		if generationID != "" {
			v.GenerationID = &generationID
		}
		if err := tx.Create(v).Error; err != nil {
			return fmt.Errorf("storage: failed to append transaction for Profile %s: %w", userID, err)
		}
		return nil
	})
	return err
}

// CreditTokens credits v.TokenAmount tokens to the profile and appends
// v, both inside a single database transaction. Purchases also bump the
// purchased total.
func (s *Store) CreditTokens(ctx context.Context, v *TokenTransaction) error {
	if v.TokenAmount <= 0 {
		return fmt.Errorf("storage: invalid credit amount %d", v.TokenAmount)
	}
	if v.ID == "" {
		v.ID = ulid.Make().String()
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"token_balance": gorm.Expr("token_balance + ?", v.TokenAmount),
		}
		if v.Type == TxPurchase {
			updates["total_tokens_purchased"] = gorm.Expr("total_tokens_purchased + ?", v.TokenAmount)
		}
		res := tx.Model(&Profile{}).Where("id = ?", v.UserID).Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("storage: failed to credit Profile %s: %w", v.UserID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Create(v).Error; err != nil {
			return fmt.Errorf("storage: failed to append transaction for Profile %s: %w", v.UserID, err)
		}
		return nil
	})
	return err
}
