package secrets

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"regiond/internal/models"
)

// LocalStore keeps secrets in the secrets table, sealed with secretbox.
type LocalStore struct {
	db  *gorm.DB
	key [32]byte
}

func NewLocalStore(db *gorm.DB, key []byte) (*LocalStore, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("secrets key must be 32 bytes, got %d", len(key))
	}
	s := &LocalStore{db: db}
	copy(s.key[:], key)
	return s, nil
}

func (s *LocalStore) Get(ctx context.Context, path string, out any) error {
	var row models.Secret
	err := s.db.WithContext(ctx).Where("path = ?", path).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read secret %s: %w", path, err)
	}
	if len(row.Value) < 24 {
		return fmt.Errorf("secret %s is corrupt", path)
	}
	var nonce [24]byte
	copy(nonce[:], row.Value[:24])
	plain, ok := secretbox.Open(nil, row.Value[24:], &nonce, &s.key)
	if !ok {
		return fmt.Errorf("secret %s cannot be decrypted", path)
	}
	return json.Unmarshal(plain, out)
}

func (s *LocalStore) Set(ctx context.Context, path string, value any) error {
	plain, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return err
	}
	row := models.Secret{Path: path, Value: secretbox.Seal(nonce[:], plain, &nonce, &s.key)}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("write secret %s: %w", path, err)
	}
	return nil
}

func (s *LocalStore) Delete(ctx context.Context, path string) error {
	return s.db.WithContext(ctx).Where("path = ?", path).Delete(&models.Secret{}).Error
}
