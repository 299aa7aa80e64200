package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finastack/folio/config"
)

var (
	// ErrConflict is returned when a unique constraint race loses; the
	// caller retries a bounded number of times before surfacing it.
	ErrConflict = errors.New("unique constraint conflict")
	ErrNotFound = gorm.ErrRecordNotFound
)

const ConflictRetryBound = 3

func Lock() (tx *gorm.DB) {
	return config.DataBase.Clauses(clause.Locking{Strength: "UPDATE"})
}

type Reference struct {
	ID   uint64
	Type string
}

// NamedEntity is embedded by every tenant-scoped catalog entity. The
// unique constraint on (tenant_id, user_code) is partial over active
// rows, so a fake-deleted code is immediately reusable.
type NamedEntity struct {
	TenantID        uint64    `json:"tenant_id" gorm:"index:,unique,composite:tenant_user_code,where:is_deleted = false" validate:"required"`
	UserCode        string    `json:"user_code" gorm:"index:,unique,composite:tenant_user_code,where:is_deleted = false" validate:"required"`
	Name            string    `json:"name"`
	ShortName       string    `json:"short_name"`
	PublicName      *string   `json:"public_name"`
	Notes           *string   `json:"notes"`
	IsDeleted       bool      `json:"is_deleted" gorm:"default:false;index"`
	DeletedUserCode *string   `json:"deleted_user_code"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// deletedCode derives the placeholder user_code a fake-deleted row is
// renamed to. The original code is kept in DeletedUserCode for restore.
func deletedCode(id uint64) string {
	return fmt.Sprintf("del%d_%s", id, strings.Split(uuid.New().String(), "-")[0])
}

// FakeDelete soft-deletes the row identified by id on the given table,
// releasing its user_code for reuse.
func FakeDelete(db *gorm.DB, model interface{}, id uint64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(model, "id = ?", id).Error; err != nil {
			return err
		}

		named, ok := model.(interface {
			GetNamedEntity() *NamedEntity
		})
		if !ok {
			return fmt.Errorf("model is not soft-deletable")
		}

		ne := named.GetNamedEntity()
		prior := ne.UserCode

		return tx.Model(model).Updates(map[string]interface{}{
			"is_deleted":        true,
			"deleted_user_code": prior,
			"user_code":         deletedCode(id),
		}).Error
	})
}

// Restore reactivates a fake-deleted row under its prior user_code.
// Fails with ErrConflict when the code has been taken by an active row.
func Restore(db *gorm.DB, model interface{}, id uint64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(model, "id = ?", id).Error; err != nil {
			return err
		}

		named, ok := model.(interface {
			GetNamedEntity() *NamedEntity
		})
		if !ok {
			return fmt.Errorf("model is not soft-deletable")
		}

		ne := named.GetNamedEntity()
		if !ne.IsDeleted || ne.DeletedUserCode == nil {
			return fmt.Errorf("row is not deleted")
		}

		var count int64
		stmt := &gorm.Statement{DB: tx}
		if err := stmt.Parse(model); err != nil {
			return err
		}
		tx.Table(stmt.Schema.Table).
			Where("tenant_id = ? AND user_code = ? AND is_deleted = false", ne.TenantID, *ne.DeletedUserCode).
			Count(&count)
		if count > 0 {
			return ErrConflict
		}

		return tx.Model(model).Updates(map[string]interface{}{
			"is_deleted":        false,
			"user_code":         *ne.DeletedUserCode,
			"deleted_user_code": nil,
		}).Error
	})
}

func (n *NamedEntity) GetNamedEntity() *NamedEntity { return n }

// IsUniqueViolation reports a postgres duplicate-key failure so callers
// can translate it into ErrConflict and retry.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(err.Error(), "SQLSTATE 23505")
}
