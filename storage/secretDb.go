///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

// Handles the database ORM for secret shares and tags

package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gitlab.com/elixxir/sharestore/internal/fault"
	"gitlab.com/elixxir/sharestore/internal/share"
	"gorm.io/gorm"
)

// numericTagValue casts integer tag values and yields NULL for the rest
const numericTagValue = "CASE WHEN %[1]s.value ~ '^-?[0-9]+$' " +
	"THEN CAST(%[1]s.value AS NUMERIC) END"

func dbContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), DbTimeout*time.Second)
}

// wraps backend errors which do not carry a kind yet
func dbError(err error, format string, args ...interface{}) error {
	err = catchCde(err)
	if err == nil || fault.KindOf(err) != fault.Unknown {
		return err
	}
	return fault.Wrap(fault.Internal, err, format, args...)
}

func secretExists(tx *gorm.DB, id string) (bool, error) {
	var count int64
	err := tx.Model(&SecretRecord{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func requireSecret(tx *gorm.DB, id string) error {
	exists, err := secretExists(tx, id)
	if err != nil {
		return err
	}
	if !exists {
		return fault.NotFoundf("no secret share with id %s", id)
	}
	return nil
}

// InsertSecret stores a new secret and its tags in one transaction
func (d *DatabaseImpl) InsertSecret(secret *SecretRecord) error {
	ctx, cancel := dbContext()
	defer cancel()

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := secretExists(tx, secret.ID)
		if err != nil {
			return err
		}
		if exists {
			return fault.Conflictf("a secret share with id %s already "+
				"exists", secret.ID)
		}
		return tx.Create(secret).Error
	})
	return dbError(err, "could not insert secret %s", secret.ID)
}

// GetSecret returns the secret with the given ID and its tags
func (d *DatabaseImpl) GetSecret(id string) (*SecretRecord, error) {
	ctx, cancel := dbContext()
	defer cancel()

	result := &SecretRecord{}
	err := d.db.WithContext(ctx).Preload("Tags", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}).Where("id = ?", id).Take(result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.NotFoundf("no secret share with id %s", id)
	}
	if err != nil {
		return nil, dbError(err, "could not get secret %s", id)
	}
	return result, nil
}

// DeleteSecret removes the secret with the given ID; its tags go with it
func (d *DatabaseImpl) DeleteSecret(id string) error {
	ctx, cancel := dbContext()
	defer cancel()

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("secret_id = ?", id).Delete(&TagRecord{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&SecretRecord{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fault.NotFoundf("no secret share with id %s", id)
		}
		return nil
	})
	return dbError(err, "could not delete secret %s", id)
}

// GetTags returns the tags of a secret in position order
func (d *DatabaseImpl) GetTags(secretId string) ([]TagRecord, error) {
	ctx, cancel := dbContext()
	defer cancel()

	var tags []TagRecord
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireSecret(tx, secretId); err != nil {
			return err
		}
		return tx.Where("secret_id = ?", secretId).Order("position").
			Find(&tags).Error
	})
	if err != nil {
		return nil, dbError(err, "could not get tags of secret %s", secretId)
	}
	return tags, nil
}

// GetTag returns a single tag
func (d *DatabaseImpl) GetTag(secretId, key string) (*TagRecord, error) {
	ctx, cancel := dbContext()
	defer cancel()

	result := &TagRecord{}
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireSecret(tx, secretId); err != nil {
			return err
		}
		err := tx.Where("secret_id = ? AND key = ?", secretId, key).
			Take(result).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fault.NotFoundf("no tag with key %q for secret share %s",
				key, secretId)
		}
		return err
	})
	if err != nil {
		return nil, dbError(err, "could not get tag %q of secret %s", key,
			secretId)
	}
	return result, nil
}

func nextPosition(tx *gorm.DB, secretId string) (int, error) {
	var max *int
	err := tx.Model(&TagRecord{}).Where("secret_id = ?", secretId).
		Select("MAX(position)").Row().Scan(&max)
	if err != nil || max == nil {
		return 0, err
	}
	return *max + 1, nil
}

// InsertTag adds a tag at the end of the secret's tag list
func (d *DatabaseImpl) InsertTag(tag *TagRecord) error {
	ctx, cancel := dbContext()
	defer cancel()

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireSecret(tx, tag.SecretID); err != nil {
			return err
		}
		var count int64
		err := tx.Model(&TagRecord{}).Where("secret_id = ? AND key = ?",
			tag.SecretID, tag.Key).Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return fault.Conflictf("tag with key %q already exists for "+
				"secret share %s", tag.Key, tag.SecretID)
		}
		if tag.Position, err = nextPosition(tx, tag.SecretID); err != nil {
			return err
		}
		return tx.Create(tag).Error
	})
	return dbError(err, "could not insert tag %q of secret %s", tag.Key,
		tag.SecretID)
}

// UpsertTag updates the value of an existing tag or appends a new one
func (d *DatabaseImpl) UpsertTag(tag *TagRecord) error {
	ctx, cancel := dbContext()
	defer cancel()

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireSecret(tx, tag.SecretID); err != nil {
			return err
		}
		result := tx.Model(&TagRecord{}).
			Where("secret_id = ? AND key = ?", tag.SecretID, tag.Key).
			Updates(map[string]interface{}{
				"value":      tag.Value,
				"value_type": tag.ValueType,
			})
		if result.Error != nil || result.RowsAffected > 0 {
			return result.Error
		}
		var err error
		if tag.Position, err = nextPosition(tx, tag.SecretID); err != nil {
			return err
		}
		return tx.Create(tag).Error
	})
	return dbError(err, "could not put tag %q of secret %s", tag.Key,
		tag.SecretID)
}

// ReplaceTags deletes every tag of the secret and inserts the given ones
func (d *DatabaseImpl) ReplaceTags(secretId string, tags []TagRecord) error {
	ctx, cancel := dbContext()
	defer cancel()

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireSecret(tx, secretId); err != nil {
			return err
		}
		if err := tx.Where("secret_id = ?", secretId).Delete(&TagRecord{}).Error; err != nil {
			return err
		}
		if len(tags) == 0 {
			return nil
		}
		return tx.Create(&tags).Error
	})
	return dbError(err, "could not replace tags of secret %s", secretId)
}

// DeleteTag removes a single tag
func (d *DatabaseImpl) DeleteTag(secretId, key string) error {
	ctx, cancel := dbContext()
	defer cancel()

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireSecret(tx, secretId); err != nil {
			return err
		}
		result := tx.Where("secret_id = ? AND key = ?", secretId, key).
			Delete(&TagRecord{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fault.NotFoundf("no tag with key %q for secret share %s",
				key, secretId)
		}
		return nil
	})
	return dbError(err, "could not delete tag %q of secret %s", key, secretId)
}

// ListMetadata filters with one EXISTS subquery per predicate, orders by a
// left joined sort tag and preloads the tags of the selected page
func (d *DatabaseImpl) ListMetadata(filters []share.TagFilter, sort share.Sort,
	page share.PageRequest) ([]SecretRecord, int64, error) {
	ctx, cancel := dbContext()
	defer cancel()

	// filters are applied to a fresh statement for the count and the page
	filtered := func() (*gorm.DB, error) {
		query := d.db.WithContext(ctx).Model(&SecretRecord{})
		for _, f := range filters {
			switch f.Operator {
			case share.EQUALS:
				query = query.Where("EXISTS (SELECT 1 FROM tags f WHERE "+
					"f.secret_id = secrets.id AND f.key = ? AND f.value = ?)",
					f.Key, f.Value)
			case share.LESS_THAN, share.GREATER_THAN:
				bound, err := strconv.ParseInt(f.Value, 10, 64)
				if err != nil {
					return nil, fault.InvalidArgumentf("filter %s compares "+
						"against a non numeric value", f)
				}
				query = query.Where("EXISTS (SELECT 1 FROM tags f WHERE "+
					"f.secret_id = secrets.id AND f.key = ? AND "+
					fmt.Sprintf(numericTagValue, "f")+" "+string(f.Operator)+
					" ?)", f.Key, bound)
			default:
				return nil, fault.InvalidArgumentf("unknown filter "+
					"operator %q", f.Operator)
			}
		}
		return query, nil
	}

	query, err := filtered()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err = query.Count(&total).Error; err != nil {
		return nil, 0, dbError(err, "could not count secrets")
	}
	if query, err = filtered(); err != nil {
		return nil, 0, err
	}

	direction := "ASC"
	if sort.Direction == share.DESC {
		direction = "DESC"
	}
	switch {
	case !sort.IsSorted():
		query = query.Order("secrets.id ASC")
	case sort.Property == share.SortByID:
		query = query.Order("secrets.id " + direction)
	default:
		query = query.
			Joins("LEFT JOIN tags sort_tag ON sort_tag.secret_id = secrets.id "+
				"AND sort_tag.key = ?", sort.Property).
			Order("CASE WHEN sort_tag.key IS NULL THEN 1 ELSE 0 END").
			Order("CASE WHEN sort_tag.value_type = 'LONG' THEN " +
				fmt.Sprintf(numericTagValue, "sort_tag") + " END " + direction).
			Order("sort_tag.value " + direction).
			Order("secrets.id ASC")
	}

	if page.Paged {
		query = query.Offset(page.Offset()).Limit(page.Size)
	}

	var records []SecretRecord
	err = query.Select("secrets.id").Preload("Tags", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}).Find(&records).Error
	if err != nil {
		return nil, 0, dbError(err, "could not list secrets")
	}
	return records, total, nil
}
