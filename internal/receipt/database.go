package receipt

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

const (
	lineItemBucketName    = "line_items"
	observationBucketName = "price_observations"
)

// Store is the durable, append-only repository boundary. Both record kinds
// live behind one interface because a receipt's line items and price
// observations must be written atomically as a set, which two independent
// stores cannot guarantee. Every query carries an owner id; there is no way
// to read across owners.
type Store interface {
	// SaveReceipt persists all records from one receipt in a single
	// transaction: either everything is durable or nothing is.
	SaveReceipt(items []LineItem, observations []PriceObservation) error

	// LineItemsByOwner returns the owner's line items ordered by purchase
	// date ascending, then product name ascending.
	LineItemsByOwner(owner int64) ([]LineItem, error)

	// ObservationsByProduct returns the owner's price observations for one
	// product (exact name match) ordered by date ascending.
	ObservationsByProduct(owner int64, product string) ([]PriceObservation, error)

	// Close closes the underlying database.
	Close() error
}

// BoltStore implements Store using BoltDB.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens (or creates) the database file and its buckets.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(lineItemBucketName)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(observationBucketName)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// recordKey prefixes every key with the big-endian owner id so that one
// cursor prefix scan covers exactly one owner. The bucket sequence number
// keeps keys unique and preserves insertion order within an owner.
func recordKey(owner int64, seq uint64) []byte {
	key := make([]byte, 16)
	binary.BigEndian.PutUint64(key[:8], uint64(owner))
	binary.BigEndian.PutUint64(key[8:], seq)
	return key
}

func ownerPrefix(owner int64) []byte {
	prefix := make([]byte, 8)
	binary.BigEndian.PutUint64(prefix, uint64(owner))
	return prefix
}

// SaveReceipt writes all line items and price observations from one receipt
// in a single bolt transaction.
func (b *BoltStore) SaveReceipt(items []LineItem, observations []PriceObservation) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		itemBucket := tx.Bucket([]byte(lineItemBucketName))
		for _, item := range items {
			seq, err := itemBucket.NextSequence()
			if err != nil {
				return fmt.Errorf("allocating line item key: %w", err)
			}
			data, err := json.Marshal(item)
			if err != nil {
				return fmt.Errorf("marshaling line item: %w", err)
			}
			if err := itemBucket.Put(recordKey(item.Owner, seq), data); err != nil {
				return fmt.Errorf("writing line item: %w", err)
			}
		}

		obsBucket := tx.Bucket([]byte(observationBucketName))
		for _, obs := range observations {
			seq, err := obsBucket.NextSequence()
			if err != nil {
				return fmt.Errorf("allocating observation key: %w", err)
			}
			data, err := json.Marshal(obs)
			if err != nil {
				return fmt.Errorf("marshaling observation: %w", err)
			}
			if err := obsBucket.Put(recordKey(obs.Owner, seq), data); err != nil {
				return fmt.Errorf("writing observation: %w", err)
			}
		}
		return nil
	})
}

// LineItemsByOwner returns the owner's line items ordered by purchase date,
// then product name.
func (b *BoltStore) LineItemsByOwner(owner int64) ([]LineItem, error) {
	items := make([]LineItem, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket([]byte(lineItemBucketName)).Cursor()
		prefix := ownerPrefix(owner)
		for k, v := cursor.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = cursor.Next() {
			var item LineItem
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("unmarshaling line item: %w", err)
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].PurchaseDate.Equal(items[j].PurchaseDate) {
			return items[i].PurchaseDate.Before(items[j].PurchaseDate)
		}
		return items[i].ProductName < items[j].ProductName
	})
	return items, nil
}

// ObservationsByProduct returns the owner's observations for one product
// ordered by date.
func (b *BoltStore) ObservationsByProduct(owner int64, product string) ([]PriceObservation, error) {
	observations := make([]PriceObservation, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket([]byte(observationBucketName)).Cursor()
		prefix := ownerPrefix(owner)
		for k, v := cursor.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = cursor.Next() {
			var obs PriceObservation
			if err := json.Unmarshal(v, &obs); err != nil {
				return fmt.Errorf("unmarshaling observation: %w", err)
			}
			if obs.ProductName == product {
				observations = append(observations, obs)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(observations, func(i, j int) bool {
		return observations[i].Date.Before(observations[j].Date)
	})
	return observations, nil
}

// Close closes the database.
func (b *BoltStore) Close() error {
	return b.db.Close()
}
