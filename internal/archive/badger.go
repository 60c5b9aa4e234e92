// Package archive keeps debate transcripts in BadgerDB once the coordinator
// drains them.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"debateroom/internal/debate"
)

var ErrTranscriptNotFound = errors.New("transcript not found")

// TranscriptRepository stores one topic snapshot under topic:{id} and each
// message under msg:{id}:{seq} so a prefix scan returns them in transcript
// order whatever their timestamps say.
type TranscriptRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewTranscriptRepository(db *badger.DB, log *slog.Logger) *TranscriptRepository {
	return &TranscriptRepository{
		db:  db,
		log: log,
	}
}

// Open opens (or creates) a badger directory at path.
func Open(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	return db, nil
}

// OpenReadOnly opens an existing archive for inspection.
func OpenReadOnly(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	return db, nil
}

type storedTopic struct {
	Topic      debate.Snapshot `json:"topic"`
	Messages   int             `json:"messages"`
	ArchivedAt int64           `json:"archivedAt"`
}

func topicKey(id string) []byte {
	return []byte("topic:" + id)
}

func messagePrefix(id string) []byte {
	return []byte("msg:" + id + ":")
}

func messageKey(id string, seq int) []byte {
	return []byte(fmt.Sprintf("msg:%s:%06d", id, seq))
}

// SaveTranscript writes the record in a single transaction, replacing any
// earlier archive of the same topic.
func (r *TranscriptRepository) SaveTranscript(ctx context.Context, record debate.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	head, err := json.Marshal(storedTopic{
		Topic:      record.Topic,
		Messages:   len(record.Messages),
		ArchivedAt: record.ArchivedAt.UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("marshal topic %s: %w", record.Topic.ID, err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		if err := deletePrefix(txn, messagePrefix(record.Topic.ID)); err != nil {
			return err
		}
		if err := txn.Set(topicKey(record.Topic.ID), head); err != nil {
			return err
		}
		for i, msg := range record.Messages {
			data, err := json.Marshal(msg)
			if err != nil {
				return fmt.Errorf("marshal message %d: %w", i, err)
			}
			if err := txn.Set(messageKey(record.Topic.ID, i), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("archive topic %s: %w", record.Topic.ID, err)
	}
	r.log.Debug("Transcript archived", "topic", record.Topic.ID, "messages", len(record.Messages))
	return nil
}

func deletePrefix(txn *badger.Txn, prefix []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()
	for _, key := range keys {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// Topics returns every archived topic snapshot.
func (r *TranscriptRepository) Topics() ([]debate.Snapshot, error) {
	var topics []debate.Snapshot
	prefix := []byte("topic:")

	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(v []byte) error {
				var stored storedTopic
				if err := json.Unmarshal(v, &stored); err != nil {
					return fmt.Errorf("failed to unmarshal topic: %w", err)
				}
				topics = append(topics, stored.Topic)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error during topic scan: %w", err)
	}
	return topics, nil
}

// Messages returns the archived transcript of one topic in order.
func (r *TranscriptRepository) Messages(topicID string) ([]debate.ChatMessage, error) {
	var messages []debate.ChatMessage
	prefix := messagePrefix(topicID)

	err := r.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get(topicKey(topicID)); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrTranscriptNotFound
		} else if err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(v []byte) error {
				var msg debate.ChatMessage
				if err := json.Unmarshal(v, &msg); err != nil {
					return fmt.Errorf("failed to unmarshal message: %w", err)
				}
				messages = append(messages, msg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}
