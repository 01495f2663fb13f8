package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	badgerMessagePrefix = "chat:msg:"
	badgerSequenceKey   = "chat:seq"
	badgerSeqBandwidth  = 100
)

// BadgerChatMessageDAO keeps the chat log in an embedded badger database.
// Keys are "chat:msg:{id padded to 20 digits}" so a prefix scan walks messages in
// id order; ids come from a badger sequence and only ever grow.
// Insert assigns id and timestamp under one lock, so id order and
// (created_at, id) order always agree.
type BadgerChatMessageDAO struct {
	db  *badger.DB
	seq *badger.Sequence

	mu       sync.Mutex
	lastTime time.Time
}

func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger.Open(%s) -> %w", path, err)
	}

	return db, nil
}

func NewBadgerChatMessageDAO(db *badger.DB) (*BadgerChatMessageDAO, error) {
	seq, err := db.GetSequence([]byte(badgerSequenceKey), badgerSeqBandwidth)
	if err != nil {
		return nil, fmt.Errorf("db.GetSequence -> %w", err)
	}

	return &BadgerChatMessageDAO{
		db:  db,
		seq: seq,
	}, nil
}

type badgerChatMessage struct {
	ID        uint   `json:"id"`
	UserID    string `json:"user_id"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}

func badgerMessageKey(id uint) []byte {
	return []byte(fmt.Sprintf("%s%020d", badgerMessagePrefix, id))
}

func (d *BadgerChatMessageDAO) Insert(ctx context.Context, message ChatMessage) (ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return ChatMessage{}, err
	}

	if err := d.stamp(&message); err != nil {
		return ChatMessage{}, err
	}

	value, err := json.Marshal(badgerChatMessage{
		ID:        message.ID,
		UserID:    message.UserID,
		Content:   message.Content,
		CreatedAt: message.CreatedAt.UnixNano(),
	})
	if err != nil {
		return ChatMessage{}, err
	}

	err = d.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerMessageKey(message.ID), value)
	})
	if err != nil {
		return ChatMessage{}, fmt.Errorf("d.db.Update -> %w", err)
	}

	return message, nil
}

func (d *BadgerChatMessageDAO) stamp(message *ChatMessage) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	next, err := d.seq.Next()
	if err != nil {
		return fmt.Errorf("d.seq.Next -> %w", err)
	}
	// Sequences start at zero; ids start at one like a serial column.
	message.ID = uint(next) + 1

	now := time.Now().UTC()
	if now.Before(d.lastTime) {
		now = d.lastTime
	}
	d.lastTime = now
	message.CreatedAt = now

	return nil
}

// FindLatest returns up to limit messages, newest first.
func (d *BadgerChatMessageDAO) FindLatest(ctx context.Context, limit int) ([]ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	messages := make([]ChatMessage, 0, limit)
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(badgerMessagePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration needs a seek key past every real key of the prefix.
		seek := append([]byte(badgerMessagePrefix), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(opts.Prefix) && len(messages) < limit; it.Next() {
			var stored badgerChatMessage
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &stored)
			})
			if err != nil {
				return err
			}
			messages = append(messages, ChatMessage{
				ID:        stored.ID,
				UserID:    stored.UserID,
				Content:   stored.Content,
				CreatedAt: time.Unix(0, stored.CreatedAt).UTC(),
			})
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("d.db.View -> %w", err)
	}

	return messages, nil
}

func (d *BadgerChatMessageDAO) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int64
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(badgerMessagePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("d.db.View -> %w", err)
	}

	return count, nil
}

// Close returns unused sequence leases. The badger handle is owned by the caller.
func (d *BadgerChatMessageDAO) Close() error {
	return d.seq.Release()
}
