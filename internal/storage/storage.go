// Package storage keeps per-guild bot state on top of the datastore.
package storage

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"command-plugins/datastore"
)

const commandHistoryLimit int = 20

type Storage struct {
	ds *datastore.DataStore
	// mu serialises read-modify-write cycles on guild records.
	mu sync.Mutex
}

// InvocationRecord is one entry of a guild's command history.
type InvocationRecord struct {
	// ID matches the "invocation" field of the log line for the same run.
	ID        string    `json:"id,omitempty"`
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Slash     bool      `json:"slash"`
	HaltedBy  string    `json:"halted_by,omitempty"`
	Error     string    `json:"error,omitempty"`
	Datetime  time.Time `json:"datetime"`
}

type Record struct {
	CommandsHistory    []InvocationRecord `json:"commands_history"`
	CategoriesDisabled []string           `json:"categories_disabled"`
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

// NewWithDataStore wraps an already opened datastore.
func NewWithDataStore(ds *datastore.DataStore) *Storage {
	return &Storage{ds: ds}
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

func guildKey(guildID string) string { return "guild:" + guildID }

func (s *Storage) record(guildID string) (*Record, error) {
	var r Record
	if _, err := s.ds.Get(guildKey(guildID), &r); err != nil {
		return nil, fmt.Errorf("load guild %s: %w", guildID, err)
	}
	return &r, nil
}

func (s *Storage) update(guildID string, fn func(r *Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.record(guildID)
	if err != nil {
		return err
	}
	fn(r)
	if err := s.ds.Put(guildKey(guildID), r); err != nil {
		return fmt.Errorf("save guild %s: %w", guildID, err)
	}
	return nil
}

// AppendInvocation adds rec to the guild's history, keeping the newest entries.
func (s *Storage) AppendInvocation(guildID string, rec InvocationRecord) error {
	return s.update(guildID, func(r *Record) {
		r.CommandsHistory = append(r.CommandsHistory, rec)
		if n := len(r.CommandsHistory); n > commandHistoryLimit {
			r.CommandsHistory = r.CommandsHistory[n-commandHistoryLimit:]
		}
	})
}

// FetchInvocations returns the guild's history, oldest first.
func (s *Storage) FetchInvocations(guildID string) ([]InvocationRecord, error) {
	r, err := s.record(guildID)
	if err != nil {
		return nil, err
	}
	return r.CommandsHistory, nil
}

func (s *Storage) DisableCategory(guildID, category string) error {
	return s.update(guildID, func(r *Record) {
		if !slices.Contains(r.CategoriesDisabled, category) {
			r.CategoriesDisabled = append(r.CategoriesDisabled, category)
		}
	})
}

func (s *Storage) EnableCategory(guildID, category string) error {
	return s.update(guildID, func(r *Record) {
		r.CategoriesDisabled = slices.DeleteFunc(r.CategoriesDisabled, func(c string) bool {
			return c == category
		})
	})
}

func (s *Storage) IsCategoryDisabled(guildID, category string) (bool, error) {
	r, err := s.record(guildID)
	if err != nil {
		return false, err
	}
	return slices.Contains(r.CategoriesDisabled, category), nil
}

func (s *Storage) DisabledCategories(guildID string) ([]string, error) {
	r, err := s.record(guildID)
	if err != nil {
		return nil, err
	}
	return r.CategoriesDisabled, nil
}

// Stats reports how many keys the store holds and their encoded size in bytes.
func (s *Storage) Stats() (keys int, size int64) {
	return s.ds.Stats()
}

const commandsHashKey = "meta:commands_hash"

// CommandsHash returns the hash of the slash command set last pushed to Discord.
func (s *Storage) CommandsHash() (string, error) {
	var hash string
	if _, err := s.ds.Get(commandsHashKey, &hash); err != nil {
		return "", err
	}
	return hash, nil
}

func (s *Storage) SetCommandsHash(hash string) error {
	return s.ds.Put(commandsHashKey, hash)
}
