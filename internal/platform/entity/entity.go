// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package entity holds the identity contract shared by persisted records.
package entity

import (
	"time"

	"github.com/taibuivan/cryptonotify/pkg/uuidv7"
)

// Identifiable is implemented by every persisted record.
type Identifiable interface {
	GetID() string
	Timestamps() (createdAt, updatedAt time.Time)
}

// Base carries the identity fields. Embed it in concrete records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBase assigns a fresh UUIDv7 and stamps both timestamps with now.
func NewBase(now time.Time) Base {
	now = now.UTC()
	return Base{ID: uuidv7.New(), CreatedAt: now, UpdatedAt: now}
}

// GetID implements [Identifiable].
func (b *Base) GetID() string { return b.ID }

// Timestamps implements [Identifiable].
func (b *Base) Timestamps() (time.Time, time.Time) { return b.CreatedAt, b.UpdatedAt }

// Touch moves UpdatedAt forward.
func (b *Base) Touch(now time.Time) { b.UpdatedAt = now.UTC() }
