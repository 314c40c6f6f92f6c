// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package uuidv7 generates the time-ordered identifiers used as account keys.
package uuidv7

import "github.com/google/uuid"

// New returns a fresh UUIDv7 string. It panics only when the OS random
// source fails, which leaves the process unable to do anything useful.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuidv7: failed to generate UUID: " + err.Error())
	}
	return id.String()
}

// Parse reports whether s is a well-formed UUID and returns its canonical form.
func Parse(s string) (string, bool) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return id.String(), true
}
