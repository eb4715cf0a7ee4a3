package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

var errNotLoggedIn = errors.New("not logged in, run `clientdir login` first")

type localSession struct {
	Server    string    `json:"server"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// stateDir is ~/.clientdir unless CLIENTDIR_HOME points elsewhere.
func stateDir() (string, error) {
	if dir := os.Getenv("CLIENTDIR_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".clientdir"), nil
}

func sessionPath(dir string) string {
	return filepath.Join(dir, "session.json")
}

func saveSession(dir string, s localSession) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(sessionPath(dir), data, 0600)
}

// loadSession returns the stored session for server. A missing, expired, or
// foreign session is errNotLoggedIn.
func loadSession(dir, server string, now time.Time) (*localSession, error) {
	b, err := os.ReadFile(sessionPath(dir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errNotLoggedIn
	}
	if err != nil {
		return nil, err
	}
	var s localSession
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode %s: %w", sessionPath(dir), err)
	}
	if s.Server != server || s.Token == "" || !now.Before(s.ExpiresAt) {
		return nil, errNotLoggedIn
	}
	return &s, nil
}

func removeSession(dir string) error {
	err := os.Remove(sessionPath(dir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
