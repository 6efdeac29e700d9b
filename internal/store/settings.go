package store

import (
	"database/sql"
	"errors"
)

// Setting keys.
const (
	// KeyGPTToken is the credential sent with generation requests.
	KeyGPTToken = "gptToken"
	// KeyGenTopic is the last topic used for generation.
	KeyGenTopic = "genTopic"
)

// DefaultTopic prefills the topic field when nothing was generated yet.
const DefaultTopic = "Present Simple"

// Settings is the typed view of the settings table.
type Settings struct {
	GPTToken string
	GenTopic string
}

// SetSetting upserts a key-value pair in the settings table.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		key, value, value,
	)
	return err
}

// Setting returns the value for a settings key.
// Returns empty string and nil error if the key is missing.
func (s *Store) Setting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// DeleteSetting removes a key. Removing a missing key is not an error.
func (s *Store) DeleteSetting(key string) error {
	_, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	return err
}

// Settings reads the known keys. GenTopic falls back to DefaultTopic.
func (s *Store) Settings() (Settings, error) {
	var (
		st  Settings
		err error
	)
	if st.GPTToken, err = s.Setting(KeyGPTToken); err != nil {
		return st, err
	}
	if st.GenTopic, err = s.Setting(KeyGenTopic); err != nil {
		return st, err
	}
	if st.GenTopic == "" {
		st.GenTopic = DefaultTopic
	}
	return st, nil
}
