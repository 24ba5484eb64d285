package model

import "time"

// SystemSetting is a key/value pair of runtime configuration stored in the
// database. Secret values are fernet-encrypted before storage.
type SystemSetting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
