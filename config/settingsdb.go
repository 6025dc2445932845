package config

import (
	"time"

	"go.etcd.io/bbolt"
)

// settingsBucket holds configuration key/value overrides written by an
// administrator via a tool operating directly on the --db database
// (Charon itself only ever reads this bucket, at startup).
var settingsBucket = []byte("settings")

// LoadSettingsDB reads every key in the settings bucket of the bbolt
// database at path, returning them as a flat string map ready to apply as
// a koanf override layer. A database with no settings bucket yet (e.g. a
// freshly created --db file) is not an error: it simply contributes no
// overrides.
func LoadSettingsDB(path string) (map[string]string, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	defer db.Close()

	overrides := make(map[string]string)
	err = db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(settingsBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			overrides[string(k)] = string(v)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return overrides, nil
}
