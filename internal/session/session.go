// Package session defines the SessionIo collaborator interface of
// spec.md §6 ("register(user?) -> (user_id, session_id), unregister(user_id),
// fetch(session_id) -> user_id") plus a bbolt-backed implementation, so a
// room server embedding the engine has real session persistence rather than
// an in-memory map (SPEC_FULL.md §7).
package session

import (
	"crypto/rand"
	"encoding/hex"

	"go.etcd.io/bbolt"

	"github.com/meltosvc/tvc/internal/tvcerr"
)

// UserID and SessionID are opaque identifiers minted by Register.
type UserID string
type SessionID string

// SessionIo is the interface TVC's room layer needs to authenticate callers
// driving the engine. It is orthogonal to TVC itself: no engine operation
// takes a SessionID.
type SessionIo interface {
	Register(user UserID) (UserID, SessionID, error)
	Unregister(user UserID) error
	Fetch(session SessionID) (UserID, error)
}

var sessionBucket = []byte("sessions")

// BoltSessionIo persists session->user mappings in a single bbolt bucket,
// following javanhut-IvaldiVCS's internal/store/kv.go bucket-per-concern
// shape.
type BoltSessionIo struct {
	db *bbolt.DB
}

// OpenBoltSessionIo opens (creating if absent) a bbolt database at path and
// ensures the sessions bucket exists.
func OpenBoltSessionIo(path string) (*BoltSessionIo, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, tvcerr.Wrap("session.OpenBoltSessionIo", tvcerr.KindIO, err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(sessionBucket)
		return e
	}); err != nil {
		_ = db.Close()
		return nil, tvcerr.Wrap("session.OpenBoltSessionIo", tvcerr.KindIO, err)
	}
	return &BoltSessionIo{db: db}, nil
}

func (b *BoltSessionIo) Close() error { return b.db.Close() }

func newID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Register mints a fresh session for user, generating a new user ID if user
// is empty.
func (b *BoltSessionIo) Register(user UserID) (UserID, SessionID, error) {
	if user == "" {
		id, err := newID()
		if err != nil {
			return "", "", tvcerr.Wrap("session.Register", tvcerr.KindIO, err)
		}
		user = UserID(id)
	}
	sid, err := newID()
	if err != nil {
		return "", "", tvcerr.Wrap("session.Register", tvcerr.KindIO, err)
	}
	session := SessionID(sid)

	err = b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionBucket).Put([]byte(session), []byte(user))
	})
	if err != nil {
		return "", "", tvcerr.Wrap("session.Register", tvcerr.KindIO, err)
	}
	return user, session, nil
}

// Unregister removes every session belonging to user.
func (b *BoltSessionIo) Unregister(user UserID) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(sessionBucket)
		var stale [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			if UserID(v) == user {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// Fetch resolves a session ID back to the user that registered it.
func (b *BoltSessionIo) Fetch(sess SessionID) (UserID, error) {
	var user UserID
	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(sessionBucket).Get([]byte(sess))
		if v == nil {
			return tvcerr.New("session.Fetch", tvcerr.KindObjectNotFound)
		}
		user = UserID(v)
		return nil
	})
	if err != nil {
		if tvcerr.Is(err, tvcerr.KindObjectNotFound) {
			return "", err
		}
		return "", tvcerr.Wrap("session.Fetch", tvcerr.KindIO, err)
	}
	return user, nil
}
