// Package cloud mirrors the local database to a remote snapshot store.
package cloud

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/argon2"

	"github.com/julianstephens/pomolit/internal/constants"
	"github.com/julianstephens/pomolit/internal/models"
)

var (
	// ErrPassphraseRequired is returned when opening a sealed snapshot without a passphrase.
	ErrPassphraseRequired = errors.New("snapshot is encrypted: a passphrase is required")
	// ErrBadPassphrase is returned when a sealed snapshot fails authentication.
	ErrBadPassphrase = errors.New("snapshot could not be decrypted: wrong passphrase or corrupted data")
	// ErrUnsupportedVersion is returned for snapshots written by a newer format.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)

// Snapshot is a full copy of every local table for one user.
type Snapshot struct {
	Version    int                 `json:"version"`
	UserID     string              `json:"user_id"`
	CreatedAt  time.Time           `json:"created_at"`
	Tasks      []models.Task       `json:"tasks"`
	Sessions   []models.Session    `json:"sessions"`
	Folders    []models.NoteFolder `json:"folders"`
	Notes      []models.Note       `json:"notes"`
	UserBadges []models.UserBadge  `json:"user_badges"`
	Profile    models.UserProfile  `json:"profile"`
	Analyses   []models.Analysis   `json:"analyses"`
}

// sealed payload layout: magic | salt | nonce | AES-GCM ciphertext
var sealMagic = []byte("POMOLIT-SEALED1\n")

const (
	saltSize      = 16
	keySize       = 32
	argonTime     = 1
	argonMemoryKB = 64 * 1024
	argonThreads  = 4
)

func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemoryKB, argonThreads, keySize)
}

// IsSealed reports whether payload was produced by Encode with a passphrase.
func IsSealed(payload []byte) bool {
	return bytes.HasPrefix(payload, sealMagic)
}

// Encode serializes snap to JSON and seals it when passphrase is non-empty.
func Encode(snap Snapshot, passphrase string) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if passphrase == "" {
		return data, nil
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, len(sealMagic)+saltSize+len(nonce)+len(data)+gcm.Overhead())
	out = append(out, sealMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, data, sealMagic), nil
}

// Decode opens payload, unsealing it first when it is encrypted.
func Decode(payload []byte, passphrase string) (Snapshot, error) {
	data := payload
	if IsSealed(payload) {
		if passphrase == "" {
			return Snapshot{}, ErrPassphraseRequired
		}
		rest := payload[len(sealMagic):]
		if len(rest) < saltSize {
			return Snapshot{}, ErrBadPassphrase
		}
		salt, rest := rest[:saltSize], rest[saltSize:]
		gcm, err := newGCM(passphrase, salt)
		if err != nil {
			return Snapshot{}, err
		}
		if len(rest) < gcm.NonceSize() {
			return Snapshot{}, ErrBadPassphrase
		}
		nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]
		if data, err = gcm.Open(nil, nonce, ciphertext, sealMagic); err != nil {
			return Snapshot{}, ErrBadPassphrase
		}
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.Version < 1 || snap.Version > constants.SnapshotVersion {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, snap.Version)
	}
	return snap, nil
}

func newGCM(passphrase string, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return gcm, nil
}
