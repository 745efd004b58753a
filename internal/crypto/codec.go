package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/mvoronkov/go-ledger-sync/models"
)

// ChangeAAD is the change identity the AEAD tag is bound to. Swapping a
// ciphertext between two changes, replaying it under a different operation,
// or rewriting the version vector all break the tag.
type ChangeAAD struct {
	EntityID  string
	Operation models.Operation
	Vector    models.VersionVector
}

// canonical serializes the AAD deterministically: vector components are
// sorted by device ID and length-prefixed, so no two distinct identities
// share an encoding.
func (a ChangeAAD) canonical() []byte {
	devices := make([]string, 0, len(a.Vector))
	for device := range a.Vector {
		devices = append(devices, device)
	}
	sort.Strings(devices)

	buf := make([]byte, 0, 64)
	buf = appendLengthPrefixed(buf, []byte(a.EntityID))
	buf = appendLengthPrefixed(buf, []byte(a.Operation))
	for _, device := range devices {
		buf = appendLengthPrefixed(buf, []byte(device))
		buf = binary.BigEndian.AppendUint64(buf, a.Vector[device])
	}
	return buf
}

func appendLengthPrefixed(buf, b []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(b)))
	return append(buf, b...)
}

// payloadCodec is the private implementation of [PayloadCodec]. It seals
// JSON-serialized entity states with AES-256-GCM, in the usual
// nonce-prefixed blob layout: nonce (12 bytes) ‖ ciphertext ‖ tag.
type payloadCodec struct{}

// NewPayloadCodec constructs a [PayloadCodec]. Stateless; safe for
// concurrent use.
func NewPayloadCodec() PayloadCodec {
	return &payloadCodec{}
}

// Encode implements [PayloadCodec]. The state union is validated before
// sealing so malformed plaintext never reaches the wire, and the payload is
// tagged with the key's epoch so any receiver knows which key generation
// opens it.
func (c *payloadCodec) Encode(state models.EntityState, key KeyMaterial, aad ChangeAAD) (models.EncryptedPayload, error) {
	if err := state.Validate(); err != nil {
		return models.EncryptedPayload{}, fmt.Errorf("validate state: %w", err)
	}

	plaintext, err := json.Marshal(state)
	if err != nil {
		return models.EncryptedPayload{}, fmt.Errorf("marshal state: %w", err)
	}

	gcm, err := newGCM(key.Bytes())
	if err != nil {
		return models.EncryptedPayload{}, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return models.EncryptedPayload{}, fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, aad.canonical())
	return models.EncryptedPayload{
		Epoch:      key.Epoch,
		Ciphertext: append(nonce, ciphertext...),
	}, nil
}

// Decode implements [PayloadCodec]. Errors are always a [*DecodeError]:
//
//   - the key's epoch differs from the payload header → [DecodeWrongKey];
//   - the blob or decrypted plaintext is structurally broken → [DecodeCorrupt];
//   - the tag fails at the matching epoch → [DecodeTampered].
func (c *payloadCodec) Decode(payload models.EncryptedPayload, key KeyMaterial, aad ChangeAAD) (models.EntityState, error) {
	if payload.Epoch != key.Epoch {
		return models.EntityState{}, &DecodeError{
			Kind: DecodeWrongKey,
			err:  fmt.Errorf("payload epoch %d, key epoch %d", payload.Epoch, key.Epoch),
		}
	}

	gcm, err := newGCM(key.Bytes())
	if err != nil {
		return models.EntityState{}, &DecodeError{Kind: DecodeCorrupt, err: err}
	}

	if len(payload.Ciphertext) < gcm.NonceSize() {
		return models.EntityState{}, &DecodeError{
			Kind: DecodeCorrupt,
			err:  fmt.Errorf("ciphertext too short: %d bytes", len(payload.Ciphertext)),
		}
	}
	nonce, ciphertext := payload.Ciphertext[:gcm.NonceSize()], payload.Ciphertext[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, aad.canonical())
	if err != nil {
		// Epochs match, so a tag failure means the envelope was altered.
		return models.EntityState{}, &DecodeError{Kind: DecodeTampered, err: err}
	}

	var state models.EntityState
	if err = json.Unmarshal(plaintext, &state); err != nil {
		return models.EntityState{}, &DecodeError{Kind: DecodeCorrupt, err: err}
	}
	if err = state.Validate(); err != nil {
		return models.EntityState{}, &DecodeError{Kind: DecodeCorrupt, err: err}
	}

	return state, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}
