package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/key_service_mock.go -package=mock

import "github.com/mvoronkov/go-ledger-sync/models"

// KeyService is the root of the key hierarchy. It knows nothing about the
// network, the relay, or storage; its only job is turning a user passphrase
// into role-scoped symmetric keys.
//
// Derivation chain:
//
//	master  = DeriveMasterKey(passphrase, salt)     (once per session, slow)
//	roleKey = DeriveRoleKey(master, role, epoch)    (cheap, deterministic)
//
// Because role keys are a pure function of (master, role, epoch), any device
// holding the master key recomputes every role key for every epoch without
// network calls. The relay never stores key material of any kind.
type KeyService interface {
	// GenerateSalt returns a random 16-byte per-user salt. The salt is not
	// secret and may be stored in the clear.
	GenerateSalt() ([]byte, error)

	// DeriveMasterKey derives the 256-bit master key from the user
	// passphrase via Argon2id. Deliberately slow (~100ms class); callers
	// treat it as a blocking operation. The result never leaves the device.
	DeriveMasterKey(passphrase string, salt []byte) []byte

	// DeriveRoleKey derives the symmetric key for (role, epoch) from the
	// master key via HKDF-SHA256.
	DeriveRoleKey(master []byte, role Role, epoch uint64) KeyMaterial
}

// PayloadCodec seals and opens entity states. The associated data binds the
// change identity (entity, operation, version vector) into the AEAD tag, so
// a ciphertext cannot be replayed under a different change.
type PayloadCodec interface {
	Encode(state models.EntityState, key KeyMaterial, aad ChangeAAD) (models.EncryptedPayload, error)
	Decode(payload models.EncryptedPayload, key KeyMaterial, aad ChangeAAD) (models.EntityState, error)
}
