package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

// Role scopes a derived key to one access level within a company. Devices
// are granted the master key of the highest role they hold; lower-role keys
// are derivable, higher ones are not part of this layer.
type Role string

const (
	RoleOwner      Role = "owner"
	RoleAccountant Role = "accountant"
	RoleViewer     Role = "viewer"
)

// KeyMaterial is one role-scoped symmetric key at one rotation epoch.
// Callers must Zeroize it when the epoch is superseded or the session ends.
type KeyMaterial struct {
	Role  Role
	Epoch uint64

	key []byte
}

// Bytes returns the raw 32-byte key. The slice aliases the internal buffer;
// it becomes unusable after Zeroize.
func (k KeyMaterial) Bytes() []byte { return k.key }

// Zeroize overwrites the key bytes in place.
func (k *KeyMaterial) Zeroize() {
	for i := range k.key {
		k.key[i] = 0
	}
	k.key = nil
}

// keyService is the private implementation of [KeyService].
type keyService struct {
	// Argon2id tuning parameters. Stored in the struct so they can be
	// adjusted per deployment target (e.g. mobile vs. desktop).
	argonTime    uint32
	argonMemory  uint32
	argonThreads uint8
	argonKeyLen  uint32
}

// NewKeyService constructs a [KeyService] with the Argon2id parameters
// recommended by OWASP (2024):
//   - time cost:   1 iteration
//   - memory cost: 64 MiB
//   - parallelism: 4 threads
//   - key length:  32 bytes (256 bits)
func NewKeyService() KeyService {
	return &keyService{
		argonTime:    1,
		argonMemory:  64 * 1024, // 64 MiB
		argonThreads: 4,
		argonKeyLen:  32, // 256 bits
	}
}

// GenerateSalt implements [KeyService]. It reads 16 random bytes from the
// OS CSPRNG. Returns an error if the random read fails.
func (k *keyService) GenerateSalt() ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// DeriveMasterKey implements [KeyService]. The derivation is memory-hard on
// purpose; it runs once at session start and the result lives only in
// client memory.
func (k *keyService) DeriveMasterKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey(
		[]byte(passphrase),
		salt,
		k.argonTime,
		k.argonMemory,
		k.argonThreads,
		k.argonKeyLen,
	)
}

// DeriveRoleKey implements [KeyService]. The HKDF info string domain-
// separates every (role, epoch) pair, so bumping the epoch changes every
// role key and a revoked device holding old-epoch keys cannot compute the
// new ones without the master key.
func (k *keyService) DeriveRoleKey(master []byte, role Role, epoch uint64) KeyMaterial {
	info := fmt.Sprintf("ledger-sync/v1/role:%s/epoch:%d", role, epoch)

	key := make([]byte, 32)
	r := hkdf.New(sha256.New, master, nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		// hkdf only errors past its output limit; 32 bytes never reaches it.
		panic(fmt.Sprintf("hkdf expand: %v", err))
	}

	return KeyMaterial{Role: role, Epoch: epoch, key: key}
}

// Keyring caches role keys derived from one master key and tracks the
// current rotation epoch. It re-derives keys for older epochs on demand so
// payloads sealed before a rotation still open, while Advance zeroizes the
// cached copies of superseded epochs so new material stops referencing them.
type Keyring struct {
	svc    KeyService
	master []byte

	mu    sync.Mutex
	epoch uint64
	cache map[string]KeyMaterial
}

// NewKeyring wraps master (ownership transfers to the keyring) at the given
// starting epoch.
func NewKeyring(svc KeyService, master []byte, epoch uint64) *Keyring {
	return &Keyring{
		svc:    svc,
		master: master,
		epoch:  epoch,
		cache:  make(map[string]KeyMaterial),
	}
}

// Epoch returns the current rotation epoch.
func (r *Keyring) Epoch() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.epoch
}

// Current returns the key for role at the current epoch.
func (r *Keyring) Current(role Role) KeyMaterial {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keyForLocked(role, r.epoch)
}

// KeyFor returns the key for role at an explicit epoch. Decryption always
// uses the epoch named in the payload header, never the latest one the
// device knows, so in-flight pushes sealed just before a rotation still
// open.
func (r *Keyring) KeyFor(role Role, epoch uint64) KeyMaterial {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keyForLocked(role, epoch)
}

// Stale reports whether payloads sealed at epoch must no longer be
// accepted. One epoch behind the current one is within the in-flight
// grace window: a push sealed just before a rotation still lands. Anything
// older is the output of a revoked key and is rejected without decrypting.
func (r *Keyring) Stale(epoch uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return epoch+1 < r.epoch
}

func (r *Keyring) keyForLocked(role Role, epoch uint64) KeyMaterial {
	id := fmt.Sprintf("%s@%d", role, epoch)
	if key, ok := r.cache[id]; ok {
		return key
	}
	key := r.svc.DeriveRoleKey(r.master, role, epoch)
	r.cache[id] = key
	return key
}

// Advance moves the keyring to a newer epoch and zeroizes cached keys of all
// earlier epochs. Moving backwards is a no-op: an epoch observed from a peer
// is a floor, not an assignment.
func (r *Keyring) Advance(epoch uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if epoch <= r.epoch {
		return
	}
	r.epoch = epoch

	for id, key := range r.cache {
		if key.Epoch < epoch {
			key.Zeroize()
			delete(r.cache, id)
		}
	}
}

// Zeroize wipes the master key and every cached role key. The keyring is
// unusable afterwards; call it on revocation and on process exit.
func (r *Keyring) Zeroize() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.master {
		r.master[i] = 0
	}
	r.master = nil

	for id, key := range r.cache {
		key.Zeroize()
		delete(r.cache, id)
	}
}
