package state

import (
	"errors"
	"fmt"
	"strconv"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"cashchain/storage"
)

// Manager provides typed access to the engine's persisted state over a raw
// key-value database. Values are RLP encoded; keys are hashed so arbitrary
// user and asset identifiers cannot collide with internal slots.
type Manager struct {
	db storage.Database
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

var (
	configKey         = ethcrypto.Keccak256([]byte("cashback/config"))
	lastCampaignIDKey = ethcrypto.Keccak256([]byte("cashback/last-campaign-id"))
	whitelistKey      = ethcrypto.Keccak256([]byte("cashback/whitelist"))
	pendingIndexKey   = ethcrypto.Keccak256([]byte("cashback/pending/index"))
)

func campaignKey(id uint64) []byte {
	return ethcrypto.Keccak256([]byte("cashback/campaign/" + strconv.FormatUint(id, 10)))
}

func pendingKey(user string) []byte {
	return ethcrypto.Keccak256([]byte("cashback/pending/entry/" + user))
}

func historyKey(campaignID uint64, user string) []byte {
	return ethcrypto.Keccak256([]byte("cashback/history/" + strconv.FormatUint(campaignID, 10) + "/" + user))
}

func balanceKey(user, assetID string) []byte {
	return ethcrypto.Keccak256([]byte("balance/" + assetID + ":" + user))
}

// kvGet decodes the value stored under key into out. The boolean reports
// whether the key exists.
func (m *Manager) kvGet(key []byte, out interface{}) (bool, error) {
	data, err := m.db.Get(key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, fmt.Errorf("state: decode %x: %w", key, err)
	}
	return true, nil
}

func (m *Manager) kvPut(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state: encode %x: %w", key, err)
	}
	return m.db.Put(key, encoded)
}

func (m *Manager) kvDelete(key []byte) error {
	return m.db.Delete(key)
}
