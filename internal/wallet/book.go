package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/goccy/go-json"
)

// Errors.
var (
	ErrWalletNotFound = errors.New("wallet not found")
	ErrWalletExists   = errors.New("wallet already exists")
	ErrInvalidKey     = errors.New("invalid private key")
)

// Wallet is the stored metadata for a keychain-backed signing wallet.
type Wallet struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	KeyRef    string `json:"key_ref"`
	IsDefault bool   `json:"is_default"`
	CreatedAt string `json:"created_at"`
}

// Store is an interface for persisting wallet metadata.
type Store interface {
	Load() ([]*Wallet, error)
	Save([]*Wallet) error
}

// Book tracks the wallets the keyed provider can load.
type Book struct {
	store   Store
	keys    KeystoreBackend
	wallets map[string]*Wallet
	loaded  bool
}

// BookOption configures a Book.
type BookOption func(*Book)

// WithStore sets the metadata store.
func WithStore(s Store) BookOption {
	return func(b *Book) { b.store = s }
}

// WithKeystore sets the key backend.
func WithKeystore(ks KeystoreBackend) BookOption {
	return func(b *Book) { b.keys = ks }
}

// NewBook creates a wallet book. Defaults to in-memory metadata and keys.
func NewBook(opts ...BookOption) *Book {
	b := &Book{
		store:   &memStore{},
		keys:    NewInMemoryKeystore(),
		wallets: make(map[string]*Wallet),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Import derives the address from a hex private key, stores the key in the
// keystore and records the wallet. The first wallet becomes the default.
func (b *Book) Import(name, hexKey string) (*Wallet, error) {
	if err := b.load(); err != nil {
		return nil, err
	}
	if _, exists := b.wallets[name]; exists {
		return nil, ErrWalletExists
	}

	key, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	ref, err := b.keys.Store(name, hexKey)
	if err != nil {
		return nil, fmt.Errorf("storing key: %w", err)
	}

	w := &Wallet{
		Name:      name,
		Address:   crypto.PubkeyToAddress(key.PublicKey).Hex(),
		KeyRef:    ref,
		IsDefault: len(b.wallets) == 0,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	b.wallets[name] = w
	return w, b.persist()
}

// Get returns a wallet by name.
func (b *Book) Get(name string) (*Wallet, error) {
	if err := b.load(); err != nil {
		return nil, err
	}
	w, ok := b.wallets[name]
	if !ok {
		return nil, ErrWalletNotFound
	}
	return w, nil
}

// Remove deletes a wallet and its stored key.
func (b *Book) Remove(name string) error {
	w, err := b.Get(name)
	if err != nil {
		return err
	}
	if err := b.keys.Delete(w.KeyRef); err != nil {
		return fmt.Errorf("deleting key: %w", err)
	}
	delete(b.wallets, name)
	return b.persist()
}

// List returns all wallets ordered by name.
func (b *Book) List() ([]*Wallet, error) {
	if err := b.load(); err != nil {
		return nil, err
	}
	out := make([]*Wallet, 0, len(b.wallets))
	for _, w := range b.wallets {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SetDefault marks a wallet as the default.
func (b *Book) SetDefault(name string) error {
	if _, err := b.Get(name); err != nil {
		return err
	}
	for _, w := range b.wallets {
		w.IsDefault = w.Name == name
	}
	return b.persist()
}

// Default returns the default wallet, or nil if none.
func (b *Book) Default() *Wallet {
	if err := b.load(); err != nil {
		return nil
	}
	for _, w := range b.wallets {
		if w.IsDefault {
			return w
		}
	}
	if len(b.wallets) == 1 {
		for _, w := range b.wallets {
			return w
		}
	}
	return nil
}

// PrivateKey loads the signing key for a wallet (the default when name is "").
func (b *Book) PrivateKey(name string) (*ecdsa.PrivateKey, error) {
	var w *Wallet
	if name == "" {
		if w = b.Default(); w == nil {
			return nil, ErrWalletNotFound
		}
	} else {
		var err error
		if w, err = b.Get(name); err != nil {
			return nil, err
		}
	}

	hexKey, err := b.keys.Retrieve(w.KeyRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}
	key, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return key, nil
}

// --- internal ---

func (b *Book) load() error {
	if b.loaded {
		return nil
	}
	wallets, err := b.store.Load()
	if err != nil {
		return err
	}
	for _, w := range wallets {
		b.wallets[w.Name] = w
	}
	b.loaded = true
	return nil
}

func (b *Book) persist() error {
	wallets := make([]*Wallet, 0, len(b.wallets))
	for _, w := range b.wallets {
		wallets = append(wallets, w)
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].Name < wallets[j].Name })
	return b.store.Save(wallets)
}

// --- in-memory store ---

type memStore struct {
	wallets []*Wallet
}

func (s *memStore) Load() ([]*Wallet, error) {
	return s.wallets, nil
}

func (s *memStore) Save(wallets []*Wallet) error {
	s.wallets = wallets
	return nil
}

// --- JSON file store ---

// JSONStore persists wallets to a JSON file.
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSON-backed wallet store.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Load() ([]*Wallet, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var wallets []*Wallet
	if err := json.Unmarshal(data, &wallets); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return wallets, nil
}

func (s *JSONStore) Save(wallets []*Wallet) error {
	data, err := json.MarshalIndent(wallets, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
