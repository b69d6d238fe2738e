package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

var (
	ErrNotFound = errors.New("cookie: not found")
	ErrNoSecret = errors.New("cookie: secret required")
	ErrBadSig   = errors.New("cookie: invalid signature")
	ErrDecrypt  = errors.New("cookie: decryption failed")
)

// Manager reads and writes cookies with shared attributes.
// Signing and encryption keys are derived from a single secret.
type Manager struct {
	signKey  []byte
	encKey   []byte
	domain   string
	path     string
	sameSite http.SameSite
	secure   bool
	httpOnly bool
}

// Option configures the Manager.
type Option func(*Manager)

// New creates a Manager. Defaults: Path=/, HttpOnly, SameSite=Lax.
func New(opts ...Option) *Manager {
	m := &Manager{
		path:     "/",
		httpOnly: true,
		sameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithSecret enables signed and encrypted cookies.
// Any non-empty secret is accepted; separate 32-byte keys are derived for
// signing and for AES-GCM.
func WithSecret(secret string) Option {
	return func(m *Manager) {
		if secret == "" {
			return
		}
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write([]byte("pageforge/cookie/sign"))
		m.signKey = mac.Sum(nil)

		enc := sha256.Sum256([]byte("pageforge/cookie/enc:" + secret))
		m.encKey = enc[:]
	}
}

func WithDomain(domain string) Option {
	return func(m *Manager) { m.domain = domain }
}

func WithPath(path string) Option {
	return func(m *Manager) {
		if path != "" {
			m.path = path
		}
	}
}

func WithSecure(secure bool) Option {
	return func(m *Manager) { m.secure = secure }
}

func WithHTTPOnly(httpOnly bool) Option {
	return func(m *Manager) { m.httpOnly = httpOnly }
}

func WithSameSite(ss http.SameSite) Option {
	return func(m *Manager) { m.sameSite = ss }
}

// Secure reports whether cookies are issued with the Secure attribute.
func (m *Manager) Secure() bool { return m.secure }

// Get returns a plain cookie value.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Set appends a plain cookie to the response.
func (m *Manager) Set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, m.Build(name, value, maxAge))
}

// Delete expires a cookie.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.Build(name, "", -1))
}

// Build returns a cookie carrying the manager's attributes.
func (m *Manager) Build(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: m.httpOnly,
		SameSite: m.sameSite,
	}
}

// GetSigned verifies and returns a signed cookie value.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	if m.signKey == nil {
		return "", ErrNoSecret
	}

	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}

	encValue, encSig, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrBadSig
	}
	value, err := base64.RawURLEncoding.DecodeString(encValue)
	if err != nil {
		return "", ErrBadSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(encSig)
	if err != nil {
		return "", ErrBadSig
	}
	if !hmac.Equal(sig, m.sign(value)) {
		return "", ErrBadSig
	}

	return string(value), nil
}

// SetSigned writes value with an HMAC-SHA256 signature:
// base64(value) "." base64(signature).
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, maxAge int) error {
	if m.signKey == nil {
		return ErrNoSecret
	}

	encoded := base64.RawURLEncoding.EncodeToString([]byte(value)) +
		"." + base64.RawURLEncoding.EncodeToString(m.sign([]byte(value)))

	http.SetCookie(w, m.Build(name, encoded, maxAge))
	return nil
}

// GetEncrypted decrypts and returns an encrypted cookie value.
func (m *Manager) GetEncrypted(r *http.Request, name string) (string, error) {
	if m.encKey == nil {
		return "", ErrNoSecret
	}

	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}

	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return "", ErrDecrypt
	}
	plaintext, err := m.decrypt(data)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plaintext), nil
}

// SetEncrypted writes value sealed with AES-GCM.
func (m *Manager) SetEncrypted(w http.ResponseWriter, name, value string, maxAge int) error {
	if m.encKey == nil {
		return ErrNoSecret
	}

	ciphertext, err := m.encrypt([]byte(value))
	if err != nil {
		return err
	}

	http.SetCookie(w, m.Build(name, base64.RawURLEncoding.EncodeToString(ciphertext), maxAge))
	return nil
}

// GetJSON decrypts an encrypted cookie into dest.
func (m *Manager) GetJSON(r *http.Request, name string, dest any) error {
	raw, err := m.GetEncrypted(r, name)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), dest)
}

// SetJSON encodes v as JSON and stores it in an encrypted cookie.
func (m *Manager) SetJSON(w http.ResponseWriter, name string, v any, maxAge int) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return m.SetEncrypted(w, name, string(data), maxAge)
}

func (m *Manager) sign(value []byte) []byte {
	mac := hmac.New(sha256.New, m.signKey)
	mac.Write(value)
	return mac.Sum(nil)
}

func (m *Manager) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(m.encKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (m *Manager) encrypt(plaintext []byte) ([]byte, error) {
	aead, err := m.aead()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (m *Manager) decrypt(ciphertext []byte) ([]byte, error) {
	aead, err := m.aead()
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < aead.NonceSize() {
		return nil, ErrDecrypt
	}

	nonce, sealed := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	return aead.Open(nil, nonce, sealed, nil)
}
