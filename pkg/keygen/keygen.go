// Package keygen generates and loads the RSA key pair used for SSH access to
// the sandbox instance.
//
// Keys are produced in PEM format (private) and OpenSSH authorized_keys
// format (public). The public half is uploaded to AWS as an EC2 key pair.
package keygen

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/crypto/ssh"
)

const (
	// PrivateKeyName is the file name of the private key within the key directory.
	PrivateKeyName = "id_rsa_pulumi"
	// PublicKeyName is the file name of the public key within the key directory.
	PublicKeyName = "id_rsa_pulumi.pub"
)

// KeyPair holds an RSA key pair in ready-to-use formats.
type KeyPair struct {
	// PrivateKey is the RSA private key in PEM-encoded PKCS#1 format.
	PrivateKey []byte
	// PublicKey is the public key in OpenSSH authorized_keys format.
	PublicKey []byte
}

// Generate generates a new RSA key pair with the specified bit size.
func Generate(bits int) (*KeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA private key: %w", err)
	}

	if err := privateKey.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate RSA private key: %w", err)
	}

	privDER := x509.MarshalPKCS1PrivateKey(privateKey)
	privateKeyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: privDER,
	})

	publicKey, err := ssh.NewPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH public key: %w", err)
	}

	return &KeyPair{
		PrivateKey: privateKeyPEM,
		PublicKey:  ssh.MarshalAuthorizedKey(publicKey),
	}, nil
}

// PrivateKeyPath returns the path of the private key within dir.
func PrivateKeyPath(dir string) string {
	return filepath.Join(dir, PrivateKeyName)
}

// PublicKeyPath returns the path of the public key within dir.
func PublicKeyPath(dir string) string {
	return filepath.Join(dir, PublicKeyName)
}

// LoadPublicKey reads the public key from dir. The raw file contents are
// returned unmodified so the uploaded key pair matches the file exactly.
func LoadPublicKey(fs afero.Fs, dir string) ([]byte, error) {
	return afero.ReadFile(fs, PublicKeyPath(dir))
}

// EnsureKeyPair returns the public key from dir, generating and writing a new
// 4096-bit key pair first if no public key exists. An existing key pair is
// never overwritten.
func EnsureKeyPair(fs afero.Fs, dir string) ([]byte, error) {
	pub, err := LoadPublicKey(fs, dir)
	if err == nil {
		return pub, nil
	}

	kp, err := Generate(4096)
	if err != nil {
		return nil, err
	}

	if err := afero.WriteFile(fs, PrivateKeyPath(dir), kp.PrivateKey, 0600); err != nil {
		return nil, fmt.Errorf("failed to write private key: %w", err)
	}
	if err := afero.WriteFile(fs, PublicKeyPath(dir), kp.PublicKey, 0644); err != nil {
		return nil, fmt.Errorf("failed to write public key: %w", err)
	}
	return kp.PublicKey, nil
}
