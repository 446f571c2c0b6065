package keygen

import (
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func TestGenerate(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	kp, err := Generate(2048)
	require.NoError(err)
	require.NotNil(kp)

	block, _ := pem.Decode(kp.PrivateKey)
	require.NotNil(block, "private key must be PEM encoded")
	assert.Equal("RSA PRIVATE KEY", block.Type)

	priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	require.NoError(err)
	assert.Equal(2048, priv.N.BitLen())

	pub, _, _, _, err := ssh.ParseAuthorizedKey(kp.PublicKey)
	require.NoError(err)
	assert.Equal("ssh-rsa", pub.Type())
}

func TestGenerateInvalidBits(t *testing.T) {
	for _, bits := range []int{0, -1} {
		_, err := Generate(bits)
		assert.Error(t, err)
	}
}

func TestEnsureKeyPair(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	fs := afero.NewMemMapFs()
	require.NoError(fs.MkdirAll("keys", 0755))

	pub, err := EnsureKeyPair(fs, "keys")
	require.NoError(err)
	assert.True(strings.HasPrefix(string(pub), "ssh-rsa "))

	onDisk, err := LoadPublicKey(fs, "keys")
	require.NoError(err)
	assert.Equal(pub, onDisk, "returned key must equal the file contents")

	exists, err := afero.Exists(fs, PrivateKeyPath("keys"))
	require.NoError(err)
	assert.True(exists)

	// A second call must not regenerate the key pair.
	again, err := EnsureKeyPair(fs, "keys")
	require.NoError(err)
	assert.Equal(pub, again)
}

func TestLoadPublicKeyMissing(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := LoadPublicKey(fs, ".")
	assert.Error(t, err)
}
