package report

import (
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func TestSeal_RoundTrip(t *testing.T) {
	key, err := GenerateSealKey()
	assert.NoError(t, err)

	table := sampleCurve()
	sealed, err := Seal(table, key)
	assert.NoError(t, err)
	check.True(t, len(sealed) > 0)

	opened, err := OpenSealed(sealed, &key.PublicKey)
	assert.NoError(t, err)
	assertSameTable(t, table, opened)
}

func TestOpenSealed_WrongKey(t *testing.T) {
	key, err := GenerateSealKey()
	assert.NoError(t, err)
	other, err := GenerateSealKey()
	assert.NoError(t, err)

	sealed, err := Seal(sampleCurve(), key)
	assert.NoError(t, err)

	opened, err := OpenSealed(sealed, &other.PublicKey)
	check.Error(t, err)
	check.Nil(t, opened)
}

func TestOpenSealed_Tampered(t *testing.T) {
	key, err := GenerateSealKey()
	assert.NoError(t, err)

	sealed, err := Seal(sampleCurve(), key)
	assert.NoError(t, err)

	// Flip a byte in the middle of the message, inside the payload
	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)/2] ^= 0xff

	_, err = OpenSealed(tampered, &key.PublicKey)
	check.Error(t, err)
}

func TestOpenSealed_Garbage(t *testing.T) {
	key, err := GenerateSealKey()
	assert.NoError(t, err)

	_, err = OpenSealed([]byte("not cose"), &key.PublicKey)
	check.Error(t, err)
}

func TestKeyPEM_RoundTrip(t *testing.T) {
	key, err := GenerateSealKey()
	assert.NoError(t, err)

	privPEM, err := EncodePrivateKeyPEM(key)
	assert.NoError(t, err)
	parsed, err := ParsePrivateKeyPEM(privPEM)
	assert.NoError(t, err)
	check.True(t, key.Equal(parsed))

	pubPEM, err := EncodePublicKeyPEM(&key.PublicKey)
	assert.NoError(t, err)
	pub, err := ParsePublicKeyPEM(pubPEM)
	assert.NoError(t, err)
	check.True(t, key.PublicKey.Equal(pub))
}

func TestParseKeyPEM_Invalid(t *testing.T) {
	_, err := ParsePrivateKeyPEM([]byte("garbage"))
	check.Error(t, err)

	_, err = ParsePublicKeyPEM([]byte("garbage"))
	check.Error(t, err)

	key, err := GenerateSealKey()
	assert.NoError(t, err)
	pubPEM, err := EncodePublicKeyPEM(&key.PublicKey)
	assert.NoError(t, err)

	_, err = ParsePrivateKeyPEM(pubPEM)
	check.Error(t, err)
}
