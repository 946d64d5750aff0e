package expertapi

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"

	crerr "github.com/cockroachdb/errors"
)

// IVSize is the only accepted IV length.
const IVSize = aes.BlockSize

// Cipher seals request envelopes with AES-CBC and PKCS#7 padding.
type Cipher struct {
	block cipher.Block
	iv    []byte
}

func NewCipher(key, iv []byte) (*Cipher, error) {
	if len(iv) != IVSize {
		return nil, crerr.Newf("aes iv must be %d bytes, got %d", IVSize, len(iv))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, crerr.Wrap(err, "create aes cipher")
	}
	return &Cipher{block: block, iv: append([]byte(nil), iv...)}, nil
}

// Seal encrypts plaintext and returns it base64 encoded.
func (c *Cipher) Seal(plaintext []byte) string {
	padded := pkcs7Pad(plaintext, c.block.BlockSize())
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, c.iv).CryptBlocks(out, padded)
	return base64.StdEncoding.EncodeToString(out)
}

// Open reverses Seal.
func (c *Cipher) Open(sealed string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return nil, crerr.Wrap(err, "decode base64 ciphertext")
	}
	size := c.block.BlockSize()
	if len(raw) == 0 || len(raw)%size != 0 {
		return nil, crerr.Newf("ciphertext length %d is not a multiple of %d", len(raw), size)
	}
	out := make([]byte, len(raw))
	cipher.NewCBCDecrypter(c.block, c.iv).CryptBlocks(out, raw)
	return pkcs7Unpad(out, size)
}

func pkcs7Pad(data []byte, size int) []byte {
	n := size - len(data)%size
	return append(append([]byte(nil), data...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty plaintext")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > size || n > len(data) {
		return nil, fmt.Errorf("invalid padding length %d", n)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("invalid padding byte")
		}
	}
	return data[:len(data)-n], nil
}
