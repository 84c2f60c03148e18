package paytm

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
)

const (
	checksumIV = "@@@@&&&&####$$$$"
	saltChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	saltLength = 4
)

var errBadChecksum = errors.New("malformed checksum")

// GenerateSignature signs params with the merchant key using a fresh salt.
func GenerateSignature(params, key string) (string, error) {
	salt, err := randomSalt()
	if err != nil {
		return "", err
	}
	return checksum(params, key, salt)
}

// VerifySignature recomputes the checksum with the salt embedded in
// signature.
func VerifySignature(params, key, signature string) bool {
	plain, err := decrypt(signature, key)
	if err != nil || len(plain) < saltLength {
		return false
	}
	salt := plain[len(plain)-saltLength:]
	expected, err := checksum(params, key, salt)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(signature))
}

// StringByParams joins form values ordered by key, the way paytm signs
// form posts.
func StringByParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]string, len(keys))
	for i, k := range keys {
		v := params[k]
		if strings.EqualFold(v, "null") {
			v = ""
		}
		values[i] = v
	}
	return strings.Join(values, "|")
}

func checksum(params, key, salt string) (string, error) {
	sum := sha256.Sum256([]byte(params + "|" + salt))
	return encrypt(hex.EncodeToString(sum[:])+salt, key)
}

func encrypt(plain, key string) (string, error) {
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return "", fmt.Errorf("invalid merchant key: %w", err)
	}
	data := pad([]byte(plain), block.BlockSize())
	out := make([]byte, len(data))
	cipher.NewCBCEncrypter(block, []byte(checksumIV)).CryptBlocks(out, data)
	return base64.StdEncoding.EncodeToString(out), nil
}

func decrypt(encoded, key string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return "", err
	}
	if len(data) == 0 || len(data)%block.BlockSize() != 0 {
		return "", errBadChecksum
	}
	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, []byte(checksumIV)).CryptBlocks(out, data)
	plain, err := unpad(out, block.BlockSize())
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func pad(data []byte, size int) []byte {
	n := size - len(data)%size
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte, size int) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > size || n > len(data) {
		return nil, errBadChecksum
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errBadChecksum
		}
	}
	return data[:len(data)-n], nil
}

func randomSalt() (string, error) {
	out := make([]byte, saltLength)
	limit := big.NewInt(int64(len(saltChars)))
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		out[i] = saltChars[n.Int64()]
	}
	return string(out), nil
}
