package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"gitlab.com/d21d3q/gotechem/internal/frame"
)

var (
	ErrKeyRequired = errors.New("encrypted telegram: AES key required (use --key)")
	ErrInvalidKey  = errors.New("encrypted telegram: AES key rejected (bad plaintext)")
)

const securityModeAesCbcIV = 5

// Decrypt mutates the payload in place when the TPL config word declares
// security mode 5. Frames without that declaration (all proprietary Techem
// layouts included) are left untouched.
func Decrypt(t *frame.Telegram, key []byte) error {
	if !t.TPL.Present || t.TPL.SecurityMode != securityModeAesCbcIV {
		return nil
	}
	if len(t.Payload) >= 2 && t.Payload[0] == 0x2F && t.Payload[1] == 0x2F {
		return nil // already plaintext
	}
	if len(key) == 0 {
		return ErrKeyRequired
	}
	return decryptCBC(t, key)
}

func decryptCBC(t *frame.Telegram, key []byte) error {
	required := encryptedPrefixLen(t)
	if required == 0 {
		return ErrInvalidKey
	}
	if required > len(t.Payload) {
		return fmt.Errorf("encrypted section exceeds payload length (%d > %d)", required, len(t.Payload))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("invalid AES key: %w", err)
	}
	ciphertext := make([]byte, required)
	copy(ciphertext, t.Payload[:required])
	iv := buildShortIV(t)
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(ciphertext, ciphertext)
	if len(ciphertext) < 2 || ciphertext[0] != 0x2F || ciphertext[1] != 0x2F {
		return ErrInvalidKey
	}
	plaintext := append(ciphertext[2:], t.Payload[required:]...)
	t.Payload = plaintext
	return nil
}

// buildShortIV assembles the EN 13757 mode 5 IV from the secondary address
// and the access number repeated over the tail.
func buildShortIV(t *frame.Telegram) []byte {
	iv := make([]byte, 16)
	iv[0] = byte(t.Address.Manufacturer)
	iv[1] = byte(t.Address.Manufacturer >> 8)
	copy(iv[2:6], t.Address.MeterID[:])
	iv[6] = t.Address.Version
	iv[7] = t.Address.DeviceType
	for i := 8; i < 16; i++ {
		iv[i] = t.TPL.AccessNumber
	}
	return iv
}

func encryptedPrefixLen(t *frame.Telegram) int {
	payloadLen := len(t.Payload)
	if payloadLen == 0 {
		return 0
	}
	if t.TPL.EncryptedBlocks > 0 {
		needed := t.TPL.EncryptedBlocks * aes.BlockSize
		if needed > payloadLen {
			needed = payloadLen
		}
		return needed - needed%aes.BlockSize
	}
	return payloadLen - payloadLen%aes.BlockSize
}
