package auth

import (
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/scrypt"
)

// MaxPasswordBytes ограничивает длину пароля: bcrypt не принимает более 72 байт.
const MaxPasswordBytes = 72

// HashPassword хэширует пароль bcrypt.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

// CheckPassword сравнивает пароль с хэшем. Поддерживает bcrypt и старый формат scrypt "hex.salt".
func CheckPassword(password, hash string) bool {
	if strings.HasPrefix(hash, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}
	return checkLegacyScrypt(password, hash)
}

// NeedsRehash сообщает, что хэш в устаревшем формате.
func NeedsRehash(hash string) bool {
	return !strings.HasPrefix(hash, "$2")
}

func checkLegacyScrypt(password, stored string) bool {
	hexHash, salt, ok := strings.Cut(stored, ".")
	if !ok || salt == "" {
		return false
	}
	expected, err := hex.DecodeString(hexHash)
	if err != nil || len(expected) == 0 {
		return false
	}
	derived, err := scrypt.Key([]byte(password), []byte(salt), 16384, 8, 1, len(expected))
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(derived, expected) == 1
}
