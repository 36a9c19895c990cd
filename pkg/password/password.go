// Package password — scrypt tabanlı şifre hash'leme ve doğrulama.
//
// Neden scrypt?
// Memory-hard bir KDF'tir: GPU/ASIC ile brute-force maliyetini bellek
// gereksinimiyle artırır. SHA256 gibi hızlı hash'ler şifre için UYGUN DEĞİLDİR —
// saldırgan saniyede milyarlarca deneme yapabilir.
//
// Kayıt formatı: hex(digest) + "." + hex(salt)
// Salt her hash'te rastgele üretilir — aynı şifre iki kez hash'lenirse
// iki farklı kayıt çıkar (rainbow table koruması).
//
// pkg/password hiçbir proje içi pakete bağımlı değildir (leaf dependency).
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// scrypt parametreleri. N iş faktörüdür (CPU+bellek maliyeti) —
// değiştirilirse eski kayıtlar doğrulanamaz hale GELMEZ çünkü
// doğrulama aynı sabitlerle yeniden hesaplar; parametre değişimi
// yeni bir kayıt formatı versiyonu gerektirir.
const (
	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	saltLength   = 16
	digestLength = 64
)

// Hash, şifreden tuzlu scrypt kaydı üretir.
func Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	digest, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, digestLength)
	if err != nil {
		return "", fmt.Errorf("failed to derive key: %w", err)
	}

	return hex.EncodeToString(digest) + "." + hex.EncodeToString(salt), nil
}

// Verify, şifreyi saklanan kayıtla karşılaştırır.
//
// Karşılaştırma subtle.ConstantTimeCompare ile yapılır — ilk farklı byte'ta
// durmaz. Kısa devre yapan bir karşılaştırma, timing ölçümüyle digest'in
// hangi prefix'inin doğru olduğunu sızdırabilirdi.
//
// Bozuk kayıt (yanlış parça sayısı, geçersiz hex, yanlış uzunluk) hata DEĞİL,
// "eşleşmedi"dir — çağıran tarafa DB içeriği hakkında bilgi sızdırılmaz.
func Verify(password, record string) bool {
	parts := strings.Split(record, ".")
	if len(parts) != 2 {
		return false
	}

	storedDigest, err := hex.DecodeString(parts[0])
	if err != nil || len(storedDigest) != digestLength {
		return false
	}

	salt, err := hex.DecodeString(parts[1])
	if err != nil || len(salt) == 0 {
		return false
	}

	digest, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, digestLength)
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(storedDigest, digest) == 1
}
