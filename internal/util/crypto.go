package util

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"strings"
)

// RandomString 生成指定长度的随机字符串（URL 安全，用于密钥等）。
func RandomString(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("length must be positive")
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)[:n], nil
}

// VerificationCode 用服务端密钥为 value 生成短校验码，
// 打印的证书带上它，扫码后可以核对真伪。
func VerificationCode(secret, value string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.ToUpper(strings.TrimSpace(value))))
	sum := mac.Sum(nil)
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(sum[:10])
}

// CheckVerificationCode 校验 code 是否与 value 匹配（常量时间比较）。
func CheckVerificationCode(secret, value, code string) bool {
	if code == "" {
		return false
	}
	want := VerificationCode(secret, value)
	return hmac.Equal([]byte(want), []byte(strings.ToUpper(strings.TrimSpace(code))))
}
