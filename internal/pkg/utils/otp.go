package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"math/big"
	"strings"
)

const (
	otpMin = 100000
	otpMax = 999999
)

var otpSpan = big.NewInt(otpMax - otpMin + 1)

// GenerateOTP 从 crypto/rand 均匀抽取 [100000, 999999] 中的一个六位数字
func GenerateOTP() (string, error) {
	return generateOTP(rand.Reader)
}

func generateOTP(r io.Reader) (string, error) {
	n, err := rand.Int(r, otpSpan)
	if err != nil {
		return "", fmt.Errorf("failed to draw otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+otpMin), nil
}

// OTPEqual 去除首尾空白后按常量时间比较
func OTPEqual(stored, submitted string) bool {
	a := strings.TrimSpace(stored)
	b := strings.TrimSpace(submitted)
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
