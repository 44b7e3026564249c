package security

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	totpSecretLength = 20
	totpPeriod       = 30 * time.Second
)

var totpValidateOpts = totp.ValidateOpts{
	Period:    uint(totpPeriod / time.Second),
	Skew:      0,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// ErrMissingSecret is returned when secret is empty.
var ErrMissingSecret = fmt.Errorf("totp secret is required")

// GenerateTOTPSecret returns a fresh base32 secret for TOTP enrollment.
// Generated once at registration; never rotated afterwards.
func GenerateTOTPSecret() (string, error) {
	buf := make([]byte, totpSecretLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate totp secret: %w", err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf), nil
}

// VerifyTOTP checks the code against the secret at the given time. The code for
// the current 30-second window is accepted, as is the code for exactly one
// window back (clock drift and boundary straddling). There is no forward
// tolerance; a future-window code fails. Any decode or mismatch fails closed.
func VerifyTOTP(code, secret string, now time.Time) bool {
	if code == "" || secret == "" {
		return false
	}

	ok, err := totp.ValidateCustom(code, secret, now, totpValidateOpts)
	if err == nil && ok {
		return true
	}

	ok, err = totp.ValidateCustom(code, secret, now.Add(-totpPeriod), totpValidateOpts)
	return err == nil && ok
}

// GenerateTOTPCode computes the code for the secret at the given time. Used by
// tests and OTP enrollment verification.
func GenerateTOTPCode(secret string, at time.Time) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}
	code, err := totp.GenerateCodeCustom(secret, at, totpValidateOpts)
	if err != nil {
		return "", fmt.Errorf("generate totp code: %w", err)
	}
	return code, nil
}

// ProvisioningURI builds the standard otpauth:// URI for the stored secret,
// suitable for QR encoding by the surrounding application.
func ProvisioningURI(secret, account, issuer string) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}

	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret)
	if err != nil {
		return "", fmt.Errorf("decode totp secret: %w", err)
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Secret:      raw,
		Period:      uint(totpPeriod / time.Second),
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("build provisioning key: %w", err)
	}

	return key.URL(), nil
}
