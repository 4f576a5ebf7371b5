package services

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"html/template"
	"math/big"
	"time"
)

var otpMailTemplate = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #222;">
    <h2>{{.Heading}}</h2>
    <p>Use the code below to continue. It expires in {{.Minutes}} minutes.</p>
    <p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">{{.Code}}</p>
    <p>If you did not request this code you can ignore this e-mail.</p>
  </body>
</html>`))

func renderOTPMail(heading, code string, ttl time.Duration) (string, error) {
	var buf bytes.Buffer
	err := otpMailTemplate.Execute(&buf, map[string]interface{}{
		"Heading": heading,
		"Code":    code,
		"Minutes": int(ttl.Minutes()),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// generateCode returns a uniformly random 6-digit numeric code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
