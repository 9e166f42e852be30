// Package qr renders table QR codes that deep-link diners to a
// venue's menu. Thin wrapper over github.com/skip2/go-qrcode with
// defaults suitable for print and embedding.
package qr

import (
	"encoding/base64"
	"errors"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

var (
	ErrEmptyContent     = errors.New("qr content cannot be empty")
	ErrFailedToGenerate = errors.New("failed to generate qr code")
)

// DefaultSize is the PNG edge length in pixels when none is given.
const DefaultSize = 256

// PNG encodes content as a QR code PNG. Medium error correction keeps
// codes scannable on laminated table cards.
func PNG(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = DefaultSize
	}

	img, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrFailedToGenerate, err)
	}
	return img, nil
}

// DataURI returns the QR code as a base64 PNG data URI for direct use
// in an <img> tag.
func DataURI(content string, size int) (string, error) {
	img, err := PNG(content, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(img), nil
}
