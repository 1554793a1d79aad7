package handler

import (
	"encoding/base64"
	"strings"

	"github.com/veridion-labs/facegate/internal/domain"
)

// decodeImagePayload turns a wire image field into raw bytes. Browsers
// send canvas captures as data URLs ("data:image/jpeg;base64,..."), so
// anything before the first comma is treated as the media prefix. Bare
// base64 without a prefix is accepted too.
func decodeImagePayload(payload string) ([]byte, error) {
	if idx := strings.IndexByte(payload, ','); idx >= 0 {
		payload = payload[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	return data, nil
}
