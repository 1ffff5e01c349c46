package trust

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// Fingerprint parses raw key material and returns the primary key
// fingerprint in upper-case hex.
func Fingerprint(raw []byte) (string, error) {
	// Try as armored key first
	entityList, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(raw))
	if err != nil {
		// Try as binary key
		entityList, err = openpgp.ReadKeyRing(bytes.NewReader(raw))
		if err != nil {
			return "", fmt.Errorf("failed to read key: %w", err)
		}
	}

	if len(entityList) == 0 {
		return "", fmt.Errorf("no keys found in fetched material")
	}

	entity := entityList[0]
	if entity.PrimaryKey == nil {
		return "", fmt.Errorf("key has no primary key packet")
	}

	fpr := strings.ToUpper(hex.EncodeToString(entity.PrimaryKey.Fingerprint))
	if fpr == "" {
		return "", fmt.Errorf("key has an empty fingerprint")
	}
	return fpr, nil
}
