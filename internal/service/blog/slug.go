package blog

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/gosimple/slug"
)

// Keep headroom under the 220 char column for the random suffix
const maxSlugBase = 200

// newSlug derives a URL slug from the title and appends a short random
// suffix so equal titles never fight over the same slug.
func newSlug(title string) string {
	base := slug.Make(title)
	if len(base) > maxSlugBase {
		base = base[:maxSlugBase]
	}

	b := make([]byte, 4)
	rand.Read(b) //nolint:errcheck // never fails per crypto/rand docs

	return base + "-" + hex.EncodeToString(b)
}
