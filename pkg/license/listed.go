package license

import (
	"github.com/github/go-spdx/v2/spdxexp"
)

// Unlisted returns the plain identifiers of e that the SPDX license list
// does not know. LicenseRefs, NONE and NOASSERTION are never reported.
func Unlisted(e Expression) []string {
	ids := IDs(e)
	if len(ids) == 0 {
		return nil
	}
	if ok, invalid := spdxexp.ValidateLicenses(ids); !ok {
		return invalid
	}
	return nil
}
