package tagvalue

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spdx/tools-golang/spdx/v2/common"

	"github.com/nainya/spdxtv/pkg/spdx"
)

// ErrEmptyValue indicates a composite value with nothing after the tag
var ErrEmptyValue = errors.New("tagvalue: empty value")

// DateLayout is the ISO-8601 form SPDX dates take
const DateLayout = "2006-01-02T15:04:05Z"

// ExternalRef is a parsed "category type locator [comment]" value
type ExternalRef struct {
	Category string
	Type     string
	Locator  string
	Comment  string
}

// ExternalDocumentRef is a parsed "DocumentRef-name uri ALGORITHM: digest" value
type ExternalDocumentRef struct {
	Name     string
	URI      string
	Checksum common.Checksum
}

// Relationship is a parsed "source TYPE target" value
type Relationship struct {
	Source common.DocElementID
	Type   string
	Target common.DocElementID
}

// Agent is a parsed "Person|Organization|Tool: name" value
type Agent struct {
	Type string
	Name string
}

func (a Agent) String() string {
	if a.Type == "" {
		return a.Name
	}
	return a.Type + ": " + a.Name
}

// ParseChecksum parses "ALGORITHM: hexdigest"; the space is optional
func ParseChecksum(v string) (common.Checksum, error) {
	alg, digest, ok := strings.Cut(v, ":")
	if !ok {
		return common.Checksum{}, fmt.Errorf("checksum %q: expected ALGORITHM: digest", v)
	}
	return spdx.NewChecksum(strings.TrimSpace(alg), strings.TrimSpace(digest))
}

// ParseRange parses "start:end" with start <= end
func ParseRange(v string) (start, end int, err error) {
	a, b, ok := strings.Cut(v, ":")
	if !ok {
		return 0, 0, fmt.Errorf("range %q: expected start:end", v)
	}
	if start, err = strconv.Atoi(strings.TrimSpace(a)); err != nil || start < 0 {
		return 0, 0, fmt.Errorf("range %q: bad start", v)
	}
	if end, err = strconv.Atoi(strings.TrimSpace(b)); err != nil || end < 0 {
		return 0, 0, fmt.Errorf("range %q: bad end", v)
	}
	if start > end {
		return 0, 0, fmt.Errorf("range %q: start after end", v)
	}
	return start, end, nil
}

// ParseExternalRef parses "category type locator [comment]"
func ParseExternalRef(v string) (ExternalRef, error) {
	fields := strings.Fields(v)
	if len(fields) < 3 {
		return ExternalRef{}, fmt.Errorf("external ref %q: expected category type locator", v)
	}
	category := spdx.NormalizeCategory(fields[0])
	if !spdx.ReferenceCategories.Has(category) {
		return ExternalRef{}, fmt.Errorf("external ref %q: unknown category %s", v, fields[0])
	}
	return ExternalRef{
		Category: category,
		Type:     fields[1],
		Locator:  fields[2],
		Comment:  strings.Join(fields[3:], " "),
	}, nil
}

// ParseExternalDocumentRef parses "DocumentRef-name uri ALGORITHM: digest"
func ParseExternalDocumentRef(v string) (ExternalDocumentRef, error) {
	fields := strings.Fields(v)
	if len(fields) < 3 {
		return ExternalDocumentRef{}, fmt.Errorf("external document ref %q: expected name uri checksum", v)
	}
	name := fields[0]
	if !strings.HasPrefix(name, spdx.DocumentRefPrefix) || !validIDString(name) {
		return ExternalDocumentRef{}, fmt.Errorf("external document ref %q: name must start with %s", v, spdx.DocumentRefPrefix)
	}
	sum, err := ParseChecksum(strings.Join(fields[2:], " "))
	if err != nil {
		return ExternalDocumentRef{}, fmt.Errorf("external document ref: %w", err)
	}
	return ExternalDocumentRef{Name: name, URI: fields[1], Checksum: sum}, nil
}

// ParseVerificationCode parses "hexdigest [(excludes: a, b)]"
func ParseVerificationCode(v string) (common.PackageVerificationCode, error) {
	code, rest, _ := strings.Cut(strings.TrimSpace(v), "(")
	sum, err := spdx.NewChecksum(string(common.SHA1), strings.TrimSpace(code))
	if err != nil {
		return common.PackageVerificationCode{}, fmt.Errorf("verification code: %w", err)
	}
	out := common.PackageVerificationCode{Value: sum.Value}
	if rest == "" {
		return out, nil
	}
	rest, ok := strings.CutSuffix(strings.TrimSpace(rest), ")")
	if !ok {
		return common.PackageVerificationCode{}, fmt.Errorf("verification code %q: unclosed excludes", v)
	}
	label, files, ok := strings.Cut(rest, ":")
	if !ok || !strings.EqualFold(strings.TrimSpace(label), "excludes") {
		return common.PackageVerificationCode{}, fmt.Errorf("verification code %q: expected (excludes: ...)", v)
	}
	for _, f := range strings.Split(files, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out.ExcludedFiles = append(out.ExcludedFiles, f)
		}
	}
	return out, nil
}

// ParseRelationship parses "source TYPE target"
func ParseRelationship(v string) (Relationship, error) {
	fields := strings.Fields(v)
	if len(fields) != 3 {
		return Relationship{}, fmt.Errorf("relationship %q: expected source TYPE target", v)
	}
	typ := strings.ToUpper(fields[1])
	if !spdx.RelationshipTypes.Has(typ) {
		return Relationship{}, fmt.Errorf("relationship %q: unknown type %s", v, fields[1])
	}
	source, err := ParseElementRef(fields[0], false)
	if err != nil {
		return Relationship{}, fmt.Errorf("relationship source: %w", err)
	}
	target, err := ParseElementRef(fields[2], true)
	if err != nil {
		return Relationship{}, fmt.Errorf("relationship target: %w", err)
	}
	return Relationship{Source: source, Type: typ, Target: target}, nil
}

// ParseElementRef parses "SPDXRef-x" or "DocumentRef-y:SPDXRef-x". With
// special set, NONE and NOASSERTION are accepted as well.
func ParseElementRef(v string, special bool) (common.DocElementID, error) {
	if special && (v == spdx.None || v == spdx.NoAssertion) {
		return common.DocElementID{SpecialID: v}, nil
	}
	var docRef string
	id := v
	if strings.HasPrefix(v, spdx.DocumentRefPrefix) {
		var ok bool
		docRef, id, ok = strings.Cut(v, ":")
		if !ok || !validIDString(docRef) {
			return common.DocElementID{}, fmt.Errorf("element reference %q: expected DocumentRef-name:SPDXRef-id", v)
		}
	}
	if err := ParseID(id); err != nil {
		return common.DocElementID{}, err
	}
	return common.DocElementID{DocumentRefID: docRef, ElementRefID: common.ElementID(id)}, nil
}

// ParseID checks an element id of the form SPDXRef-[A-Za-z0-9.-]+
func ParseID(v string) error {
	if !strings.HasPrefix(v, spdx.ElementIDPrefix) || len(v) == len(spdx.ElementIDPrefix) || !validIDString(v) {
		return fmt.Errorf("element id %q: expected %s followed by letters, digits, '.' or '-'", v, spdx.ElementIDPrefix)
	}
	return nil
}

// ParseLicenseID checks a LicenseRef-[A-Za-z0-9.-]+ id
func ParseLicenseID(v string) error {
	if !strings.HasPrefix(v, spdx.LicenseRefPrefix) || len(v) == len(spdx.LicenseRefPrefix) || !validIDString(v) {
		return fmt.Errorf("license id %q: expected %s followed by letters, digits, '.' or '-'", v, spdx.LicenseRefPrefix)
	}
	return nil
}

// ParseAgent parses "Person: name", "Organization: name" or "Tool: name".
// With noAssertion set, a bare NOASSERTION is accepted.
func ParseAgent(v string, noAssertion bool) (Agent, error) {
	if noAssertion && v == spdx.NoAssertion {
		return Agent{Name: v}, nil
	}
	typ, name, ok := strings.Cut(v, ":")
	if !ok {
		return Agent{}, fmt.Errorf("agent %q: expected Person:, Organization: or Tool:", v)
	}
	typ = strings.TrimSpace(typ)
	switch typ {
	case "Person", "Organization", "Tool":
	default:
		return Agent{}, fmt.Errorf("agent %q: unknown agent type %s", v, typ)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Agent{}, fmt.Errorf("agent %q: empty name", v)
	}
	return Agent{Type: typ, Name: name}, nil
}

// ParseBool parses true or false, case-insensitively
func ParseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("boolean %q: expected true or false", v)
}

// ParseDate parses YYYY-MM-DDThh:mm:ssZ
func ParseDate(v string) (time.Time, error) {
	return time.Parse(DateLayout, v)
}

func validIDString(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
		default:
			return false
		}
	}
	return s != ""
}
