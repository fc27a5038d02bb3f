package spdx

import "strings"

// Enum is a closed set of upper-case tokens.
type Enum map[string]struct{}

func newEnum(values ...string) Enum {
	e := make(Enum, len(values))
	for _, v := range values {
		e[v] = struct{}{}
	}
	return e
}

// Has reports whether v is a member of the set.
func (e Enum) Has(v string) bool {
	_, ok := e[v]
	return ok
}

var RelationshipTypes = newEnum(
	"DESCRIBES", "DESCRIBED_BY", "CONTAINS", "CONTAINED_BY",
	"DEPENDS_ON", "DEPENDENCY_OF", "DEPENDENCY_MANIFEST_OF",
	"BUILD_DEPENDENCY_OF", "DEV_DEPENDENCY_OF", "OPTIONAL_DEPENDENCY_OF",
	"PROVIDED_DEPENDENCY_OF", "TEST_DEPENDENCY_OF", "RUNTIME_DEPENDENCY_OF",
	"EXAMPLE_OF", "GENERATES", "GENERATED_FROM", "ANCESTOR_OF", "DESCENDANT_OF",
	"VARIANT_OF", "DISTRIBUTION_ARTIFACT", "PATCH_FOR", "PATCH_APPLIED",
	"COPY_OF", "FILE_ADDED", "FILE_DELETED", "FILE_MODIFIED",
	"EXPANDED_FROM_ARCHIVE", "DYNAMIC_LINK", "STATIC_LINK", "DATA_FILE_OF",
	"TEST_CASE_OF", "BUILD_TOOL_OF", "DEV_TOOL_OF", "TEST_OF", "TEST_TOOL_OF",
	"DOCUMENTATION_OF", "OPTIONAL_COMPONENT_OF", "METAFILE_OF", "PACKAGE_OF",
	"AMENDS", "PREREQUISITE_FOR", "HAS_PREREQUISITE",
	"REQUIREMENT_DESCRIPTION_FOR", "SPECIFICATION_FOR", "OTHER",
)

var AnnotationTypes = newEnum("REVIEW", "OTHER")

var FileTypes = newEnum(
	"SOURCE", "BINARY", "ARCHIVE", "APPLICATION", "AUDIO", "IMAGE",
	"TEXT", "VIDEO", "DOCUMENTATION", "SPDX", "OTHER",
)

var PackagePurposes = newEnum(
	"APPLICATION", "FRAMEWORK", "LIBRARY", "CONTAINER", "OPERATING-SYSTEM",
	"DEVICE", "FIRMWARE", "SOURCE", "ARCHIVE", "FILE", "INSTALL", "OTHER",
)

var ReferenceCategories = newEnum("SECURITY", "PACKAGE-MANAGER", "PERSISTENT-ID", "OTHER")

// ListedReferenceTypes are the external reference types defined by the
// SPDX 2.3 appendix; category OTHER allows anything.
var ListedReferenceTypes = newEnum(
	"cpe22Type", "cpe23Type", "advisory", "fix", "url", "swid",
	"maven-central", "npm", "nuget", "bower", "purl", "swh", "gitoid",
)

// NormalizeCategory accepts the legacy underscore spellings
// (PACKAGE_MANAGER) of external reference categories.
func NormalizeCategory(c string) string {
	return strings.ReplaceAll(strings.ToUpper(c), "_", "-")
}
