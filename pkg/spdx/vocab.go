package spdx

// Store type names.
const (
	TypeDocument            = "SpdxDocument"
	TypePackage             = "Package"
	TypeFile                = "File"
	TypeSnippet             = "Snippet"
	TypeRelationship        = "Relationship"
	TypeAnnotation          = "Annotation"
	TypeExtractedLicense    = "ExtractedLicensingInfo"
	TypeExternalDocumentRef = "ExternalDocumentRef"
	TypeExternalRef         = "ExternalRef"
	TypeChecksum            = "Checksum"
	TypeVerificationCode    = "PackageVerificationCode"
	TypeCreationInfo        = "CreationInfo"
	TypeRange               = "StartEndPointer"
)

// Property names, following the SPDX 2.3 model vocabulary.
const (
	PropName           = "name"
	PropComment        = "comment"
	PropSpecVersion    = "specVersion"
	PropDataLicense    = "dataLicense"
	PropCreationInfo   = "creationInfo"
	PropCreators       = "creators"
	PropCreated        = "created"
	PropLicenseListVer = "licenseListVersion"

	PropExternalDocumentRefs = "externalDocumentRefs"
	PropExternalDocumentID   = "externalDocumentId"
	PropSpdxDocument         = "spdxDocument"
	PropChecksum             = "checksum"

	PropChecksums     = "checksums"
	PropAlgorithm     = "algorithm"
	PropChecksumValue = "checksumValue"

	PropVersionInfo         = "versionInfo"
	PropPackageFileName     = "packageFileName"
	PropSupplier            = "supplier"
	PropOriginator          = "originator"
	PropDownloadLocation    = "downloadLocation"
	PropVerificationCode    = "packageVerificationCode"
	PropVerificationValue   = "packageVerificationCodeValue"
	PropVerificationExclude = "packageVerificationCodeExcludedFiles"
	PropHomepage            = "homepage"
	PropSourceInfo          = "sourceInfo"
	PropSummary             = "summary"
	PropDescription         = "description"
	PropFilesAnalyzed       = "filesAnalyzed"
	PropPrimaryPurpose      = "primaryPackagePurpose"
	PropReleaseDate         = "releaseDate"
	PropBuiltDate           = "builtDate"
	PropValidUntilDate      = "validUntilDate"
	PropAttributionText     = "attributionText"

	PropLicenseConcluded      = "licenseConcluded"
	PropLicenseDeclared       = "licenseDeclared"
	PropLicenseInfoFromFiles  = "licenseInfoFromFiles"
	PropLicenseInfoInFiles    = "licenseInfoInFiles"
	PropLicenseInfoInSnippets = "licenseInfoInSnippets"
	PropLicenseComments       = "licenseComments"
	PropCopyrightText         = "copyrightText"

	PropExternalRefs      = "externalRefs"
	PropReferenceCategory = "referenceCategory"
	PropReferenceType     = "referenceType"
	PropReferenceLocator  = "referenceLocator"

	PropFileTypes        = "fileTypes"
	PropNoticeText       = "noticeText"
	PropFileContributors = "fileContributors"

	PropSnippetFromFile = "snippetFromFile"
	PropByteRange       = "byteRange"
	PropLineRange       = "lineRange"
	PropStartPointer    = "startPointer"
	PropEndPointer      = "endPointer"

	PropLicenseID     = "licenseId"
	PropExtractedText = "extractedText"
	PropSeeAlso       = "seeAlso"

	PropRelationships    = "relationships"
	PropSpdxElementID    = "spdxElementId"
	PropRelatedElement   = "relatedSpdxElement"
	PropRelationshipType = "relationshipType"

	PropAnnotations    = "annotations"
	PropAnnotator      = "annotator"
	PropAnnotationDate = "annotationDate"
	PropAnnotationType = "annotationType"

	// PropSpdxID is the pseudo property set by the SPDXID tag.
	PropSpdxID = "spdxId"
	// PropAnnotationTarget is the pseudo property set by SPDXREF.
	PropAnnotationTarget = "spdxRef"
	// PropNamespace is the pseudo property set by DocumentNamespace; the
	// namespace addresses the document rather than being stored on it.
	PropNamespace = "namespace"
)

// Well-known identifiers and values.
const (
	DefaultDocumentID = "SPDXRef-DOCUMENT"
	NoAssertion       = "NOASSERTION"
	None              = "NONE"
	ElementIDPrefix   = "SPDXRef-"
	LicenseRefPrefix  = "LicenseRef-"
	DocumentRefPrefix = "DocumentRef-"
)
