package fhirclient

import "strings"

// FHIRVersion represents a FHIR specification version.
type FHIRVersion string

// Supported FHIR versions.
const (
	// R4 is FHIR Release 4 (4.0.1)
	R4 FHIRVersion = "R4"
	// R4B is FHIR Release 4B (4.3.0)
	R4B FHIRVersion = "R4B"
	// R5 is FHIR Release 5 (5.0.0)
	R5 FHIRVersion = "R5"
)

// String returns the version string.
func (v FHIRVersion) String() string {
	return string(v)
}

// IsValid returns true if this is a supported FHIR version.
func (v FHIRVersion) IsValid() bool {
	_, ok := versionConfigs[v]
	return ok
}

// versionConfig holds version-specific wire details.
type versionConfig struct {
	// Release is the full version found in CapabilityStatement.fhirVersion.
	Release string

	// MimeVersion is the fhirVersion media type parameter.
	MimeVersion string
}

var versionConfigs = map[FHIRVersion]versionConfig{
	R4:  {Release: "4.0.1", MimeVersion: "4.0"},
	R4B: {Release: "4.3.0", MimeVersion: "4.3"},
	R5:  {Release: "5.0.0", MimeVersion: "5.0"},
}

// Release returns the full release number, e.g. "4.0.1".
func (v FHIRVersion) Release() string {
	return versionConfigs[v].Release
}

// MediaType returns the FHIR JSON media type pinned to this version, or the
// plain media type for an unknown version.
func (v FHIRVersion) MediaType() string {
	cfg, ok := versionConfigs[v]
	if !ok {
		return "application/fhir+json"
	}
	return "application/fhir+json; fhirVersion=" + cfg.MimeVersion
}

// VersionFromRelease maps a release number such as "4.0.1" or "4.0" to a
// FHIRVersion.
func VersionFromRelease(release string) (FHIRVersion, bool) {
	for v, cfg := range versionConfigs {
		if release == cfg.Release || release == cfg.MimeVersion || strings.HasPrefix(release, cfg.MimeVersion+".") {
			return v, true
		}
	}
	return "", false
}
