// Package manifest validates umbrel-app.yml and umbrel-app-store.yml.
//
// Validation is explicit: each field has a validator that reads the
// generic YAML node, checks type and constraints, and reports every
// violation to an ErrorCollector. Nothing stops at the first problem, so a
// single pass reports all of them. A manifest value is only returned when
// no violation was found.
//
// # Files
//
//   - field_error.go: FieldError and the Rule identifiers
//   - error_aggregation.go: ErrorCollector
//   - validation_helpers.go: per-type field readers
//   - app_validation.go: umbrel-app.yml
//   - store_validation.go: umbrel-app-store.yml
//   - version_validation.go: semantic version advice for the app version
package manifest

// AppManifest is a validated umbrel-app.yml.
type AppManifest struct {
	ManifestVersion float64
	ID              string
	Name            string
	Tagline         string
	Category        string
	Version         string
	Port            int
	Description     string
	Developer       string
	Submitter       string
	Submission      string
	Support         string
	Website         string
	Path            string

	Disabled               *bool
	Icon                   string
	Gallery                []string
	ReleaseNotes           string
	Dependencies           []string
	Permissions            []string
	DefaultUsername        string
	DefaultPassword        string
	DeterministicPassword  *bool
	OptimizedForUmbrelHome *bool
	TorOnly                *bool
	InstallSize            *int64
	Widgets                []map[string]any
	DefaultShell           string
	BackupIgnore           []string
	Repo                   string
}

// StoreManifest is a validated umbrel-app-store.yml.
type StoreManifest struct {
	ID   string
	Name string
}
