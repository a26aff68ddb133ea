// Package constants holds the file names, reserved identifiers, enumerations
// and finding identifiers shared across the linter.
package constants

import "time"

// Version is the linter version reported by the version command. Overridden
// at build time with -ldflags "-X .../constants.Version=...".
var Version = "dev"

// CLIName is the name of the command line binary.
const CLIName = "umbrel-linter"

// ReleaseRepository is the GitHub repository the linter is released from.
const ReleaseRepository = "getumbrel/umbrel-linter"

// File names inside an app store checkout.
const (
	AppManifestFile   = "umbrel-app.yml"
	StoreManifestFile = "umbrel-app-store.yml"
	ComposeFile       = "docker-compose.yml"
	ReadmeFile        = "README.md"
	GitkeepFile       = ".gitkeep"
)

// Compose conventions.
const (
	// AppProxyService is the reverse proxy service that exposes an app's UI.
	AppProxyService = "app_proxy"
	// AppDataDirVariable is the template variable pointing at the app's directory.
	AppDataDirVariable = "APP_DATA_DIR"
	// DockerSocketPath is the container engine control socket.
	DockerSocketPath = "/var/run/docker.sock"
	// ExpectedRestartPolicy is required on every service except the proxy.
	ExpectedRestartPolicy = "on-failure"
	// NonRootUID is the uid/gid apps are expected to run as.
	NonRootUID = "1000"
)

// ReservedStoreIDPrefix may not start an app id or community store id.
const ReservedStoreIDPrefix = "umbrel-app-store"

// StoreType distinguishes the official store from community stores.
type StoreType string

const (
	StoreTypeOfficial  StoreType = "official"
	StoreTypeCommunity StoreType = "community"
)

// AppCategories is the closed set of categories an app may declare.
var AppCategories = []string{
	"files",
	"bitcoin",
	"media",
	"networking",
	"social",
	"automation",
	"finance",
	"ai",
	"developer",
}

// AppPermissions is the closed set of permission tags.
var AppPermissions = []string{"STORAGE_DOWNLOADS", "GPU"}

// ManifestVersions are the accepted manifestVersion values.
var ManifestVersions = []float64{1, 1.1, 1.2}

// Network defaults. Overridable through the environment, see pkg/linter.
const (
	DefaultRegistryTimeout = time.Second
	DefaultGitHubTimeout   = 5 * time.Second
	DefaultConcurrency     = 4
)

// Finding identifiers. These are a stable contract with downstream tooling
// (notably the auto-fixer) and must not be renamed.
const (
	// Parsing and I/O
	InvalidYAMLSyntax = "invalid_yaml_syntax"
	FileReadError     = "file_read_error"

	// Store level
	MissingStoreManifest = "missing_umbrel_app_store_yml"
	MissingReadme        = "missing_readme"

	// App level
	AppDirectoryNotFound  = "app_directory_not_found"
	MissingAppManifest    = "missing_umbrel_app_yml"
	MissingComposeFile    = "missing_docker_compose_yml"
	SchemaValidationError = "schema_validation_error"
	InvalidTagline        = "invalid_tagline"
	NonSemverAppVersion   = "non_semver_app_version"
	DuplicateUIPort       = "duplicate_ui_port"
	EmptyAppDataDirectory = "empty_app_data_directory"

	// First submission
	InvalidSubmissionField                  = "invalid_submission_field"
	FilledOutReleaseNotesOnFirstSubmission  = "filled_out_release_notes_on_first_submission"
	FilledOutIconOrGalleryOnFirstSubmission = "filled_out_icon_or_gallery_on_first_submission"
	InvalidRepoURL                          = "invalid_repo_url"

	// Compose rules
	InvalidDockerImageName       = "invalid_docker_image_name"
	InvalidImageArchitectures    = "invalid_image_architectures"
	ImageArchitectureUnverified  = "image_architecture_unverified"
	InvalidYAMLBooleanValue      = "invalid_yaml_boolean_value"
	InvalidAppDataDirVolumeMount = "invalid_app_data_dir_volume_mount"
	MissingFileOrDirectory       = "missing_file_or_directory"
	DockerSocketMount            = "docker_socket_mount"
	InvalidContainerUser         = "invalid_container_user"
	ContainerNetworkModeHost     = "container_network_mode_host"
	ExternalPortMapping          = "external_port_mapping"
	InvalidAppProxyConfiguration = "invalid_app_proxy_configuration"
	InvalidRestartPolicy         = "invalid_restart_policy"
)

// FixableFindingIDs are the identifiers the auto-fixer knows how to rewrite.
var FixableFindingIDs = []string{
	EmptyAppDataDirectory,
	MissingFileOrDirectory,
	InvalidYAMLBooleanValue,
	InvalidRestartPolicy,
	InvalidTagline,
	InvalidContainerUser,
}
