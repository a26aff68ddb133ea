package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/getumbrel/umbrel-linter/pkg/console"
	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/getumbrel/umbrel-linter/pkg/logger"
)

var updateCheckLog = logger.New("cli:update_check")

// Release is the subset of a GitHub release the update check reads.
type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// releaseClient is the part of api.RESTClient used here.
type releaseClient interface {
	DoWithContext(ctx context.Context, method string, path string, body io.Reader, response interface{}) error
}

// newReleaseClient is swapped out in tests.
var newReleaseClient = func() (releaseClient, error) {
	return api.NewRESTClient(api.ClientOptions{
		Host:      githubHost,
		AuthToken: resolveGitHubToken(""),
		Timeout:   constants.DefaultGitHubTimeout,
	})
}

// getLatestRelease queries the latest published release of the linter.
func getLatestRelease(ctx context.Context, client releaseClient) (Release, error) {
	updateCheckLog.Print("Querying GitHub API for latest release...")
	var release Release
	path := fmt.Sprintf("repos/%s/releases/latest", constants.ReleaseRepository)
	if err := client.DoWithContext(ctx, http.MethodGet, path, nil, &release); err != nil {
		return Release{}, fmt.Errorf("failed to query latest release: %w", err)
	}
	updateCheckLog.Printf("Latest release: %s", release.TagName)
	return release, nil
}

// checkForUpdate tells the user when a newer release than current exists.
// Lookup failures are reported as warnings, never as errors.
func checkForUpdate(ctx context.Context, current string, w io.Writer) {
	if !isReleasedVersion(current) {
		updateCheckLog.Printf("Not a released version (%s), skipping update check", current)
		fmt.Fprintln(w, console.FormatInfoMessage("Skipping update check (development build)"))
		return
	}

	client, err := newReleaseClient()
	if err == nil {
		var release Release
		release, err = getLatestRelease(ctx, client)
		if err == nil {
			reportRelease(release, current, w)
			return
		}
	}
	updateCheckLog.Printf("Update check failed: %v", err)
	fmt.Fprintln(w, console.FormatWarningMessage(fmt.Sprintf("Could not check for updates: %v", err)))
}

func reportRelease(release Release, current string, w io.Writer) {
	if release.TagName == "" {
		fmt.Fprintln(w, console.FormatWarningMessage("Could not determine the latest release"))
		return
	}
	if !isNewerVersion(release.TagName, current) {
		fmt.Fprintln(w, console.FormatSuccessMessage(constants.CLIName+" is up to date"))
		return
	}
	fmt.Fprintln(w, console.FormatWarningMessage(fmt.Sprintf("A newer version of %s is available: %s (current: %s)", constants.CLIName, release.TagName, current)))
	if release.HTMLURL != "" {
		fmt.Fprintln(w, console.FormatInfoMessage("Download it from "+release.HTMLURL))
	}
}
