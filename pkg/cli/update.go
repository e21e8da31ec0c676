package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

const updateRepo = "Fepozopo/imgproc"

var githubAPI = "https://api.github.com"

// semverRe finds a version like v1.2.3 or 1.2.3 inside a tag or release name.
var semverRe = regexp.MustCompile(`v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?`)

// detectLatestFallback lists releases through the GitHub API directly and
// returns the highest published, non-prerelease semver. It accepts tag names
// the selfupdate detector rejects. A nil release means none qualified.
func detectLatestFallback(apiBase, repo string) (*selfupdate.Release, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(fmt.Sprintf("%s/repos/%s/releases", apiBase, repo))
	if err != nil {
		return nil, fmt.Errorf("github API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading github response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github API returned status %d: %s", resp.StatusCode, string(body))
	}

	var releases []struct {
		TagName    string `json:"tag_name"`
		Name       string `json:"name"`
		Draft      bool   `json:"draft"`
		Prerelease bool   `json:"prerelease"`
		Assets     []struct {
			Name               string `json:"name"`
			BrowserDownloadURL string `json:"browser_download_url"`
		} `json:"assets"`
	}
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, fmt.Errorf("failed to decode github releases: %w", err)
	}

	var candidates []*selfupdate.Release
	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		match := semverRe.FindString(r.TagName)
		if match == "" {
			match = semverRe.FindString(r.Name)
		}
		v, err := semver.Parse(strings.TrimPrefix(match, "v"))
		if err != nil {
			continue
		}
		// prefer an asset that looks like a platform binary
		assetURL := ""
		for _, a := range r.Assets {
			name := strings.ToLower(a.Name)
			if strings.Contains(name, "darwin") || strings.Contains(name, "linux") || strings.Contains(name, "windows") {
				assetURL = a.BrowserDownloadURL
				break
			}
			if assetURL == "" {
				assetURL = a.BrowserDownloadURL
			}
		}
		candidates = append(candidates, &selfupdate.Release{Version: v, AssetURL: assetURL})
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Version.GT(candidates[j].Version)
	})
	return candidates[0], nil
}

// findLatest asks the selfupdate detector first and falls back to the raw
// releases listing.
func findLatest(repo string) (*selfupdate.Release, error) {
	latest, found, err := selfupdate.DetectLatest(repo)
	if err == nil && found {
		return latest, nil
	}
	if err != nil {
		debugf("selfupdate detection failed: %v", err)
	}
	return detectLatestFallback(githubAPI, repo)
}

// CheckForUpdates reports the latest release and, after confirmation,
// replaces the running executable with it.
func CheckForUpdates(p *Prompter) error {
	return checkForUpdates(p, Version, findLatest)
}

func checkForUpdates(p *Prompter, current string, find func(string) (*selfupdate.Release, error)) error {
	out := p.out
	fmt.Fprintf(out, "Current version: %s\n", current)
	currentVer, err := semver.Parse(strings.TrimPrefix(current, "v"))
	if err != nil {
		fmt.Fprintf(out, "warning: could not parse current version %q: %v\n", current, err)
	}

	latest, err := find(updateRepo)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	if latest == nil {
		fmt.Fprintf(out, "No releases found for %s.\n", updateRepo)
		return nil
	}
	fmt.Fprintf(out, "Latest version: %s\n", latest.Version)

	if !latest.Version.GT(currentVer) {
		fmt.Fprintf(out, "You are already running the latest version: %s.\n", currentVer)
		return nil
	}
	if latest.AssetURL == "" {
		fmt.Fprintf(out, "A new version (%s) is available but there is no downloadable asset.\n", latest.Version)
		fmt.Fprintln(out, "Please visit the project releases page to download the new version.")
		return nil
	}

	answer, err := p.PromptLine(fmt.Sprintf("A new version (%s) is available. Update now? (y/N): ", latest.Version))
	if err != nil {
		return fmt.Errorf("failed reading input: %w", err)
	}
	answer = strings.ToLower(answer)
	if answer != "y" && answer != "yes" {
		fmt.Fprintln(out, "Update cancelled.")
		return nil
	}

	fmt.Fprintln(out, "Updating...")
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}
	if err := selfupdate.UpdateTo(latest.AssetURL, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	fmt.Fprintf(out, "Updated to version %s. Restart imgproc to use it.\n", latest.Version)
	return nil
}
