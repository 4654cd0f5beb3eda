package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/mod/semver"
)

const releaseURL = "https://api.github.com/repos/shravanasati/tempo/releases/latest"

type releaseInfo struct {
	TagName string `json:"tag_name"`
}

// CheckForUpdates probes the latest GitHub release and writes an update
// notice (or an empty string) to the given channel. It is meant to run in
// a goroutine at startup and must never block the benchmark itself.
func CheckForUpdates(currentVersion string, ch *chan string) {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(releaseURL)
	if err != nil {
		*ch <- ""
		return
	}
	defer resp.Body.Close()

	var release releaseInfo
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil || release.TagName == "" {
		*ch <- ""
		return
	}

	if semver.Compare(release.TagName, currentVersion) > 0 {
		*ch <- fmt.Sprintf("\nA new version of tempo is available: %s (current: %s).\nVisit https://github.com/shravanasati/tempo/releases/latest to update.", release.TagName, currentVersion)
	} else {
		*ch <- ""
	}
}
