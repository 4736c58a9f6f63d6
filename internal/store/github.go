package store

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// Route of the contents API for a single file
const CONTENTS_ROUTE = "https://api.github.com/repos/%s/%s/contents/%s"

// GithubStore persists documents as files in a GitHub repository through
// the contents API. The blob sha returned on every read acts as the
// version token: writes must present the sha of the content they replace
type GithubStore struct {
	owner  string
	repo   string
	branch string
	token  string
	client http.Client
}

func NewGithubStore(owner string, repo string, branch string, token string) *GithubStore {
	return &GithubStore{owner: owner, repo: repo, branch: branch, token: token}
}

func (gh *GithubStore) Get(path string) ([]byte, string, bool, error) {

	url := fmt.Sprintf(CONTENTS_ROUTE, gh.owner, gh.repo, path) + "?ref=" + gh.branch
	request, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, "", false, err
	}
	gh.addHeader(request)

	res, err := gh.client.Do(request)
	if err != nil {
		return nil, "", false, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, "", false, nil
	}
	if res.StatusCode != http.StatusOK {
		return nil, "", false, fmt.Errorf("unexpected status %d reading %s", res.StatusCode, path)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, "", false, err
	}

	// Decode
	var raw struct {
		Content string `json:"content"`
		Sha     string `json:"sha"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, "", false, err
	}
	// The API wraps the base64 payload in newlines
	content, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(raw.Content, "\n", ""))
	if err != nil {
		return nil, "", false, err
	}
	log.Debug().Msg(fmt.Sprintf("Fetched %s at version %s", path, raw.Sha))
	return content, raw.Sha, true, nil
}

func (gh *GithubStore) Put(path string, content []byte, version string) error {

	payload := struct {
		Message string `json:"message"`
		Content string `json:"content"`
		Branch  string `json:"branch"`
		Sha     string `json:"sha,omitempty"`
	}{
		Message: fmt.Sprintf("Update %s", path),
		Content: base64.StdEncoding.EncodeToString(content),
		Branch:  gh.branch,
		Sha:     version,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf(CONTENTS_ROUTE, gh.owner, gh.repo, path)
	request, err := http.NewRequest("PUT", url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	gh.addHeader(request)

	res, err := gh.client.Do(request)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK, http.StatusCreated:
		log.Debug().Msg(fmt.Sprintf("Wrote %s", path))
		return nil
	case http.StatusConflict, http.StatusUnprocessableEntity:
		// Stale version token; a concurrent writer got there first
		return fmt.Errorf("write of %s rejected, stale version token", path)
	default:
		return fmt.Errorf("unexpected status %d writing %s", res.StatusCode, path)
	}
}

func (gh *GithubStore) addHeader(request *http.Request) {
	request.Header.Set("Authorization", "Bearer "+gh.token)
	request.Header.Set("Accept", "application/vnd.github+json")
}
