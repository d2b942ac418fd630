package publisher

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/LJTian/WhatHappenedToday/internal/config"
)

const (
	githubMaxResponseBytes = 1 << 20
	githubClientTimeout    = 30 * time.Second
	apiMessageMaxRunes     = 200
)

// GitHubPublisher 通过 contents API 更新仓库中的单个文件：先读取 sha，再带 sha 写回；
// 文件不存在（404）时不带 sha 直接创建
type GitHubPublisher struct {
	APIURL string
	Token  string
	Owner  string
	Repo   string
	Branch string
	Path   string

	CommitterName  string
	CommitterEmail string

	client *http.Client
}

func NewGitHubPublisher(cfg *config.Config, client *http.Client) *GitHubPublisher {
	if client == nil {
		client = &http.Client{Timeout: githubClientTimeout}
	}
	apiURL := cfg.GitHubAPIURL
	if apiURL == "" {
		apiURL = "https://api.github.com"
	}
	return &GitHubPublisher{
		APIURL:         strings.TrimRight(apiURL, "/"),
		Token:          cfg.GitHubToken,
		Owner:          cfg.GitHubOwner,
		Repo:           cfg.GitHubRepo,
		Branch:         cfg.GitHubBranch,
		Path:           cfg.GitHubPath,
		CommitterName:  cfg.CommitterName,
		CommitterEmail: cfg.CommitterEmail,
		client:         client,
	}
}

type contentResp struct {
	SHA  string `json:"sha"`
	Type string `json:"type"`
}

type committer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type putContentReq struct {
	Message   string     `json:"message"`
	Content   string     `json:"content"`
	Branch    string     `json:"branch,omitempty"`
	SHA       string     `json:"sha,omitempty"`
	Committer *committer `json:"committer,omitempty"`
}

type putContentResp struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

type apiMessage struct {
	Message string `json:"message"`
}

func (g *GitHubPublisher) Publish(ctx context.Context, doc []byte, message string) (*Result, error) {
	if g.Owner == "" || g.Repo == "" || g.Path == "" {
		return nil, newError(errMissingRepo)
	}

	sha, err := g.currentSHA(ctx)
	if err != nil {
		return nil, newError(errReadRemote, err)
	}

	res, err := g.put(ctx, doc, message, sha)
	if err != nil {
		return nil, newError(errWriteRemote, err)
	}

	slog.Info("snapshot published",
		"repo", g.Owner+"/"+g.Repo,
		"path", g.Path,
		"created", res.Created,
		"commit", res.CommitSHA,
	)
	return res, nil
}

// currentSHA 返回远端文件的 sha；文件不存在时返回空串
func (g *GitHubPublisher) currentSHA(ctx context.Context) (string, error) {
	u := g.contentsURL()
	if g.Branch != "" {
		u += "?ref=" + url.QueryEscape(g.Branch)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	g.setHeaders(req)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, githubMaxResponseBytes))
	if err != nil {
		return "", err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var c contentResp
		if err := json.Unmarshal(body, &c); err != nil {
			return "", fmt.Errorf("decode contents: %w", err)
		}
		if c.Type != "" && c.Type != "file" {
			return "", fmt.Errorf("%s is a %s, not a file", g.Path, c.Type)
		}
		return c.SHA, nil
	case http.StatusNotFound:
		slog.Info("remote file not found, will create it", "path", g.Path)
		return "", nil
	default:
		return "", &APIError{Op: "get contents", StatusCode: resp.StatusCode, Message: apiErrorMessage(body)}
	}
}

func (g *GitHubPublisher) put(ctx context.Context, doc []byte, message, sha string) (*Result, error) {
	payload := putContentReq{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(doc),
		Branch:  g.Branch,
		SHA:     sha,
	}
	if g.CommitterName != "" && g.CommitterEmail != "" {
		payload.Committer = &committer{Name: g.CommitterName, Email: g.CommitterEmail}
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, g.contentsURL(), bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	g.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, githubMaxResponseBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &APIError{Op: "put contents", StatusCode: resp.StatusCode, Message: apiErrorMessage(body)}
	}

	var out putContentResp
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode put response: %w", err)
	}
	return &Result{
		Path:        g.Path,
		Created:     sha == "",
		PreviousSHA: sha,
		ContentSHA:  out.Content.SHA,
		CommitSHA:   out.Commit.SHA,
	}, nil
}

func (g *GitHubPublisher) contentsURL() string {
	segs := strings.Split(strings.Trim(g.Path, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		g.APIURL, url.PathEscape(g.Owner), url.PathEscape(g.Repo), strings.Join(segs, "/"))
}

func (g *GitHubPublisher) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "WhatHappenedTodayBot/1.0")
	if g.Token != "" {
		req.Header.Set("Authorization", "token "+g.Token)
	}
}

func apiErrorMessage(body []byte) string {
	var m apiMessage
	if err := json.Unmarshal(body, &m); err == nil && m.Message != "" {
		return m.Message
	}
	s := strings.ToValidUTF8(strings.TrimSpace(string(body)), "\uFFFD")
	if rs := []rune(s); len(rs) > apiMessageMaxRunes {
		s = string(rs[:apiMessageMaxRunes])
	}
	return s
}
