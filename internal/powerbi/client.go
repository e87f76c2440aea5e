// internal/powerbi/client.go
package powerbi

import (
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "strings"
    "sync"
    "time"

    log "github.com/sirupsen/logrus"

    "github.com/drogamais/Fiscal-BI/internal/config"
)

const tokenScope = "https://analysis.windows.net/powerbi/api/.default"

// Client talks to the Power BI REST API with app-only (client
// credentials) authentication. Tokens are cached until shortly before
// expiry.
type Client struct {
    cfg  config.PowerBIConfig
    http *http.Client

    mu          sync.Mutex
    token       string
    tokenExpiry time.Time
}

func NewClient(cfg config.PowerBIConfig) *Client {
    return &Client{
        cfg:  cfg,
        http: &http.Client{Timeout: 30 * time.Second},
    }
}

// Dataset identifies one dataset inside one workspace.
type Dataset struct {
    Workspace   string `json:"workspace"`
    WorkspaceID string `json:"workspace_id"`
    Name        string `json:"name"`
    ID          string `json:"id"`
}

// RefreshEvent is the most recent refresh outcome of a dataset. A
// dataset with no refresh history carries StatusNoHistory and a nil
// EndTime.
type RefreshEvent struct {
    Workspace   string     `json:"workspace"`
    Dataset     string     `json:"dataset"`
    Status      string     `json:"status"`
    RefreshType string     `json:"refresh_type"`
    EndTime     *time.Time `json:"end_time"`
}

const (
    StatusNoHistory = "NoHistory"
    StatusError     = "EvaluationError"
)

// AccessToken returns a bearer token, reusing the cached one while it
// is still comfortably valid.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
    c.mu.Lock()
    defer c.mu.Unlock()

    if c.token != "" && time.Now().Before(c.tokenExpiry) {
        return c.token, nil
    }

    form := url.Values{}
    form.Set("grant_type", "client_credentials")
    form.Set("client_id", c.cfg.ClientID)
    form.Set("client_secret", c.cfg.ClientSecret)
    form.Set("scope", tokenScope)

    endpoint := fmt.Sprintf("%s/%s/oauth2/v2.0/token", strings.TrimRight(c.cfg.LoginURL, "/"), c.cfg.TenantID)
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
    if err != nil {
        return "", err
    }
    req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

    resp, err := c.http.Do(req)
    if err != nil {
        return "", fmt.Errorf("token request failed: %w", err)
    }
    defer resp.Body.Close()

    if resp.StatusCode != http.StatusOK {
        body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
        return "", fmt.Errorf("token request returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
    }

    var payload struct {
        AccessToken string `json:"access_token"`
        ExpiresIn   int    `json:"expires_in"`
    }
    if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
        return "", fmt.Errorf("failed to decode token response: %w", err)
    }
    if payload.AccessToken == "" {
        return "", fmt.Errorf("token response carried no access_token")
    }

    c.token = payload.AccessToken
    c.tokenExpiry = time.Now().Add(time.Duration(payload.ExpiresIn)*time.Second - time.Minute)
    return c.token, nil
}

// getJSON fetches one API page into out, following nothing: paging is
// the caller's job via @odata.nextLink.
func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
    token, err := c.AccessToken(ctx)
    if err != nil {
        return err
    }

    req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
    if err != nil {
        return err
    }
    req.Header.Set("Authorization", "Bearer "+token)

    resp, err := c.http.Do(req)
    if err != nil {
        return err
    }
    defer resp.Body.Close()

    if resp.StatusCode != http.StatusOK {
        body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
        return fmt.Errorf("GET %s returned %d: %s", rawURL, resp.StatusCode, strings.TrimSpace(string(body)))
    }
    return json.NewDecoder(resp.Body).Decode(out)
}

type odataPage struct {
    NextLink string            `json:"@odata.nextLink"`
    Value    []json.RawMessage `json:"value"`
}

// collect walks an OData collection across all of its pages.
func (c *Client) collect(ctx context.Context, firstURL string) ([]json.RawMessage, error) {
    var items []json.RawMessage
    next := firstURL
    for next != "" {
        var page odataPage
        if err := c.getJSON(ctx, next, &page); err != nil {
            return nil, err
        }
        items = append(items, page.Value...)
        next = page.NextLink
    }
    return items, nil
}

// DiscoverDatasets enumerates every dataset in every workspace the
// service principal can see.
func (c *Client) DiscoverDatasets(ctx context.Context) ([]Dataset, error) {
    base := strings.TrimRight(c.cfg.APIURL, "/") + "/v1.0/myorg"

    groups, err := c.collect(ctx, base+"/groups")
    if err != nil {
        return nil, fmt.Errorf("failed to list workspaces: %w", err)
    }

    var datasets []Dataset
    for _, raw := range groups {
        var group struct {
            ID   string `json:"id"`
            Name string `json:"name"`
        }
        if err := json.Unmarshal(raw, &group); err != nil {
            return nil, err
        }

        items, err := c.collect(ctx, fmt.Sprintf("%s/groups/%s/datasets", base, group.ID))
        if err != nil {
            log.WithError(err).WithField("workspace", group.Name).Warn("Failed to list datasets for workspace")
            continue
        }
        for _, rawDS := range items {
            var ds struct {
                ID   string `json:"id"`
                Name string `json:"name"`
            }
            if err := json.Unmarshal(rawDS, &ds); err != nil {
                return nil, err
            }
            datasets = append(datasets, Dataset{
                Workspace:   group.Name,
                WorkspaceID: group.ID,
                Name:        ds.Name,
                ID:          ds.ID,
            })
        }
    }
    return datasets, nil
}

// LastRefresh returns the most recent refresh of one dataset.
func (c *Client) LastRefresh(ctx context.Context, ds Dataset) (RefreshEvent, error) {
    event := RefreshEvent{Workspace: ds.Workspace, Dataset: ds.Name, Status: StatusNoHistory}

    rawURL := fmt.Sprintf("%s/v1.0/myorg/groups/%s/datasets/%s/refreshes?$top=1",
        strings.TrimRight(c.cfg.APIURL, "/"), ds.WorkspaceID, ds.ID)

    var page struct {
        Value []struct {
            Status      string `json:"status"`
            RefreshType string `json:"refreshType"`
            EndTime     string `json:"endTime"`
        } `json:"value"`
    }
    if err := c.getJSON(ctx, rawURL, &page); err != nil {
        return event, err
    }
    if len(page.Value) == 0 {
        return event, nil
    }

    latest := page.Value[0]
    event.Status = latest.Status
    event.RefreshType = latest.RefreshType
    if latest.EndTime != "" {
        if end, err := time.Parse(time.RFC3339, latest.EndTime); err == nil {
            local := end.Local()
            event.EndTime = &local
        }
    }
    return event, nil
}

// LatestRefreshes discovers every visible dataset and resolves each
// one's most recent refresh. A failure on one dataset degrades to an
// error-status event so the breakage still lands in the audit log; one
// broken workspace cannot blank the whole family.
func (c *Client) LatestRefreshes(ctx context.Context) ([]RefreshEvent, error) {
    datasets, err := c.DiscoverDatasets(ctx)
    if err != nil {
        return nil, err
    }

    events := make([]RefreshEvent, 0, len(datasets))
    for _, ds := range datasets {
        event, err := c.LastRefresh(ctx, ds)
        if err != nil {
            log.WithError(err).WithFields(log.Fields{
                "workspace": ds.Workspace,
                "dataset":   ds.Name,
            }).Warn("Failed to fetch refresh history")
            event = RefreshEvent{Workspace: ds.Workspace, Dataset: ds.Name, Status: StatusError}
        }
        events = append(events, event)
    }
    return events, nil
}
