// internal/powerbi/client_test.go
package powerbi

import (
    "context"
    "fmt"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/drogamais/Fiscal-BI/internal/config"
)

func newFakeService(t *testing.T) (*httptest.Server, *Client) {
    t.Helper()

    mux := http.NewServeMux()
    server := httptest.NewServer(mux)
    t.Cleanup(server.Close)

    mux.HandleFunc("/tenant-1/oauth2/v2.0/token", func(w http.ResponseWriter, r *http.Request) {
        if r.Method != http.MethodPost {
            t.Errorf("token endpoint hit with %s", r.Method)
        }
        if err := r.ParseForm(); err != nil {
            t.Fatalf("bad form: %v", err)
        }
        if r.PostForm.Get("grant_type") != "client_credentials" {
            t.Errorf("grant_type = %q", r.PostForm.Get("grant_type"))
        }
        if r.PostForm.Get("scope") != tokenScope {
            t.Errorf("scope = %q", r.PostForm.Get("scope"))
        }
        fmt.Fprint(w, `{"access_token":"tok-123","expires_in":3600}`)
    })

    // Workspaces are paginated across two pages.
    mux.HandleFunc("/v1.0/myorg/groups", func(w http.ResponseWriter, r *http.Request) {
        if r.Header.Get("Authorization") != "Bearer tok-123" {
            w.WriteHeader(http.StatusUnauthorized)
            return
        }
        fmt.Fprintf(w, `{"@odata.nextLink":"%s/v1.0/myorg/groups-page2","value":[{"id":"ws-1","name":"Finance"}]}`, server.URL)
    })
    mux.HandleFunc("/v1.0/myorg/groups-page2", func(w http.ResponseWriter, r *http.Request) {
        fmt.Fprint(w, `{"value":[{"id":"ws-2","name":"Ops"}]}`)
    })

    mux.HandleFunc("/v1.0/myorg/groups/ws-1/datasets", func(w http.ResponseWriter, r *http.Request) {
        fmt.Fprint(w, `{"value":[{"id":"ds-1","name":"sales model"}]}`)
    })
    mux.HandleFunc("/v1.0/myorg/groups/ws-2/datasets", func(w http.ResponseWriter, r *http.Request) {
        fmt.Fprint(w, `{"value":[{"id":"ds-2","name":"ops model"},{"id":"ds-3","name":"broken model"}]}`)
    })

    mux.HandleFunc("/v1.0/myorg/groups/ws-1/datasets/ds-1/refreshes", func(w http.ResponseWriter, r *http.Request) {
        if r.URL.RawQuery != "$top=1" {
            t.Errorf("refreshes query = %q", r.URL.RawQuery)
        }
        fmt.Fprint(w, `{"value":[{"status":"Completed","refreshType":"Scheduled","endTime":"2024-03-02T08:45:00Z"}]}`)
    })
    mux.HandleFunc("/v1.0/myorg/groups/ws-2/datasets/ds-2/refreshes", func(w http.ResponseWriter, r *http.Request) {
        fmt.Fprint(w, `{"value":[]}`)
    })
    mux.HandleFunc("/v1.0/myorg/groups/ws-2/datasets/ds-3/refreshes", func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusInternalServerError)
    })

    client := NewClient(config.PowerBIConfig{
        Enabled:      true,
        TenantID:     "tenant-1",
        ClientID:     "client",
        ClientSecret: "secret",
        LoginURL:     server.URL,
        APIURL:       server.URL,
    })
    return server, client
}

func TestAccessTokenCached(t *testing.T) {
    _, client := newFakeService(t)

    tok, err := client.AccessToken(context.Background())
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if tok != "tok-123" {
        t.Fatalf("token = %q", tok)
    }

    again, err := client.AccessToken(context.Background())
    if err != nil || again != tok {
        t.Fatalf("cached token lookup failed: %q, %v", again, err)
    }
}

func TestDiscoverDatasetsFollowsPaging(t *testing.T) {
    _, client := newFakeService(t)

    datasets, err := client.DiscoverDatasets(context.Background())
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if len(datasets) != 3 {
        t.Fatalf("datasets = %d, want 3", len(datasets))
    }
    if datasets[0].Workspace != "Finance" || datasets[0].Name != "sales model" {
        t.Fatalf("unexpected first dataset: %+v", datasets[0])
    }
    if datasets[1].WorkspaceID != "ws-2" {
        t.Fatalf("paging lost the second workspace: %+v", datasets[1])
    }
}

func TestLatestRefreshes(t *testing.T) {
    _, client := newFakeService(t)

    events, err := client.LatestRefreshes(context.Background())
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if len(events) != 3 {
        t.Fatalf("events = %d, want 3", len(events))
    }

    completed := events[0]
    if completed.Status != "Completed" || completed.RefreshType != "Scheduled" {
        t.Fatalf("unexpected refresh event: %+v", completed)
    }
    if completed.EndTime == nil {
        t.Fatalf("completed refresh must carry an end time")
    }

    empty := events[1]
    if empty.Status != StatusNoHistory || empty.EndTime != nil {
        t.Fatalf("empty history must map to NoHistory: %+v", empty)
    }

    // A dataset whose refresh lookup fails still produces an event, so
    // the breakage lands in the audit log as Failed.
    broken := events[2]
    if broken.Dataset != "broken model" || broken.Status != StatusError || broken.EndTime != nil {
        t.Fatalf("failed lookup must map to an error event: %+v", broken)
    }
}
