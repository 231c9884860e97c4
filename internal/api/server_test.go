package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/depscout/depscout/pkg/config"
	"github.com/depscout/depscout/pkg/export"
	"github.com/depscout/depscout/pkg/repo"
)

func testServer(t *testing.T) (*Server, *repo.Layout) {
	t.Helper()
	root := t.TempDir()
	layout, err := repo.NewLayout(root)
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{RepoRoot: root}
	return NewServer(cfg, nil, nil), layout
}

func installPOM(t *testing.T, layout *repo.Layout, groupID, artifactID, version, content string) string {
	t.Helper()
	path := layout.POMPath(groupID, artifactID, version)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHealthz(t *testing.T) {
	server, _ := testServer(t)
	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestResolveEndpoint(t *testing.T) {
	server, layout := testServer(t)
	appPath := installPOM(t, layout, "com.acme", "app", "1.0", `<project>
  <groupId>com.acme</groupId>
  <artifactId>app</artifactId>
  <version>1.0</version>
  <dependencies>
    <dependency>
      <groupId>org.lib</groupId>
      <artifactId>core</artifactId>
      <version>2.5</version>
    </dependency>
  </dependencies>
</project>`)

	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	body, _ := json.Marshal(map[string]any{"roots": []string{appPath}, "edges": true})
	resp, err := http.Post(ts.URL+"/resolve", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var report export.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(report.Coordinates) != 2 {
		t.Errorf("coordinates = %+v, want app and core", report.Coordinates)
	}
	if len(report.Edges) != 1 {
		t.Errorf("edges = %+v, want one dependency edge", report.Edges)
	}
	if report.RunID == "" {
		t.Error("missing run ID")
	}
}

func TestResolveEndpoint_BadRequest(t *testing.T) {
	server, _ := testServer(t)
	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	for _, body := range []string{"", "{}", `{"roots": []}`, "not json"} {
		resp, err := http.Post(ts.URL+"/resolve", "application/json", bytes.NewReader([]byte(body)))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, resp.StatusCode)
		}
	}
}

func TestScanEndpoint(t *testing.T) {
	server, layout := testServer(t)
	installPOM(t, layout, "com.acme", "app", "1.0", `<project>
  <groupId>com.acme</groupId>
  <artifactId>app</artifactId>
  <version>1.0</version>
</project>`)
	// A second locally cached version picked up by the completeness pass.
	installPOM(t, layout, "com.acme", "app", "2.0", `<project>
  <groupId>com.acme</groupId>
  <artifactId>app</artifactId>
  <version>2.0</version>
</project>`)

	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	body, _ := json.Marshal(map[string]any{"dirs": []string{layout.Root()}})
	resp, err := http.Post(ts.URL+"/scan", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var report export.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if len(report.Coordinates) != 2 {
		t.Errorf("coordinates = %+v, want both versions", report.Coordinates)
	}
}
