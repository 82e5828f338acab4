package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ardenvale/illuminator-go/internal/api"
	"github.com/ardenvale/illuminator-go/internal/bulkop"
	"github.com/ardenvale/illuminator-go/internal/models"
	"github.com/ardenvale/illuminator-go/internal/testutil"
)

func doJSON(t *testing.T, router http.Handler, cookie *http.Cookie, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != "" {
		reqBody = bytes.NewBufferString(body)
	} else {
		reqBody = bytes.NewBufferString("{}")
	}
	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeProgress(t *testing.T, rr *httptest.ResponseRecorder) bulkop.Progress {
	t.Helper()
	var p bulkop.Progress
	if err := json.Unmarshal(rr.Body.Bytes(), &p); err != nil {
		t.Fatalf("could not decode progress: %v (%s)", err, rr.Body.String())
	}
	return p
}

func TestOperationLifecycleOverHTTP(t *testing.T) {
	app, _ := testutil.SetupTestApp(t)
	server := api.NewServer(app)
	router := server.Router()
	cookie := testutil.GetAuthCookie(t, server, "operator", "password", "user")

	id, err := server.Store().UpsertChronicle("Founding", "The harbor was raised.", "Second Dawn")
	if err != nil {
		t.Fatalf("could not create chronicle: %v", err)
	}

	// Begin moves the controller into the confirming phase.
	rr := doJSON(t, router, cookie, "POST", "/api/operations/tone-rewrite/begin",
		fmt.Sprintf(`{"chronicle_ids":[%d]}`, id))
	if rr.Code != http.StatusOK {
		t.Fatalf("begin failed: %d %s", rr.Code, rr.Body.String())
	}
	p := decodeProgress(t, rr)
	if p.Status != bulkop.StatusConfirming {
		t.Fatalf("expected confirming, got %s", p.Status)
	}
	if p.TotalItems != 1 {
		t.Fatalf("expected 1 item, got %d", p.TotalItems)
	}

	// Confirm starts the run; poll until it reaches a terminal phase.
	rr = doJSON(t, router, cookie, "POST", "/api/operations/tone-rewrite/confirm", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("confirm failed: %d", rr.Code)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		rr = doJSON(t, router, cookie, "GET", "/api/operations/tone-rewrite", "")
		p = decodeProgress(t, rr)
		if p.Status.Terminal() {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("run never finished, status %s", p.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if p.Status != bulkop.StatusComplete {
		t.Fatalf("expected complete, got %s (error %q)", p.Status, p.Error)
	}
	if p.ProcessedItems != 1 {
		t.Fatalf("expected 1 processed item, got %d", p.ProcessedItems)
	}

	// The fake client's canned completion must have been persisted.
	c, err := server.Store().GetChronicle(id)
	if err != nil {
		t.Fatalf("could not reload chronicle: %v", err)
	}
	if c.Body == "The harbor was raised." {
		t.Error("chronicle body was not rewritten")
	}

	// Close returns the controller to idle.
	rr = doJSON(t, router, cookie, "POST", "/api/operations/tone-rewrite/close", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("close failed: %d %s", rr.Code, rr.Body.String())
	}
	p = decodeProgress(t, rr)
	if p.Status != bulkop.StatusIdle {
		t.Fatalf("expected idle after close, got %s", p.Status)
	}
}

func TestOperationMinimizeCreatesPill(t *testing.T) {
	app, _ := testutil.SetupTestApp(t)
	server := api.NewServer(app)
	router := server.Router()
	cookie := testutil.GetAuthCookie(t, server, "operator", "password", "user")

	id, err := server.Store().UpsertEntity("Vessa", "person", "The First Dawn")
	if err != nil {
		t.Fatalf("could not create entity: %v", err)
	}

	rr := doJSON(t, router, cookie, "POST", "/api/operations/entity-describe/begin",
		fmt.Sprintf(`{"entity_ids":[%d]}`, id))
	if rr.Code != http.StatusOK {
		t.Fatalf("begin failed: %d %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, router, cookie, "POST", "/api/operations/entity-describe/minimize",
		`{"label":"Describing entities", "tab_id":"world"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("minimize failed: %d", rr.Code)
	}

	rr = doJSON(t, router, cookie, "GET", "/api/pills", "")
	var pills []models.Pill
	if err := json.Unmarshal(rr.Body.Bytes(), &pills); err != nil {
		t.Fatalf("could not decode pills: %v", err)
	}
	if len(pills) != 1 {
		t.Fatalf("expected 1 pill, got %d", len(pills))
	}
	if pills[0].Label != "Describing entities" {
		t.Errorf("unexpected pill label %q", pills[0].Label)
	}
	if pills[0].TabID != "world" {
		t.Errorf("unexpected pill tab %q", pills[0].TabID)
	}

	// Expanding removes the pill again.
	doJSON(t, router, cookie, "POST", "/api/operations/entity-describe/expand", "")
	rr = doJSON(t, router, cookie, "GET", "/api/pills", "")
	pills = nil
	if err := json.Unmarshal(rr.Body.Bytes(), &pills); err != nil {
		t.Fatalf("could not decode pills: %v", err)
	}
	if len(pills) != 0 {
		t.Fatalf("expected no pills after expand, got %d", len(pills))
	}
}

func TestOperationCancelFromConfirming(t *testing.T) {
	app, _ := testutil.SetupTestApp(t)
	server := api.NewServer(app)
	router := server.Router()
	cookie := testutil.GetAuthCookie(t, server, "operator", "password", "user")

	id, err := server.Store().UpsertEntity("Vessa", "person", "The First Dawn")
	if err != nil {
		t.Fatalf("could not create entity: %v", err)
	}

	doJSON(t, router, cookie, "POST", "/api/operations/entity-describe/begin",
		fmt.Sprintf(`{"entity_ids":[%d]}`, id))

	rr := doJSON(t, router, cookie, "POST", "/api/operations/entity-describe/cancel", "")
	p := decodeProgress(t, rr)
	if p.Status != bulkop.StatusIdle {
		t.Fatalf("cancel from confirming should return to idle, got %s", p.Status)
	}
}

func TestOperationUnknownKind(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()
	cookie := testutil.GetAuthCookie(t, server, "operator", "password", "user")

	rr := doJSON(t, router, cookie, "GET", "/api/operations/no-such-kind", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown kind, got %d", rr.Code)
	}
}

func TestOperationBeginUnknownRecord(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()
	cookie := testutil.GetAuthCookie(t, server, "operator", "password", "user")

	rr := doJSON(t, router, cookie, "POST", "/api/operations/tone-rewrite/begin", `{"chronicle_ids":[404]}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing chronicle, got %d", rr.Code)
	}
}

func TestListOperationsSnapshot(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()
	cookie := testutil.GetAuthCookie(t, server, "operator", "password", "user")

	rr := doJSON(t, router, cookie, "GET", "/api/operations", "")
	var snapshots []bulkop.Progress
	if err := json.Unmarshal(rr.Body.Bytes(), &snapshots); err != nil {
		t.Fatalf("could not decode snapshots: %v", err)
	}
	if len(snapshots) != 6 {
		t.Fatalf("expected 6 operation kinds, got %d", len(snapshots))
	}
	for _, s := range snapshots {
		if s.Status != bulkop.StatusIdle {
			t.Errorf("kind %s should start idle, got %s", s.Kind, s.Status)
		}
	}
}
