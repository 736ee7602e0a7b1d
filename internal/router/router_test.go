package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"care-journal/internal/adapters/accounts/memdir"
	"care-journal/internal/ports/accounts"
	"care-journal/internal/router"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dir := memdir.New()
	dir.Put(accounts.User{ID: "mom-1", Name: "Mamá", Email: "mom@example.com"})
	dir.Put(accounts.User{ID: "aunt-1", Name: "Tía Marta", Email: "marta@example.com"})
	dir.Put(accounts.User{ID: "dr-1", Name: "Dra. Ana", Email: "ana@clinic.example"})

	ts := httptest.NewServer(router.NewRouter(router.Options{
		AuthVerifier:   nil, // modo dev
		Directory:      dir,
		InviteLinkBase: "http://app.test",
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_ClinicianConsentLifecycle(t *testing.T) {
	ts := newTestServer(t)

	// 1) Mamá crea el caso
	caseID := createCase(t, ts.URL, "mom-1", "Leo")

	// 2) Mamá registra dos observaciones: una de convulsiones+piel, una sin tags
	createEvent(t, ts.URL, "mom-1", caseID, map[string]any{
		"type":        "SEIZURE",
		"free_text":   "episodio corto",
		"occurred_at": time.Now().UTC().Format(time.RFC3339),
		"scopes":      []string{"seizures", "skin_wounds"},
	})
	createEvent(t, ts.URL, "mom-1", caseID, map[string]any{
		"type":        "NOTE",
		"free_text":   "día tranquilo",
		"occurred_at": time.Now().UTC().Format(time.RFC3339),
	})

	// 3) Mamá invita a la neuróloga
	link := createInvite(t, ts.URL, "mom-1", caseID, map[string]any{
		"email": "ana@clinic.example",
		"type":  "CLINICIAN",
	})
	token := tokenFromLink(t, link)

	// 4) La doctora mira la invitación sin estar autenticada
	{
		st, _ := doReq(t, ts.URL, "GET", "/invite/"+token, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 viewing invite, got %d", st)
		}
	}

	// 5) Acepta eligiendo especialidad
	{
		st, body := doReq(t, ts.URL, "POST", "/invite/"+token+"/accept", "dr-1", map[string]any{
			"specialty": "neurology",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 accept, got %d body=%s", st, string(body))
		}
	}

	// 6) El feed de la doctora trae solo el evento con overlap, parcialmente redactado
	var membershipID string
	{
		st, body := doReq(t, ts.URL, "GET", "/cases/"+caseID+"/events", "dr-1", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 clinician feed, got %d body=%s", st, string(body))
		}
		var feed []struct {
			Scopes          []string `json:"scopes"`
			PartiallyHidden bool     `json:"partially_hidden"`
		}
		mustUnmarshal(t, body, &feed)
		if len(feed) != 1 {
			t.Fatalf("expected 1 visible event for clinician, got %d", len(feed))
		}
		if len(feed[0].Scopes) != 1 || feed[0].Scopes[0] != "seizures" {
			t.Fatalf("expected redacted tags [seizures], got %v", feed[0].Scopes)
		}
		if !feed[0].PartiallyHidden {
			t.Fatal("expected partially_hidden signal")
		}
	}

	// 7) Mamá ve el resumen de sharing con la doctora ACTIVE
	{
		st, body := doReq(t, ts.URL, "GET", "/cases/"+caseID+"/members", "mom-1", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 members, got %d body=%s", st, string(body))
		}
		var members []struct {
			ID            string `json:"id"`
			UserID        string `json:"user_id"`
			Kind          string `json:"kind"`
			ConsentStatus string `json:"consent_status"`
		}
		mustUnmarshal(t, body, &members)
		for _, m := range members {
			if m.Kind == "CARE_TEAM" {
				membershipID = m.ID
				if m.ConsentStatus != "ACTIVE" {
					t.Fatalf("expected ACTIVE consent, got %q", m.ConsentStatus)
				}
			}
		}
		if membershipID == "" {
			t.Fatalf("clinician membership missing in %s", string(body))
		}
	}

	// 8) Mamá pausa: la doctora deja de ver el diario (lista vacía, no error)
	{
		st, body := doReq(t, ts.URL, "POST", "/memberships/"+membershipID+"/consent/pause", "mom-1", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 pause, got %d body=%s", st, string(body))
		}
		st, body = doReq(t, ts.URL, "GET", "/cases/"+caseID+"/events", "dr-1", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 paused feed, got %d", st)
		}
		var feed []any
		mustUnmarshal(t, body, &feed)
		if len(feed) != 0 {
			t.Fatalf("expected empty feed while paused, got %d", len(feed))
		}
	}

	// 9) Reanuda y vuelve la visibilidad
	{
		st, _ := doReq(t, ts.URL, "POST", "/memberships/"+membershipID+"/consent/resume", "mom-1", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 resume, got %d", st)
		}
		st, body := doReq(t, ts.URL, "GET", "/cases/"+caseID+"/events", "dr-1", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 resumed feed, got %d", st)
		}
		var feed []any
		mustUnmarshal(t, body, &feed)
		if len(feed) != 1 {
			t.Fatalf("expected 1 event after resume, got %d", len(feed))
		}
	}

	// 10) Revoca: terminal, y la doctora pierde standing (403)
	{
		st, _ := doReq(t, ts.URL, "POST", "/memberships/"+membershipID+"/consent/revoke", "mom-1", nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 revoke, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "GET", "/cases/"+caseID+"/events", "dr-1", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 after revoke, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "POST", "/memberships/"+membershipID+"/consent/resume", "mom-1", nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 resuming a revoked consent, got %d", st)
		}
	}

	// 11) El audit trail registró el ciclo completo
	{
		st, body := doReq(t, ts.URL, "GET", "/cases/"+caseID+"/audit/permissions", "mom-1", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 audit, got %d body=%s", st, string(body))
		}
		var entries []struct {
			Action     string `json:"action"`
			ObjectType string `json:"object_type"`
		}
		mustUnmarshal(t, body, &entries)
		if len(entries) < 4 {
			t.Fatalf("expected at least invite+accept+2 edits+revoke, got %d entries", len(entries))
		}
	}
}

func TestHTTP_FamilyInvite_EmailMismatch(t *testing.T) {
	ts := newTestServer(t)

	caseID := createCase(t, ts.URL, "mom-1", "Leo")

	link := createInvite(t, ts.URL, "mom-1", caseID, map[string]any{
		"email": "marta@example.com",
		"type":  "FAMILY",
		"role":  "VIEWER",
	})
	token := tokenFromLink(t, link)

	// La doctora intenta usar el invite de la tía => 403
	st, _ := doReq(t, ts.URL, "POST", "/invite/"+token+"/accept", "dr-1", nil)
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 email mismatch, got %d", st)
	}

	// La tía acepta y entra como VIEWER: puede leer pero no escribir
	st, body := doReq(t, ts.URL, "POST", "/invite/"+token+"/accept", "aunt-1", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 accept, got %d body=%s", st, string(body))
	}

	st, _ = doReq(t, ts.URL, "GET", "/cases/"+caseID+"/events", "aunt-1", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 viewer feed, got %d", st)
	}

	st, _ = doReq(t, ts.URL, "POST", "/cases/"+caseID+"/events", "aunt-1", map[string]any{
		"type":        "NOTE",
		"occurred_at": time.Now().UTC().Format(time.RFC3339),
	})
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 viewer create, got %d", st)
	}
}

func TestHTTP_CaseExistenceNotLeaked(t *testing.T) {
	ts := newTestServer(t)

	caseID := createCase(t, ts.URL, "mom-1", "Leo")

	// Sin membresía: 404, no 403.
	st, _ := doReq(t, ts.URL, "GET", "/cases/"+caseID, "dr-1", nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 for outsider, got %d", st)
	}
}

func TestHTTP_ReferenceEndpoints(t *testing.T) {
	ts := newTestServer(t)

	st, body := doReq(t, ts.URL, "GET", "/scopes", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 scopes, got %d", st)
	}
	var sc []struct {
		Code  string `json:"code"`
		Label string `json:"label"`
	}
	mustUnmarshal(t, body, &sc)
	if len(sc) != 11 {
		t.Fatalf("expected 11 scopes, got %d", len(sc))
	}

	st, body = doReq(t, ts.URL, "GET", "/specialties", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 specialties, got %d", st)
	}
	var sp []struct {
		Code          string   `json:"code"`
		DefaultScopes []string `json:"default_scopes"`
	}
	mustUnmarshal(t, body, &sp)
	if len(sp) != 9 {
		t.Fatalf("expected 9 specialties, got %d", len(sp))
	}
}

// -------------------------
// Helpers
// -------------------------

func createCase(t *testing.T, baseURL, userID, name string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/cases", userID, map[string]any{
		"child_display_name": name,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create case, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	mustUnmarshal(t, body, &resp)
	if resp.ID == "" {
		t.Fatalf("create case: missing id body=%s", string(body))
	}
	return resp.ID
}

func createInvite(t *testing.T, baseURL, userID, caseID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/cases/"+caseID+"/invites", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create invite, got %d body=%s", st, string(body))
	}

	var resp struct {
		Link string `json:"link"`
	}
	mustUnmarshal(t, body, &resp)
	if resp.Link == "" {
		t.Fatalf("create invite: missing link body=%s", string(body))
	}
	return resp.Link
}

func createEvent(t *testing.T, baseURL, userID, caseID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/cases/"+caseID+"/events", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create event, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	mustUnmarshal(t, body, &resp)
	return resp.ID
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()

	const marker = "/invite/"
	idx := bytes.LastIndex([]byte(link), []byte(marker))
	if idx < 0 {
		t.Fatalf("link without token: %s", link)
	}
	return link[idx+len(marker):]
}

func mustUnmarshal(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("unmarshal %s: %v", string(body), err)
	}
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
