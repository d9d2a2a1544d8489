package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	NewServer(NewSignatureStore(), nil).Register(e)
	return e
}

// testSig is a minimal valid v5 signature with one module and two public
// functions.
func testSig() []byte {
	b := []byte("IDASGN\x05")
	v5 := make([]byte, 30)
	v5[0] = 13 // arch: ARM
	v5[27] = 6 // library name length
	b = append(b, v5...)
	b = append(b, "libc.a"...)
	b = append(b, 0x00)             // tree-nodes = 0
	b = append(b, 0x02, 0xBE, 0xEF) // crc-length, crc16
	b = append(b, 0x10)             // module length
	b = append(b, 0x00)             // offset 0
	b = append(b, "alpha"...)
	b = append(b, 0x01) // more public names
	b = append(b, 0x08) // offset +8
	b = append(b, "beta"...)
	b = append(b, 0x00) // terminate
	return b
}

func doRequest(t *testing.T, e *echo.Echo, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func uploadTestSig(t *testing.T, e *echo.Echo) SignatureSummary {
	t.Helper()
	rec := doRequest(t, e, http.MethodPost, "/v1/signatures", testSig())
	if rec.Code != http.StatusOK {
		t.Fatalf("upload status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var summary SignatureSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	return summary
}

func TestUploadAndGetSignature(t *testing.T) {
	t.Parallel()
	e := newTestEcho()

	summary := uploadTestSig(t, e)
	if summary.ID == "" {
		t.Fatal("expected an id")
	}
	if summary.Library != "libc.a" || summary.Version != 5 {
		t.Fatalf("summary: %+v", summary)
	}
	if summary.ArchName != "ARM" {
		t.Fatalf("arch name: %q", summary.ArchName)
	}
	if summary.ModuleCount != 1 || summary.FunctionCount != 2 {
		t.Fatalf("counts: %+v", summary)
	}

	getRec := doRequest(t, e, http.MethodGet, "/v1/signatures/"+summary.ID, nil)
	if getRec.Code != http.StatusOK {
		t.Fatalf("get status: got %d body=%s", getRec.Code, getRec.Body.String())
	}

	listRec := doRequest(t, e, http.MethodGet, "/v1/signatures", nil)
	if listRec.Code != http.StatusOK {
		t.Fatalf("list status: got %d", listRec.Code)
	}
	var list SignatureList
	if err := json.Unmarshal(listRec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Signatures) != 1 || list.Signatures[0].ID != summary.ID {
		t.Fatalf("list: %+v", list)
	}
}

func TestSignatureModulesAndFunctions(t *testing.T) {
	t.Parallel()
	e := newTestEcho()
	summary := uploadTestSig(t, e)

	modRec := doRequest(t, e, http.MethodGet, "/v1/signatures/"+summary.ID+"/modules", nil)
	if modRec.Code != http.StatusOK {
		t.Fatalf("modules status: got %d body=%s", modRec.Code, modRec.Body.String())
	}
	var mods ModuleList
	if err := json.Unmarshal(modRec.Body.Bytes(), &mods); err != nil {
		t.Fatalf("decode modules: %v", err)
	}
	if mods.Total != 1 || len(mods.Modules) != 1 {
		t.Fatalf("modules: %+v", mods)
	}
	m := mods.Modules[0]
	if m.CRC16 != 0xBEEF || m.CRCLength != 2 || m.Length != 0x10 {
		t.Fatalf("module: %+v", m)
	}
	if len(m.Functions) != 2 || m.Functions[1].Name != "beta" || m.Functions[1].Offset != 8 {
		t.Fatalf("functions: %+v", m.Functions)
	}

	fnRec := doRequest(t, e, http.MethodGet, "/v1/signatures/"+summary.ID+"/functions", nil)
	if fnRec.Code != http.StatusOK {
		t.Fatalf("functions status: got %d", fnRec.Code)
	}
	var fns FunctionList
	if err := json.Unmarshal(fnRec.Body.Bytes(), &fns); err != nil {
		t.Fatalf("decode functions: %v", err)
	}
	if fns.Total != 2 || fns.Functions[0].Name != "alpha" {
		t.Fatalf("functions: %+v", fns)
	}

	// Paging past the end returns an empty window but the real total.
	pageRec := doRequest(t, e, http.MethodGet, "/v1/signatures/"+summary.ID+"/modules?offset=5&limit=10", nil)
	var page ModuleList
	if err := json.Unmarshal(pageRec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Total != 1 || len(page.Modules) != 0 {
		t.Fatalf("page: %+v", page)
	}
}

func TestDeleteSignature(t *testing.T) {
	t.Parallel()
	e := newTestEcho()
	summary := uploadTestSig(t, e)

	delRec := doRequest(t, e, http.MethodDelete, "/v1/signatures/"+summary.ID, nil)
	if delRec.Code != http.StatusOK {
		t.Fatalf("delete status: got %d", delRec.Code)
	}
	if !strings.Contains(delRec.Body.String(), `"deleted":true`) {
		t.Fatalf("delete body: %s", delRec.Body.String())
	}

	if rec := doRequest(t, e, http.MethodGet, "/v1/signatures/"+summary.ID, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: got %d", rec.Code)
	}
	if rec := doRequest(t, e, http.MethodDelete, "/v1/signatures/"+summary.ID, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: got %d", rec.Code)
	}
}

func TestUploadErrors(t *testing.T) {
	t.Parallel()
	e := newTestEcho()

	if rec := doRequest(t, e, http.MethodPost, "/v1/signatures", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty upload: got %d", rec.Code)
	}

	rec := doRequest(t, e, http.MethodPost, "/v1/signatures", []byte("garbage bytes"))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("junk upload: got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "decode_error") {
		t.Fatalf("junk upload body: %s", rec.Body.String())
	}

	bad := append([]byte("IDASGN"), 4)
	rec = doRequest(t, e, http.MethodPost, "/v1/signatures", bad)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad version upload: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Unsupported FLIRT version 4") {
		t.Fatalf("bad version body: %s", rec.Body.String())
	}

	if rec := doRequest(t, e, http.MethodGet, "/v1/signatures/nope", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing id: got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	e := newTestEcho()
	rec := doRequest(t, e, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("healthz: %d %s", rec.Code, rec.Body.String())
	}
}
