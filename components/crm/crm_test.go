// components/crm/crm_test.go
//
// HTTP tests for the sector dialog routes against sqlmock.
//
// Run: go test ./components/crm -v

package crm

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/crm/internal/component"
	"github.com/yanizio/crm/internal/config"
	"github.com/yanizio/crm/internal/form"
	"github.com/yanizio/crm/internal/sector"
)

type fixture struct {
	router chi.Router
	mock   sqlmock.Sqlmock
	tokens *form.Tokens
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens, err := form.NewTokens(base64.RawURLEncoding.EncodeToString([]byte(strings.Repeat("k", 32))))
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}

	c := &Comp{}
	err = c.Init(component.Deps{
		DB:     sqlx.NewDb(db, "mysql"),
		Log:    zap.NewNop().Sugar(),
		Config: &config.Config{Lookup: config.Lookup{CacheSize: 8, TTL: time.Minute}},
		Tokens: tokens,
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return &fixture{router: c.Routes(), mock: mock, tokens: tokens}
}

/*──────────────────────────── SQL expectations ────────────────────────────*/

func (f *fixture) expectSector(id int64, name string, muni any) {
	f.mock.ExpectQuery(regexp.QuoteMeta(`FROM   sector`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "municipality_id", "updated_at"}).
			AddRow(id, name, nil, muni, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func (f *fixture) expectDepartments() {
	f.mock.ExpectQuery(regexp.QuoteMeta(`FROM department`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "Antioquia").
			AddRow(int64(2), "Caldas"))
}

func (f *fixture) expectMunicipalityByID(id, dept int64) {
	f.mock.ExpectQuery(regexp.QuoteMeta(`FROM municipality WHERE id = ?`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "department_id"}).
			AddRow(id, "Bello", dept))
}

func (f *fixture) expectMunicipalities(dept int64) {
	f.mock.ExpectQuery(regexp.QuoteMeta(`WHERE  department_id = ?`)).
		WithArgs(dept).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "department_id"}).
			AddRow(int64(5), "Bello", dept).
			AddRow(int64(7), "Envigado", dept))
}

func (f *fixture) verify(t *testing.T) {
	t.Helper()
	if err := f.mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

/*──────────────────────────── request helpers ─────────────────────────────*/

func (f *fixture) post(t *testing.T, path string, v url.Values) *httptest.ResponseRecorder {
	t.Helper()
	if v.Get(form.TokenField) == "" {
		tok, err := f.tokens.Generate()
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		v.Set(form.TokenField, tok)
	}
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(v.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, r)
	return rr
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func (f *fixture) patch(path, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPatch, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, r)
	return rr
}

func assertContains(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(body, w) {
			t.Errorf("body missing %q", w)
		}
	}
	if t.Failed() {
		t.Logf("body:\n%s", body)
	}
}

/*──────────────────────────── GET ─────────────────────────────────────────*/

func TestGetEdit_PrefillsSector(t *testing.T) {
	f := newFixture(t)
	f.expectSector(4, "North", int64(5))
	f.expectDepartments()
	f.expectMunicipalityByID(5, 1)
	f.expectMunicipalities(1)

	rr := f.get("/sectors/4/edit")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	assertContains(t, rr.Body.String(),
		`<title>Edit sector – North</title>`,
		`<h2 id="sector-edit-title">Edit sector</h2>`,
		`id="fld-name" name="name"`,
		`value="North"`,
		`<option value="1" selected>Antioquia</option>`,
		`<option value="5" selected>Bello</option>`,
		`<option value="7">Envigado</option>`,
		`rows="3"`,
		`<span class="hint">(optional)</span>`,
		`name="csrf_token" value="`,
		`>Save changes</button>`,
		`>Cancel</button>`,
	)
	if strings.Contains(rr.Body.String(), "aria-invalid") {
		t.Error("fresh dialog shows errors")
	}
	f.verify(t)
}

func TestGetEdit_DepartmentOverride(t *testing.T) {
	f := newFixture(t)
	f.expectSector(4, "North", int64(5))
	f.expectDepartments()

	rr := f.get("/sectors/4/edit?department=")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	// Municipality list is empty, so the stored id renders with a blank label.
	assertContains(t, rr.Body.String(), `<option value="5" selected></option>`)
	f.verify(t)
}

func TestGetEdit_NotFound(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectQuery(regexp.QuoteMeta(`FROM   sector`)).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if rr := f.get("/sectors/404/edit"); rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if rr := f.get("/sectors/abc/edit"); rr.Code != http.StatusNotFound {
		t.Fatalf("non-numeric id status = %d, want 404", rr.Code)
	}
	f.verify(t)
}

func TestListSectors(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectQuery(regexp.QuoteMeta(`ORDER  BY name`)).
		WithArgs(int64(listLimit)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "municipality_id", "updated_at"}).
			AddRow(int64(4), "North", "hills", int64(5), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))

	rr := f.get("/sectors?updated=4")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	assertContains(t, rr.Body.String(),
		`<p class="flash" role="status">Sector 4 updated.</p>`,
		`<td>North</td>`,
		`<td>hills</td>`,
		`<a href="/sectors/4/edit">Edit</a>`,
	)
	f.verify(t)
}

func TestStaticStylesheet(t *testing.T) {
	f := newFixture(t)
	rr := f.get("/static/crm.css")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), ".form-field") {
		t.Fatalf("status = %d, body = %q", rr.Code, rr.Body.String())
	}
}

/*──────────────────────────── POST ────────────────────────────────────────*/

func TestPostEdit_EmptyNameIsRejected(t *testing.T) {
	f := newFixture(t)
	f.expectSector(4, "North", int64(5))
	f.expectDepartments()
	f.expectMunicipalities(1)

	rr := f.post(t, "/sectors/4/edit", url.Values{
		"name":           {"   "},
		"department":     {"1"},
		"municipalityId": {"5"},
		"action":         {"save"},
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
	body := rr.Body.String()
	assertContains(t, body,
		`aria-invalid="true" aria-describedby="fld-name-error"`,
		`<p id="fld-name-error" class="error" role="alert">name is required</p>`,
	)
	if strings.Contains(body, "fld-municipalityId-error") {
		t.Error("municipality flagged although selected")
	}
	f.verify(t) // no UPDATE expected
}

func TestPostEdit_MissingMunicipality(t *testing.T) {
	f := newFixture(t)
	f.expectSector(4, "North", int64(5))
	f.expectDepartments()
	f.expectMunicipalities(1)

	rr := f.post(t, "/sectors/4/edit", url.Values{
		"name":       {"North"},
		"department": {"1"},
		"action":     {"save"},
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
	assertContains(t, rr.Body.String(), `must select a municipality`)
	if strings.Contains(rr.Body.String(), "fld-name-error") {
		t.Error("name flagged although present")
	}
	f.verify(t)
}

func TestPostEdit_SavesAndRedirects(t *testing.T) {
	f := newFixture(t)
	f.expectSector(4, "North", int64(5))
	f.expectDepartments()
	f.expectMunicipalities(1)
	f.mock.ExpectExec(regexp.QuoteMeta(`UPDATE sector`)).
		WithArgs("South", nil, int64(7), sqlmock.AnyArg(), int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rr := f.post(t, "/sectors/4/edit", url.Values{
		"name":           {"  South "},
		"description":    {""},
		"department":     {"1"},
		"municipalityId": {"7"},
		"action":         {"save"},
	})
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/sectors?updated=4" {
		t.Fatalf("Location = %q", loc)
	}
	f.verify(t)
}

func TestPostEdit_UpdateFailureKeepsDialogOpen(t *testing.T) {
	f := newFixture(t)
	f.expectSector(4, "North", int64(5))
	f.expectDepartments()
	f.expectMunicipalities(1)
	f.mock.ExpectExec(regexp.QuoteMeta(`UPDATE sector`)).
		WillReturnError(errors.New("deadlock"))

	rr := f.post(t, "/sectors/4/edit", url.Values{
		"name":           {"South"},
		"description":    {"coastal"},
		"department":     {"1"},
		"municipalityId": {"7"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	assertContains(t, body, `value="South"`, `>coastal</textarea>`, `<option value="7" selected>Envigado</option>`, `>Save changes</button>`)
	if strings.Contains(body, `role="alert"`) {
		t.Error("swallowed failure surfaced as a field error")
	}
	f.verify(t)
}

func TestPostEdit_Cancel(t *testing.T) {
	f := newFixture(t)
	f.expectSector(4, "North", int64(5))
	f.expectDepartments()

	rr := f.post(t, "/sectors/4/edit", url.Values{"name": {""}, "action": {"cancel"}})
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/sectors" {
		t.Fatalf("status = %d, Location = %q", rr.Code, rr.Header().Get("Location"))
	}
	f.verify(t)
}

func TestPostEdit_DepartmentRefresh(t *testing.T) {
	f := newFixture(t)
	f.expectSector(4, "North", int64(5))
	f.expectDepartments()
	f.expectMunicipalities(2)

	rr := f.post(t, "/sectors/4/edit", url.Values{
		"name":           {"North"},
		"department":     {"2"},
		"municipalityId": {"5"},
		"action":         {"department"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	assertContains(t, rr.Body.String(), `<option value="2" selected>Caldas</option>`)
	f.verify(t)
}

func TestPostEdit_RejectsBadToken(t *testing.T) {
	f := newFixture(t)
	rr := f.post(t, "/sectors/4/edit", url.Values{form.TokenField: {"forged"}, "name": {"x"}})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rr.Code)
	}
	f.verify(t)
}

/*──────────────────────────── PATCH ───────────────────────────────────────*/

func TestPatchSector_Saves(t *testing.T) {
	f := newFixture(t)
	f.expectSector(4, "North", int64(5))
	f.mock.ExpectExec(regexp.QuoteMeta(`UPDATE sector`)).
		WithArgs("South", "coastal", int64(7), sqlmock.AnyArg(), int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rr := f.patch("/api/sectors/4", `{"name":"South","description":"coastal","municipalityId":"7"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body)
	}
	var got sector.Patch
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	desc := "coastal"
	want := sector.Patch{ID: 4, Name: "South", Description: &desc, MunicipalityID: 7}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("patch mismatch (-want +got):\n%s", diff)
	}
	f.verify(t)
}

func TestPatchSector_Invalid(t *testing.T) {
	f := newFixture(t)
	f.expectSector(4, "North", int64(5))

	rr := f.patch("/api/sectors/4", `{"name":" ","description":null,"municipalityId":null}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
	var got struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]string{
		sector.FieldName:         sector.MsgNameRequired,
		sector.FieldMunicipality: sector.MsgMunicipalityRequired,
	}
	if diff := cmp.Diff(want, got.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	f.verify(t)
}

func TestPatchSector_UpdateFails(t *testing.T) {
	f := newFixture(t)
	f.expectSector(4, "North", int64(5))
	f.mock.ExpectExec(regexp.QuoteMeta(`UPDATE sector`)).
		WillReturnError(errors.New("connection reset"))

	if rr := f.patch("/api/sectors/4", `{"name":"South","municipalityId":5}`); rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rr.Code)
	}
	f.verify(t)
}

func TestPatchSector_RequestErrors(t *testing.T) {
	f := newFixture(t)

	r := httptest.NewRequest(http.MethodPatch, "/api/sectors/4", strings.NewReader(`name=x`))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, r)
	if rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("form body status = %d, want 415", rr.Code)
	}

	if rr := f.patch("/api/sectors/4", `{"name":`); rr.Code != http.StatusBadRequest {
		t.Fatalf("truncated body status = %d, want 400", rr.Code)
	}
	f.verify(t)
}
