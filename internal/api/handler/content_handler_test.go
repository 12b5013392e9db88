package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
)

type stubHomeService struct {
	ports.HomeService
	homes map[string]domain.Home
}

func (s *stubHomeService) Get(_ context.Context, id string) (*domain.Home, error) {
	h, ok := s.homes[id]
	if !ok {
		return nil, domain.ErrHomeNotFound
	}
	return &h, nil
}

type stubKioskService struct {
	ports.KioskService
	filters []domain.KioskFilter
}

func (s *stubKioskService) List(_ context.Context, f domain.KioskFilter) ([]domain.KioskCheckIn, error) {
	s.filters = append(s.filters, f)
	return nil, nil
}

func TestKioskHandler_ListIsScopedToHome(t *testing.T) {
	homes := &stubHomeService{homes: map[string]domain.Home{"barry": {ID: "barry", Name: "Bellavista Barry"}}}
	kiosk := &stubKioskService{}
	h := NewKioskHandler(kiosk, homes)

	e := newTestEcho()
	c, rec := jsonRequest(e, http.MethodGet, "/api/kiosk/check-ins?location=Cardiff&status=checked-in", "")
	withClaims(c, domain.RoleHomeAdmin, "barry", time.Now().Add(time.Hour))
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != "[]\n" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}

	c, _ = jsonRequest(e, http.MethodGet, "/api/kiosk/check-ins?location=Cardiff", "")
	withClaims(c, domain.RoleSuperadmin, "", time.Now().Add(time.Hour))
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	want := []domain.KioskFilter{
		{Location: "Bellavista Barry", Status: "checked-in"},
		{Location: "Cardiff"},
	}
	if len(kiosk.filters) != 2 || kiosk.filters[0] != want[0] || kiosk.filters[1] != want[1] {
		t.Fatalf("filters = %+v", kiosk.filters)
	}
}

type stubMealService struct {
	ports.MealPlanService
	plans []domain.MealPlan
	bulk  []ports.MealPlanInput
}

func (s *stubMealService) List(_ context.Context, f domain.MealPlanFilter) ([]domain.MealPlan, error) {
	if f.HomeID != "barry" {
		return nil, domain.ErrHomeNotFound
	}
	return s.plans, nil
}

func (s *stubMealService) BulkCreate(_ context.Context, _ string, in []ports.MealPlanInput) ([]domain.MealPlan, error) {
	s.bulk = in
	return make([]domain.MealPlan, len(in)), nil
}

func groupStub(plans []domain.MealPlan) map[string][]domain.MealPlan {
	out := map[string][]domain.MealPlan{}
	for _, p := range plans {
		out[p.DayOfWeek] = append(out[p.DayOfWeek], p)
	}
	return out
}

func TestMealPlanHandler_List(t *testing.T) {
	svc := &stubMealService{plans: []domain.MealPlan{
		{ID: "1", HomeID: "barry", DayOfWeek: "Monday", MealName: "Porridge"},
		{ID: "2", HomeID: "barry", DayOfWeek: "Tuesday", MealName: "Toast"},
	}}
	h := NewMealPlanHandler(svc, groupStub)
	e := newTestEcho()

	c, rec := jsonRequest(e, http.MethodGet, "/api/meal-plans/barry?groupByDay=true", "")
	c.SetParamNames("homeId")
	c.SetParamValues("barry")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var grouped mealPlanListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &grouped); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(grouped.ByDay["Monday"]) != 1 || grouped.Meals != nil {
		t.Fatalf("unexpected grouped response: %+v", grouped)
	}

	c, rec = jsonRequest(e, http.MethodGet, "/api/meal-plans/barry", "")
	c.SetParamNames("homeId")
	c.SetParamValues("barry")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var flat mealPlanListResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &flat)
	if len(flat.Meals) != 2 || flat.ByDay != nil {
		t.Fatalf("unexpected flat response: %+v", flat)
	}

	c, _ = jsonRequest(e, http.MethodGet, "/api/meal-plans/ghost", "")
	c.SetParamNames("homeId")
	c.SetParamValues("ghost")
	if err := h.List(c); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMealPlanHandler_BulkCreateValidatesEveryMeal(t *testing.T) {
	svc := &stubMealService{}
	h := NewMealPlanHandler(svc, groupStub)
	e := newTestEcho()

	body := `{"homeId":"barry","meals":[{"dayOfWeek":"Monday","mealType":"Lunch","mealName":"Soup"},{"dayOfWeek":"Monday","mealType":"Elevenses","mealName":"Cake"}]}`
	c, _ := jsonRequest(e, http.MethodPost, "/api/meal-plans/bulk", body)
	err := h.BulkCreate(c)
	var v *domain.ValidationError
	if !errors.As(err, &v) || v.Fields[0].Field != "meals[1].mealType" {
		t.Fatalf("expected indexed validation error, got %v", err)
	}
	if svc.bulk != nil {
		t.Fatalf("service must not be called")
	}

	body = `{"homeId":"barry","meals":[{"dayOfWeek":"Monday","mealType":"Lunch","mealName":"Soup"}]}`
	c, rec := jsonRequest(e, http.MethodPost, "/api/meal-plans/bulk", body)
	if err := h.BulkCreate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated || len(svc.bulk) != 1 {
		t.Fatalf("unexpected response %d", rec.Code)
	}
}

func TestReviewHandler_Import(t *testing.T) {
	e := newTestEcho()

	accepted := NewReviewHandler(nil, func() bool { return true })
	c, rec := jsonRequest(e, http.MethodPost, "/api/reviews/import", "")
	if err := accepted.Import(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	busy := NewReviewHandler(nil, func() bool { return false })
	c, _ = jsonRequest(e, http.MethodPost, "/api/reviews/import", "")
	if err := busy.Import(c); !errors.Is(err, ErrImportBusy) {
		t.Fatalf("expected ErrImportBusy, got %v", err)
	}
}

type stubAuditReader struct{ got domain.AuditFilter }

func (s *stubAuditReader) Recent(_ context.Context, f domain.AuditFilter) ([]domain.AuditEntry, error) {
	s.got = f
	return nil, nil
}

func TestAuditHandler_List(t *testing.T) {
	reader := &stubAuditReader{}
	h := NewAuditHandler(reader)
	e := newTestEcho()

	c, rec := jsonRequest(e, http.MethodGet, "/api/audit-log?limit=20&action=UPDATE&resource_type=home", "")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Body.String() != "[]\n" {
		t.Fatalf("empty list should render as [], got %q", rec.Body.String())
	}
	if reader.got != (domain.AuditFilter{Action: "UPDATE", ResourceType: "home", Limit: 20}) {
		t.Fatalf("filter = %+v", reader.got)
	}

	c, _ = jsonRequest(e, http.MethodGet, "/api/audit-log?limit=lots", "")
	var v *domain.ValidationError
	if err := h.List(c); !errors.As(err, &v) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

type stubUploads struct{ got []ports.UploadInput }

func (s *stubUploads) Upload(_ context.Context, in ports.UploadInput) (*ports.UploadResult, error) {
	s.got = append(s.got, in)
	return &ports.UploadResult{URL: "/uploads/" + in.Prefix + "abc.pdf", Filename: in.Prefix + "abc.pdf", Kind: "document"}, nil
}

type stubVacancyService struct {
	ports.VacancyService
	applied []ports.ApplicationInput
}

func (s *stubVacancyService) Apply(_ context.Context, in ports.ApplicationInput) (*domain.JobApplication, error) {
	s.applied = append(s.applied, in)
	return &domain.JobApplication{ID: "app-1", FirstName: in.FirstName, CVURL: in.CVURL}, nil
}

func multipartRequest(t *testing.T, e *echo.Echo, target string, fields map[string]string, fileField, fileName string, data []byte) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = part.Write(data)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestVacancyHandler_ApplyWithCV(t *testing.T) {
	uploads := &stubUploads{}
	svc := &stubVacancyService{}
	h := NewVacancyHandler(svc, uploads)
	e := newTestEcho()

	fields := map[string]string{"firstName": "Sam", "lastName": "Jones", "email": "sam@example.com", "privacyConsent": "true"}
	c, rec := multipartRequest(t, e, "/api/apply", fields, "cv", "cv.pdf", []byte("%PDF-1.4 test"))
	if err := h.Apply(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if len(uploads.got) != 1 || uploads.got[0].Prefix != "cv/" || !uploads.got[0].Documents {
		t.Fatalf("cv upload = %+v", uploads.got)
	}
	if len(svc.applied) != 1 || svc.applied[0].CVURL != "/uploads/cv/abc.pdf" || !svc.applied[0].PrivacyConsent {
		t.Fatalf("application = %+v", svc.applied)
	}
}

func TestVacancyHandler_ApplyWithoutCV(t *testing.T) {
	uploads := &stubUploads{}
	svc := &stubVacancyService{}
	h := NewVacancyHandler(svc, uploads)
	e := newTestEcho()

	c, _ := jsonRequest(e, http.MethodPost, "/api/apply", `{"firstName":"Sam","lastName":"Jones","email":"sam@example.com","privacyConsent":true}`)
	if err := h.Apply(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(uploads.got) != 0 || svc.applied[0].CVURL != "" {
		t.Fatalf("no upload expected")
	}
}

func TestUploadHandler(t *testing.T) {
	uploads := &stubUploads{}
	h := NewUploadHandler(uploads)
	e := newTestEcho()

	c, rec := multipartRequest(t, e, "/api/upload", map[string]string{"process_type": "resize_crop"}, "file", "photo.jpg", []byte{0xff, 0xd8})
	if err := h.Upload(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated || uploads.got[0].ProcessType != ports.ProcessResizeCrop || uploads.got[0].Filename != "photo.jpg" {
		t.Fatalf("unexpected upload: %d %+v", rec.Code, uploads.got)
	}

	c, _ = multipartRequest(t, e, "/api/upload", nil, "", "", nil)
	var v *domain.ValidationError
	if err := h.Upload(c); !errors.As(err, &v) || v.Fields[0].Field != "file" {
		t.Fatalf("expected file validation error, got %v", err)
	}
	if len(uploads.got) != 1 {
		t.Fatalf("missing file must not reach the service")
	}
}
