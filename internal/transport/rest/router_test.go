package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/salary-advance/internal/transport/rest"
	"github.com/frahmantamala/salary-advance/internal/user"
)

const openAPIPath = "../../../api/openapi.yml"

type staffStub struct{}

func (staffStub) StaffContacts(context.Context) ([]*user.User, error) {
	return []*user.User{{ID: "u-1", Name: "Aissatou", Role: "rh", IsActive: true}}, nil
}

var _ = Describe("RegisterAllRoutes", func() {
	var (
		router *chi.Mux
		lg     *slog.Logger
	)

	BeforeEach(func() {
		router = chi.NewRouter()
		lg = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	})

	do := func(method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	It("serves the validated OpenAPI document and the swagger UI", func() {
		Expect(rest.RegisterAllRoutes(router, rest.Handlers{}, rest.Options{OpenAPIPath: openAPIPath}, lg)).To(Succeed())

		rec := do(http.MethodGet, "/openapi.yml")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("/payments/cashout"))

		Expect(do(http.MethodGet, "/swagger/index.html").Code).To(Equal(http.StatusOK))
	})

	It("refuses to start with an invalid OpenAPI document", func() {
		broken := filepath.Join(GinkgoT().TempDir(), "openapi.yml")
		Expect(os.WriteFile(broken, []byte("openapi: 3.0.3\ninfo: {}\npaths: {}\n"), 0o600)).To(Succeed())

		Expect(rest.RegisterAllRoutes(router, rest.Handlers{}, rest.Options{OpenAPIPath: broken}, lg)).NotTo(Succeed())
	})

	It("mounts handlers under /api/v1 and skips missing ones", func() {
		handlers := rest.Handlers{
			Health: rest.NewHealthHandler(nil),
			User:   user.NewHandler(staffStub{}),
		}
		Expect(rest.RegisterAllRoutes(router, handlers, rest.Options{}, lg)).To(Succeed())

		Expect(do(http.MethodGet, "/api/v1/ping").Code).To(Equal(http.StatusOK))

		rec := do(http.MethodGet, "/api/v1/staff/contacts")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var body map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body["success"]).To(BeTrue())
		Expect(body["count"]).To(BeEquivalentTo(1))

		Expect(do(http.MethodPost, "/api/v1/payments/cashout").Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodGet, "/openapi.yml").Code).To(Equal(http.StatusNotFound))
	})

	It("echoes the trace id header", func() {
		Expect(rest.RegisterAllRoutes(router, rest.Handlers{Health: rest.NewHealthHandler(nil)}, rest.Options{}, lg)).To(Succeed())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
		req.Header.Set("X-Trace-ID", "cb-77")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		Expect(rec.Header().Get("X-Trace-ID")).To(Equal("cb-77"))
	})
})

var _ = Describe("HealthHandler", func() {
	var router *chi.Mux

	register := func(h *rest.HealthHandler) {
		router = chi.NewRouter()
		lg := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
		Expect(rest.RegisterAllRoutes(router, rest.Handlers{Health: h}, rest.Options{}, lg)).To(Succeed())
	}

	health := func() (*httptest.ResponseRecorder, rest.HealthResponse) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
		var resp rest.HealthResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		return rec, resp
	}

	It("is healthy when every component answers", func() {
		register(rest.NewHealthHandler(nil).WithCheck("mongo", func(context.Context) error { return nil }))

		rec, resp := health()

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(resp.Status).To(Equal(rest.HealthHealthy))
		Expect(resp.Components).To(HaveKey("mongo"))
	})

	It("reports 503 and the failing component", func() {
		register(rest.NewHealthHandler(nil).
			WithCheck("mongo", func(context.Context) error { return nil }).
			WithCheck("rabbitmq", func(context.Context) error { return errors.New("connection closed") }))

		rec, resp := health()

		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
		Expect(resp.Status).To(Equal(rest.HealthUnhealthy))
		Expect(resp.Components["rabbitmq"].Message).To(Equal("connection closed"))
		Expect(resp.Components["mongo"].Status).To(Equal(rest.HealthHealthy))
	})
})
