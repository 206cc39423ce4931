package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/salary-advance/internal"
	"github.com/frahmantamala/salary-advance/internal/transport/middleware"
	"github.com/frahmantamala/salary-advance/pkg/logger"
)

var _ = Describe("LoggingMiddleware", func() {
	var (
		buf *bytes.Buffer
		lg  *slog.Logger
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		lg = slog.New(slog.NewJSONHandler(buf, nil))
	})

	serve := func(h http.Handler, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/cashout", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer abc")
		rec := httptest.NewRecorder()
		middleware.LoggingMiddleware(lg)(h).ServeHTTP(rec, req)
		return rec
	}

	It("filters secrets and masks phone numbers in logged bodies", func() {
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"success":true}`))
		})

		rec := serve(h, `{"phone":"622123456","api_key":"k-1","amount":935000}`)

		Expect(rec.Code).To(Equal(http.StatusCreated))
		out := buf.String()
		Expect(out).NotTo(ContainSubstring("622123456"))
		Expect(out).To(ContainSubstring("******456"))
		Expect(out).NotTo(ContainSubstring("k-1"))
		Expect(out).NotTo(ContainSubstring("Bearer abc"))
		Expect(out).To(ContainSubstring(`"status_code":201`))
	})

	It("leaves the request body readable for the handler", func() {
		var seen string
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b := new(bytes.Buffer)
			_, _ = b.ReadFrom(r.Body)
			seen = b.String()
		})

		serve(h, `{"advance_id":"a-1"}`)

		Expect(seen).To(Equal(`{"advance_id":"a-1"}`))
	})

	It("logs server errors at error level", func() {
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		serve(h, "")

		Expect(buf.String()).To(ContainSubstring(`"level":"ERROR"`))
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	It("answers 500 with the error envelope and hides the panic value", func() {
		lg := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
		h := middleware.RecoveryMiddleware(lg)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("db password leaked")
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		var body internal.Response
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Success).To(BeFalse())
		Expect(body.Code).To(Equal(internal.ErrCodeInternal))
		Expect(rec.Body.String()).NotTo(ContainSubstring("password"))
	})
})

var _ = Describe("RequestID", func() {
	It("reuses an incoming trace id", func() {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.TraceHeader, "trace-42")

		middleware.RequestID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rec, req)

		Expect(rec.Header().Get(middleware.TraceHeader)).To(Equal("trace-42"))
	})

	It("generates one when missing", func() {
		rec := httptest.NewRecorder()
		middleware.RequestID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(rec.Header().Get(middleware.TraceHeader)).NotTo(BeEmpty())
	})
})

var _ = Describe("OperatorContext", func() {
	It("stores the operator id on the context", func() {
		var operator string
		h := middleware.OperatorContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			operator = internal.OperatorIDFromContext(r.Context())
			Expect(logger.From(r.Context())).NotTo(BeNil())
		}))

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set(middleware.OperatorHeader, " rh-07 ")
		h.ServeHTTP(httptest.NewRecorder(), req)

		Expect(operator).To(Equal("rh-07"))
	})

	It("passes through without the header", func() {
		operator := "unset"
		h := middleware.OperatorContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			operator = internal.OperatorIDFromContext(r.Context())
		}))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(operator).To(BeEmpty())
	})
})

var _ = Describe("CORS", func() {
	It("answers preflight requests for configured origins", func() {
		h := middleware.CORS("https://backoffice.example.com")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

		req := httptest.NewRequest(http.MethodOptions, "/api/v1/advances", nil)
		req.Header.Set("Origin", "https://backoffice.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://backoffice.example.com"))
	})
})
