package bot

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mkravets/receipt-stats-bot/internal/session"
)

var _ = Describe("Server", func() {
	var (
		server   *Server
		auth     BasicAuth
		recorder *httptest.ResponseRecorder
		request  *http.Request
	)

	BeforeEach(func() {
		auth = BasicAuth{}
		recorder = httptest.NewRecorder()
	})

	JustBeforeEach(func() {
		dispatcher := NewDispatcher(&mockIngestor{}, &mockStatistics{}, session.NewStore())
		server = NewServer(dispatcher, auth)
		server.ServeHTTP(recorder, request)
	})

	postMessage := func(body string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/messages", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	Describe("POST /api/messages", func() {
		When("the message is a command", func() {
			BeforeEach(func() {
				request = postMessage(`{"chat_id": 42, "text": "/start"}`)
			})

			It("returns 200", func() {
				Expect(recorder.Code).To(Equal(http.StatusOK))
			})

			It("returns the dispatcher's reply", func() {
				var resp struct {
					Reply string `json:"reply"`
				}
				Expect(json.Unmarshal(recorder.Body.Bytes(), &resp)).To(Succeed())
				Expect(resp.Reply).To(ContainSubstring("/receipt_upload"))
			})
		})

		When("the body is not JSON", func() {
			BeforeEach(func() {
				request = postMessage(`nope`)
			})

			It("returns 400", func() {
				Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			})
		})

		When("the text is empty", func() {
			BeforeEach(func() {
				request = postMessage(`{"chat_id": 42, "text": ""}`)
			})

			It("returns 400", func() {
				Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			})
		})

		When("basic auth is configured", func() {
			BeforeEach(func() {
				auth = BasicAuth{Username: "bot", Password: "secret"}
			})

			When("no credentials are sent", func() {
				BeforeEach(func() {
					request = postMessage(`{"chat_id": 42, "text": "/start"}`)
				})

				It("returns 401", func() {
					Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
				})
			})

			When("correct credentials are sent", func() {
				BeforeEach(func() {
					request = postMessage(`{"chat_id": 42, "text": "/start"}`)
					request.SetBasicAuth("bot", "secret")
				})

				It("returns 200", func() {
					Expect(recorder.Code).To(Equal(http.StatusOK))
				})
			})
		})
	})

	Describe("GET /healthz", func() {
		BeforeEach(func() {
			request = httptest.NewRequest(http.MethodGet, "/healthz", nil)
		})

		It("returns 200 without auth", func() {
			Expect(recorder.Code).To(Equal(http.StatusOK))
		})
	})
})
