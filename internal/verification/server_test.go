package verification

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/nibret/receipt-verifier/internal/extraction"
)

var _ = Describe("Server", func() {
	var (
		db          *mockDB
		storage     *mockStorage
		fetcher     *mockFetcher
		basicAuth   BasicAuth
		server      *Server
		ghttpServer *ghttp.Server
	)

	BeforeEach(func() {
		db = newMockDB()
		storage = newMockStorage()
		fetcher = &mockFetcher{
			data:        []byte(validReceiptText),
			contentType: "text/plain",
		}
		basicAuth = BasicAuth{}
	})

	JustBeforeEach(func() {
		service := NewServiceWithDeps(
			db,
			extraction.NewEngine(extraction.CBERuleset, nil),
			fetcher,
			storage,
			nil,
			&mockIDGenerator{id: "test-id"},
			&mockTimeSource{now: time.Date(2025, 3, 28, 13, 7, 18, 0, time.UTC)},
		)
		server = NewServerWithMux(service, basicAuth, http.NewServeMux())

		ghttpServer = ghttp.NewServer()
		ghttpServer.AppendHandlers(server.ServeHTTP)
	})

	AfterEach(func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
	})

	decodeRecord := func(resp *http.Response) *Record {
		defer resp.Body.Close()
		var record Record
		Expect(json.NewDecoder(resp.Body).Decode(&record)).To(Succeed())
		return &record
	}

	Describe("POST /api/verify", func() {
		When("the receipt verifies", func() {
			It("should return 201 with the record", func() {
				resp, err := http.Post(ghttpServer.URL()+"/api/verify", "application/json",
					strings.NewReader(`{"reference": "FT25ABC"}`))
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusCreated))

				record := decodeRecord(resp)
				Expect(record.ID).To(Equal("test-id"))
				Expect(record.Result.Success).To(BeTrue())
				Expect(record.Result.TransactionReference).To(Equal("FT25ABC"))
				Expect(db.records).To(HaveKey("test-id"))
			})
		})

		When("the body is not valid JSON", func() {
			It("should return 400", func() {
				resp, err := http.Post(ghttpServer.URL()+"/api/verify", "application/json",
					strings.NewReader("not json"))
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})

		When("the reference is blank", func() {
			It("should return 400 with a JSON error", func() {
				resp, err := http.Post(ghttpServer.URL()+"/api/verify", "application/json",
					strings.NewReader(`{"reference": ""}`))
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

				defer resp.Body.Close()
				var errResp map[string]string
				Expect(json.NewDecoder(resp.Body).Decode(&errResp)).To(Succeed())
				Expect(errResp).To(HaveKey("error"))
			})
		})

		When("persisting the record fails", func() {
			BeforeEach(func() {
				db.saveErr = errors.New("disk full")
			})

			It("should return 500", func() {
				resp, err := http.Post(ghttpServer.URL()+"/api/verify", "application/json",
					strings.NewReader(`{"reference": "FT25ABC"}`))
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
			})
		})
	})

	Describe("POST /api/verify/upload", func() {
		uploadBody := func(filename, contentType string, data []byte) (*bytes.Buffer, string) {
			var b bytes.Buffer
			writer := multipart.NewWriter(&b)
			header := make(textproto.MIMEHeader)
			header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
			if contentType != "" {
				header.Set("Content-Type", contentType)
			}
			part, err := writer.CreatePart(header)
			Expect(err).NotTo(HaveOccurred())
			_, err = part.Write(data)
			Expect(err).NotTo(HaveOccurred())
			Expect(writer.Close()).To(Succeed())
			return &b, writer.FormDataContentType()
		}

		When("the upload verifies", func() {
			It("should return 201 and archive the document", func() {
				body, formType := uploadBody("receipt.txt", "text/plain", []byte(validReceiptText))
				resp, err := http.Post(ghttpServer.URL()+"/api/verify/upload", formType, body)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusCreated))

				record := decodeRecord(resp)
				Expect(record.Result.Success).To(BeTrue())
				Expect(record.Reference).To(Equal("FT25ABC"))
				Expect(storage.files).To(HaveKey("test-id_receipt.txt"))
			})
		})

		When("the part carries no content type", func() {
			It("should infer it from the filename extension", func() {
				body, formType := uploadBody("receipt.txt", "", []byte(validReceiptText))
				resp, err := http.Post(ghttpServer.URL()+"/api/verify/upload", formType, body)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusCreated))
				Expect(db.records["test-id"].ContentType).To(Equal("text/plain"))
			})
		})

		When("the file is empty", func() {
			It("should return 400", func() {
				body, formType := uploadBody("receipt.txt", "text/plain", nil)
				resp, err := http.Post(ghttpServer.URL()+"/api/verify/upload", formType, body)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})

		When("the form has no file part", func() {
			It("should return 400", func() {
				var b bytes.Buffer
				writer := multipart.NewWriter(&b)
				Expect(writer.WriteField("other", "value")).To(Succeed())
				Expect(writer.Close()).To(Succeed())

				resp, err := http.Post(ghttpServer.URL()+"/api/verify/upload", writer.FormDataContentType(), &b)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})
	})

	Describe("GET /api/verifications", func() {
		When("no records exist", func() {
			It("should return an empty array", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/verifications")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				defer resp.Body.Close()
				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(strings.TrimSpace(string(body))).To(Equal("[]"))
			})
		})

		When("records exist", func() {
			BeforeEach(func() {
				db.records["abc"] = &Record{ID: "abc", Reference: "FT1"}
			})

			It("should return them", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/verifications")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				defer resp.Body.Close()
				var records []*Record
				Expect(json.NewDecoder(resp.Body).Decode(&records)).To(Succeed())
				Expect(records).To(HaveLen(1))
				Expect(records[0].Reference).To(Equal("FT1"))
			})
		})
	})

	Describe("GET /api/verifications/{id}", func() {
		BeforeEach(func() {
			db.records["abc"] = &Record{ID: "abc", Reference: "FT1"}
		})

		It("should return the record", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/verifications/abc")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(decodeRecord(resp).Reference).To(Equal("FT1"))
		})

		It("should return 404 for an unknown record", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/verifications/missing")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("GET /api/verifications/{id}/document", func() {
		BeforeEach(func() {
			db.records["abc"] = &Record{
				ID:           "abc",
				DocumentPath: "abc_receipt.txt",
				ContentType:  "text/plain",
			}
			storage.files["abc_receipt.txt"] = []byte("receipt data")
		})

		It("should return the archived document", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/verifications/abc/document")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("text/plain"))

			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(Equal("receipt data"))
		})

		It("should return 404 for an unknown record", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/verifications/missing/document")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("DELETE /api/verifications/{id}", func() {
		BeforeEach(func() {
			db.records["abc"] = &Record{ID: "abc", DocumentPath: "abc_receipt.txt"}
			storage.files["abc_receipt.txt"] = []byte("data")
		})

		It("should return 204 and remove the record", func() {
			req, err := http.NewRequest("DELETE", ghttpServer.URL()+"/api/verifications/abc", nil)
			Expect(err).NotTo(HaveOccurred())
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(db.records).NotTo(HaveKey("abc"))
			Expect(storage.files).NotTo(HaveKey("abc_receipt.txt"))
		})
	})

	Describe("GET /healthz", func() {
		It("should return 200", func() {
			resp, err := http.Get(ghttpServer.URL() + "/healthz")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("ok"))
		})
	})

	Describe("GET /", func() {
		It("should serve the HTML interface", func() {
			resp, err := http.Get(ghttpServer.URL() + "/")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(ContainSubstring("text/html"))

			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("Receipt Verifier"))
		})
	})

	Describe("basic auth", func() {
		BeforeEach(func() {
			basicAuth = BasicAuth{Username: "admin", Password: "secret"}
		})

		It("should reject requests without credentials", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/verifications")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(resp.Header.Get("WWW-Authenticate")).To(ContainSubstring("Basic"))
		})

		It("should reject requests with wrong credentials", func() {
			req, err := http.NewRequest("GET", ghttpServer.URL()+"/api/verifications", nil)
			Expect(err).NotTo(HaveOccurred())
			req.SetBasicAuth("admin", "wrong")
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})

		It("should accept requests with correct credentials", func() {
			req, err := http.NewRequest("GET", ghttpServer.URL()+"/api/verifications", nil)
			Expect(err).NotTo(HaveOccurred())
			req.SetBasicAuth("admin", "secret")
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})

		It("should leave the health check unauthenticated", func() {
			resp, err := http.Get(ghttpServer.URL() + "/healthz")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})
	})
})
