package verification

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nibret/receipt-verifier/internal/extraction"
)

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	newRecord := func(id string) *Record {
		amount := 500.00
		return &Record{
			ID:        id,
			Provider:  "cbe",
			Reference: "FT25ABC",
			Result: extraction.VerificationResult{
				Success:              true,
				TransactionReference: "FT25ABC",
				TransactionAmount:    &amount,
			},
			DocumentPath: id + "_FT25ABC.pdf",
			ContentType:  "application/pdf",
			CreatedAt:    time.Date(2025, 3, 28, 13, 7, 18, 0, time.UTC),
		}
	}

	Describe("SaveRecord", func() {
		var (
			record *Record
			err    error
		)

		BeforeEach(func() {
			record = newRecord("test-id")
		})

		JustBeforeEach(func() {
			err = db.SaveRecord(record)
		})

		When("saving succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should round-trip the record", func() {
				saved, getErr := db.GetRecord("test-id")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.Reference).To(Equal("FT25ABC"))
				Expect(saved.Result.Success).To(BeTrue())
				Expect(*saved.Result.TransactionAmount).To(Equal(500.00))
			})
		})

		When("saving over an existing record", func() {
			BeforeEach(func() {
				existing := newRecord("test-id")
				existing.Reference = "OLD"
				Expect(db.SaveRecord(existing)).To(Succeed())
			})

			It("should overwrite it", func() {
				saved, getErr := db.GetRecord("test-id")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.Reference).To(Equal("FT25ABC"))
			})
		})
	})

	Describe("GetRecord", func() {
		When("the record does not exist", func() {
			It("should return an error", func() {
				_, err := db.GetRecord("missing")
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("ListRecords", func() {
		When("no records exist", func() {
			It("should return an empty slice", func() {
				records, err := db.ListRecords()
				Expect(err).NotTo(HaveOccurred())
				Expect(records).To(BeEmpty())
			})
		})

		When("records exist", func() {
			BeforeEach(func() {
				Expect(db.SaveRecord(newRecord("a"))).To(Succeed())
				Expect(db.SaveRecord(newRecord("b"))).To(Succeed())
			})

			It("should return all of them", func() {
				records, err := db.ListRecords()
				Expect(err).NotTo(HaveOccurred())
				Expect(records).To(HaveLen(2))
			})
		})
	})

	Describe("DeleteRecord", func() {
		BeforeEach(func() {
			Expect(db.SaveRecord(newRecord("a"))).To(Succeed())
		})

		It("should remove the record", func() {
			Expect(db.DeleteRecord("a")).To(Succeed())
			_, err := db.GetRecord("a")
			Expect(err).To(HaveOccurred())
		})
	})
})
