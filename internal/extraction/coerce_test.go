package extraction

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("coerceAmount", func() {
	var (
		raw    string
		amount float64
		ok     bool
	)

	JustBeforeEach(func() {
		amount, ok = coerceAmount(raw)
	})

	When("the value uses grouping separators", func() {
		BeforeEach(func() {
			raw = "1,234.50"
		})

		It("should parse the decimal", func() {
			Expect(ok).To(BeTrue())
			Expect(amount).To(Equal(1234.50))
		})
	})

	When("the value is not a number", func() {
		BeforeEach(func() {
			raw = "abc"
		})

		It("should fail coercion", func() {
			Expect(ok).To(BeFalse())
		})
	})

	When("the value is negative", func() {
		BeforeEach(func() {
			raw = "-5"
		})

		It("should fail coercion", func() {
			Expect(ok).To(BeFalse())
		})
	})

	When("the value is zero", func() {
		BeforeEach(func() {
			raw = "0.00"
		})

		It("should parse successfully", func() {
			Expect(ok).To(BeTrue())
			Expect(amount).To(Equal(0.0))
		})
	})

	When("the value is empty", func() {
		BeforeEach(func() {
			raw = ""
		})

		It("should fail coercion", func() {
			Expect(ok).To(BeFalse())
		})
	})
})

var _ = Describe("coerceDate", func() {
	var (
		raw  string
		date time.Time
		ok   bool
	)

	JustBeforeEach(func() {
		date, ok = coerceDate(raw, CBERuleset.DateFormats)
	})

	When("the value is a CBE payment timestamp", func() {
		BeforeEach(func() {
			raw = "3/28/2025, 1:07:18 PM"
		})

		It("should parse the full timestamp", func() {
			Expect(ok).To(BeTrue())
			Expect(date).To(Equal(time.Date(2025, 3, 28, 13, 7, 18, 0, time.UTC)))
		})
	})

	When("the value is a bare date", func() {
		BeforeEach(func() {
			raw = "3/28/2025"
		})

		It("should parse at midnight", func() {
			Expect(ok).To(BeTrue())
			Expect(date).To(Equal(time.Date(2025, 3, 28, 0, 0, 0, 0, time.UTC)))
		})
	})

	When("the value is not a recognized format", func() {
		BeforeEach(func() {
			raw = "28th of March"
		})

		It("should fail instead of defaulting to now", func() {
			Expect(ok).To(BeFalse())
			Expect(date.IsZero()).To(BeTrue())
		})
	})
})

var _ = Describe("titleCase", func() {
	It("should title-case shouty names", func() {
		Expect(titleCase("JOHN A DOE")).To(Equal("John A Doe"))
	})

	It("should leave the empty string alone", func() {
		Expect(titleCase("")).To(Equal(""))
	})

	It("should preserve token boundaries", func() {
		Expect(titleCase("ABEBE  KEBEDE")).To(Equal("Abebe  Kebede"))
	})

	It("should skip leading punctuation when choosing the first letter", func() {
		Expect(titleCase("(BRANCH) OFFICE")).To(Equal("(Branch) Office"))
	})
})
