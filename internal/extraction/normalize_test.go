package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NormalizeText", func() {
	var (
		input  string
		output string
	)

	JustBeforeEach(func() {
		output = NormalizeText(input)
	})

	When("the input contains runs of mixed whitespace", func() {
		BeforeEach(func() {
			input = "Payer:\t\tJOHN  DOE\n\nAccount:   1000123"
		})

		It("should collapse every run into a single space", func() {
			Expect(output).To(Equal("Payer: JOHN DOE Account: 1000123"))
		})

		It("should contain no run of two or more whitespace characters", func() {
			Expect(output).NotTo(MatchRegexp(`\s\s`))
		})
	})

	When("the input has leading and trailing whitespace", func() {
		BeforeEach(func() {
			input = "  \n Transaction Reference: ABC123 \t "
		})

		It("should trim both ends", func() {
			Expect(output).To(Equal("Transaction Reference: ABC123"))
		})
	})

	When("the input is empty", func() {
		BeforeEach(func() {
			input = ""
		})

		It("should return an empty string", func() {
			Expect(output).To(Equal(""))
		})
	})

	When("the input is only whitespace", func() {
		BeforeEach(func() {
			input = " \n\t "
		})

		It("should return an empty string", func() {
			Expect(output).To(Equal(""))
		})
	})

	When("normalizing an already normalized string", func() {
		BeforeEach(func() {
			input = NormalizeText("Receiver:\nABEBE   KEBEDE")
		})

		It("should be idempotent", func() {
			Expect(output).To(Equal(input))
		})
	})

	When("the input mixes case and punctuation", func() {
		BeforeEach(func() {
			input = "Reference No. (VAT Invoice No):  FT25ABC"
		})

		It("should preserve case and punctuation", func() {
			Expect(output).To(Equal("Reference No. (VAT Invoice No): FT25ABC"))
		})
	})
})
