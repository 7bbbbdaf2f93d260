package extraction

import "time"

// VerificationResult is the terminal output of one verification call.
// Error is populated iff Success is false. When Success is false the
// optional fields may still carry whatever was extracted, for diagnostics;
// callers must not treat them as verified data.
type VerificationResult struct {
	Success bool `json:"success"`

	SenderName           string     `json:"senderName,omitempty"`
	SenderAccountNumber  string     `json:"senderAccountNumber,omitempty"`
	TransactionChannel   string     `json:"transactionChannel,omitempty"`
	ServiceType          string     `json:"serviceType,omitempty"`
	Narrative            string     `json:"narrative,omitempty"`
	ReceiverName         string     `json:"receiverName,omitempty"`
	PhoneNo              string     `json:"phoneNo,omitempty"`
	InstitutionName      string     `json:"institutionName,omitempty"`
	TransactionReference string     `json:"transactionReference,omitempty"`
	TransferReference    string     `json:"transferReference,omitempty"`
	TransactionDate      *time.Time `json:"transactionDate,omitempty"`
	TransactionAmount    *float64   `json:"transactionAmount,omitempty"`
	ServiceCharge        *float64   `json:"serviceCharge,omitempty"`
	ExciseTax            *float64   `json:"exciseTax,omitempty"`
	VAT                  *float64   `json:"vat,omitempty"`
	PenaltyFee           *float64   `json:"penaltyFee,omitempty"`
	IncomeTaxFee         *float64   `json:"incomeTaxFee,omitempty"`
	InterestFee          *float64   `json:"interestFee,omitempty"`
	StampDuty            *float64   `json:"stampDuty,omitempty"`
	DiscountAmount       *float64   `json:"discountAmount,omitempty"`
	Total                *float64   `json:"total,omitempty"`

	Error string `json:"error,omitempty"`
}

// assembleResult merges coerced field values with the completeness verdict
// into the final record. Optional fields are copied regardless of the
// verdict so failed verifications still carry diagnostic data.
func assembleResult(values map[string]Value, verdict Verdict) VerificationResult {
	result := VerificationResult{
		Success: verdict.Success,
		Error:   verdict.Error,
	}

	for name, value := range values {
		switch name {
		case "senderName":
			result.SenderName = value.Str
		case "senderAccountNumber":
			result.SenderAccountNumber = value.Str
		case "transactionChannel":
			result.TransactionChannel = value.Str
		case "serviceType":
			result.ServiceType = value.Str
		case "narrative":
			result.Narrative = value.Str
		case "receiverName":
			result.ReceiverName = value.Str
		case "phoneNo":
			result.PhoneNo = value.Str
		case "institutionName":
			result.InstitutionName = value.Str
		case "transactionReference":
			result.TransactionReference = value.Str
		case "transferReference":
			result.TransferReference = value.Str
		case "transactionDate":
			d := value.Date
			result.TransactionDate = &d
		case "transactionAmount":
			result.TransactionAmount = amountPtr(value)
		case "serviceCharge":
			result.ServiceCharge = amountPtr(value)
		case "exciseTax":
			result.ExciseTax = amountPtr(value)
		case "vat":
			result.VAT = amountPtr(value)
		case "penaltyFee":
			result.PenaltyFee = amountPtr(value)
		case "incomeTaxFee":
			result.IncomeTaxFee = amountPtr(value)
		case "interestFee":
			result.InterestFee = amountPtr(value)
		case "stampDuty":
			result.StampDuty = amountPtr(value)
		case "discountAmount":
			result.DiscountAmount = amountPtr(value)
		case "total":
			result.Total = amountPtr(value)
		}
	}

	return result
}

func amountPtr(v Value) *float64 {
	a := v.Amount
	return &a
}
