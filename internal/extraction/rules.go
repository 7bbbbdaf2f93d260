package extraction

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind declares how a matched raw value is coerced.
type Kind int

const (
	// KindString is descriptive text (names, narratives); coercion
	// title-cases it.
	KindString Kind = iota
	// KindIdentifier is an opaque token (references, account and phone
	// numbers); coercion keeps it verbatim.
	KindIdentifier
	KindAmount
	KindDate
)

// FieldRule locates and parses one named value from receipt text.
// Label is a regex fragment matching the field's label; Value is applied to
// the text between the label and the next recognized label (first capture
// group wins, whole match otherwise). Required fields fail verification
// when absent.
type FieldRule struct {
	Name     string
	Label    string
	Value    string
	Required bool
	Kind     Kind
}

// Ruleset is the static, per-provider extraction configuration: an ordered
// list of field rules plus the date layouts the provider is known to use.
// Build it once at startup; it is never mutated and safe for concurrent use.
type Ruleset struct {
	Provider    string
	Rules       []FieldRule
	DateFormats []string

	labelRE    []*regexp.Regexp
	valueRE    []*regexp.Regexp
	boundaryRE *regexp.Regexp
}

// NewRuleset compiles the rule patterns. Labels match case-insensitively,
// only as whole tokens (a fragment like "vat" inside a reference such as
// "FT25VAT99" is not a label), and tolerate an optional colon and loose
// spacing after the label text. The boundary set used to terminate a
// captured value span is the union of every rule's label pattern, with the
// same whole-token anchoring.
func NewRuleset(provider string, rules []FieldRule, dateFormats []string) (*Ruleset, error) {
	rs := &Ruleset{
		Provider:    provider,
		Rules:       rules,
		DateFormats: dateFormats,
	}

	labels := make([]string, 0, len(rules))
	for _, rule := range rules {
		// RE2 has no lookahead, so the trailing edge is anchored by
		// requiring the colon/whitespace separator (or end of text)
		// instead of \b; labels may end in non-word characters like ")".
		labelRE, err := regexp.Compile(`(?i)\b(?:` + rule.Label + `)(?:\s*:\s*|\s+|$)`)
		if err != nil {
			return nil, fmt.Errorf("compiling label pattern for %s: %w", rule.Name, err)
		}
		valueRE, err := regexp.Compile(rule.Value)
		if err != nil {
			return nil, fmt.Errorf("compiling value pattern for %s: %w", rule.Name, err)
		}
		rs.labelRE = append(rs.labelRE, labelRE)
		rs.valueRE = append(rs.valueRE, valueRE)
		labels = append(labels, `(?:`+rule.Label+`)`)
	}

	boundaryRE, err := regexp.Compile(`(?i)\b(?:` + strings.Join(labels, `|`) + `)(?:[^0-9A-Za-z_]|$)`)
	if err != nil {
		return nil, fmt.Errorf("compiling boundary pattern: %w", err)
	}
	rs.boundaryRE = boundaryRE

	return rs, nil
}

// MustRuleset is NewRuleset for package-level ruleset definitions.
func MustRuleset(provider string, rules []FieldRule, dateFormats []string) *Ruleset {
	rs, err := NewRuleset(provider, rules, dateFormats)
	if err != nil {
		panic(err)
	}
	return rs
}

// Value patterns shared across rules. Amount values must start the captured
// span (an optional currency marker aside) so that a label matched inside
// unrelated boilerplate fails cleanly instead of grabbing a distant number.
const (
	amountValue    = `^\s*(?:ETB\s*)?([0-9][0-9,]*(?:\.[0-9]+)?)`
	referenceValue = `^\s*(?:\([^)]*\)\s*)?([A-Za-z0-9*][A-Za-z0-9*/_-]*)`
	dateValue      = `(\d{1,2}/\d{1,2}/\d{4}(?:,?\s*\d{1,2}:\d{2}(?::\d{2})?\s*(?:AM|PM)?)?|\d{4}-\d{2}-\d{2}(?:[ T]\d{2}:\d{2}(?::\d{2})?)?)`
	textValue      = `(\S.*)`
	phoneValue     = `^\s*(\+?[0-9][0-9 *-]{5,})`
)

// CBERuleset extracts fields from Commercial Bank of Ethiopia transfer
// receipts. The transaction reference and the transaction amount are the
// only fields whose absence fails verification; everything else is
// advisory.
var CBERuleset = MustRuleset("cbe",
	[]FieldRule{
		{Name: "senderName", Label: `payer(?:\s+name)?`, Value: textValue, Kind: KindString},
		{Name: "senderAccountNumber", Label: `account(?:\s+number)?`, Value: referenceValue, Kind: KindIdentifier},
		{Name: "receiverName", Label: `receiver(?:\s+name)?`, Value: textValue, Kind: KindString},
		{Name: "phoneNo", Label: `phone\s*(?:no|number)\.?`, Value: phoneValue, Kind: KindIdentifier},
		{Name: "institutionName", Label: `institution(?:\s+name)?`, Value: textValue, Kind: KindString},
		{Name: "transactionChannel", Label: `transaction\s+channel`, Value: textValue, Kind: KindString},
		{Name: "serviceType", Label: `(?:service\s+type|type\s+of\s+service)`, Value: textValue, Kind: KindString},
		{Name: "narrative", Label: `(?:narrative|reason)`, Value: textValue, Kind: KindString},
		{Name: "transactionReference", Label: `(?:transaction\s+reference|reference\s+no\.?(?:\s*\(vat\s+invoice\s+no\))?)`, Value: referenceValue, Required: true, Kind: KindIdentifier},
		{Name: "transferReference", Label: `transfer\s+reference`, Value: referenceValue, Kind: KindIdentifier},
		{Name: "transactionDate", Label: `(?:payment\s+date(?:\s*&\s*time)?|transaction\s+date)`, Value: dateValue, Kind: KindDate},
		{Name: "transactionAmount", Label: `(?:transaction\s+amount|transferred\s+amount)`, Value: amountValue, Required: true, Kind: KindAmount},
		{Name: "serviceCharge", Label: `service\s+charge`, Value: amountValue, Kind: KindAmount},
		{Name: "exciseTax", Label: `excise\s+tax`, Value: amountValue, Kind: KindAmount},
		{Name: "vat", Label: `(?:15%\s+)?vat`, Value: amountValue, Kind: KindAmount},
		{Name: "penaltyFee", Label: `penalty(?:\s+fee)?`, Value: amountValue, Kind: KindAmount},
		{Name: "incomeTaxFee", Label: `income\s+tax(?:\s+fee)?`, Value: amountValue, Kind: KindAmount},
		{Name: "interestFee", Label: `interest(?:\s+fee)?`, Value: amountValue, Kind: KindAmount},
		{Name: "stampDuty", Label: `stamp\s+duty`, Value: amountValue, Kind: KindAmount},
		{Name: "discountAmount", Label: `discount(?:\s+amount)?`, Value: amountValue, Kind: KindAmount},
		{Name: "total", Label: `total(?:\s+amount)?(?:\s+(?:paid|debited))?`, Value: amountValue, Kind: KindAmount},
	},
	[]string{
		"1/2/2006, 3:04:05 PM",
		"1/2/2006, 3:04 PM",
		"1/2/2006 3:04:05 PM",
		"1/2/2006",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	},
)

// Rulesets maps provider identifiers to their shipped rulesets.
var Rulesets = map[string]*Ruleset{
	CBERuleset.Provider: CBERuleset,
}
