package normalize

import (
	"strings"
	"unicode"

	"mfspulse/pkg/contracts/domain"
)

// AliasTableVersion identifies the header alias mapping in provenance
// metadata. Bump whenever an entry is added so exported artifacts can be
// traced back to the mapping that produced them.
const AliasTableVersion = "2024-06"

// RoleKind classifies what a resolved header means for reshaping.
type RoleKind int

const (
	// RoleDate marks the period column ("Month", "Period").
	RoleDate RoleKind = iota
	// RoleCategoryColumn marks a long-format category column
	// ("Particulars", "Items").
	RoleCategoryColumn
	// RoleAmount marks a long-format amount column ("Amount (in Crore BDT)").
	RoleAmount
	// RoleCategory marks a wide-format column holding one category's values.
	RoleCategory
)

// Role is the resolved meaning of a raw header cell.
type Role struct {
	Kind     RoleKind
	Category domain.Category // set when Kind == RoleCategory
}

// aliasTable maps canonicalized header text to roles. This is the explicit,
// versioned mapping the normalizer consults; it is never inferred at
// runtime. Unmatched headers are dropped with a warning, not guessed.
// Lookups go through canonicalKey, which lowercases, strips parenthesized
// unit/code suffixes ("(in Crore BDT)", "(P2B)") and removes punctuation, so
// one entry covers the spelling drift seen across releases.
var aliasTable = map[string]Role{
	// period column
	"month":  {Kind: RoleDate},
	"period": {Kind: RoleDate},
	"year":   {Kind: RoleDate},

	// long-format role columns
	"particulars":     {Kind: RoleCategoryColumn},
	"items":           {Kind: RoleCategoryColumn},
	"category":        {Kind: RoleCategoryColumn},
	"transactiontype": {Kind: RoleCategoryColumn},
	"amount":          {Kind: RoleAmount},
	"amountcrorebdt":  {Kind: RoleAmount},
	"value":           {Kind: RoleAmount},
	"valuecrorebdt":   {Kind: RoleAmount},

	// wide-format category columns
	"cashin":              {Kind: RoleCategory, Category: domain.CategoryCashIn},
	"cashout":             {Kind: RoleCategory, Category: domain.CategoryCashOut},
	"p2p":                 {Kind: RoleCategory, Category: domain.CategoryP2P},
	"persontoperson":      {Kind: RoleCategory, Category: domain.CategoryP2P},
	"merchantpayment":     {Kind: RoleCategory, Category: domain.CategoryMerchantPayment},
	"utilitybillpayment":  {Kind: RoleCategory, Category: domain.CategoryUtilityBillPayment},
	"utilitybill":         {Kind: RoleCategory, Category: domain.CategoryUtilityBillPayment},
	"governmentpayment":   {Kind: RoleCategory, Category: domain.CategoryGovernmentPayment},
	"salarydisbursement":  {Kind: RoleCategory, Category: domain.CategorySalaryDisbursement},
	"salary":              {Kind: RoleCategory, Category: domain.CategorySalaryDisbursement},
	"others":              {Kind: RoleCategory, Category: domain.CategoryOthers},
	"otherpayments":       {Kind: RoleCategory, Category: domain.CategoryOthers},
	"miscellaneous":       {Kind: RoleCategory, Category: domain.CategoryOthers},
}

// ResolveHeader maps a raw header cell to its role. ok is false for blank,
// placeholder ("Unnamed: 3") and unknown headers.
func ResolveHeader(raw string) (Role, bool) {
	key := canonicalKey(raw)
	if key == "" || strings.HasPrefix(key, "unnamed") {
		return Role{}, false
	}
	role, ok := aliasTable[key]
	return role, ok
}

// ResolveCategory maps a raw long-format category cell to the closed
// category set.
func ResolveCategory(raw string) (domain.Category, bool) {
	role, ok := aliasTable[canonicalKey(raw)]
	if !ok || role.Kind != RoleCategory {
		return "", false
	}
	return role.Category, true
}

// canonicalKey lowercases, removes parenthesized groups and strips
// everything that is not a letter or digit.
func canonicalKey(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))

	// Drop parenthesized suffixes: units ("(in crore bdt)") and flow codes
	// ("(p2b)") both restate what the bare label already says.
	for {
		open := strings.Index(s, "(")
		if open < 0 {
			break
		}
		close := strings.Index(s[open:], ")")
		if close < 0 {
			s = s[:open]
			break
		}
		s = s[:open] + s[open+close+1:]
	}

	var sb strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
