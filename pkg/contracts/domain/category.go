package domain

// Category is the closed vocabulary of MFS transaction categories.
// Raw headers that do not resolve to one of these through the alias table
// are either mapped to CategoryOthers or dropped; the set never grows at
// runtime.
type Category string

const (
	CategoryCashIn             Category = "Cash-In"
	CategoryCashOut            Category = "Cash-Out"
	CategoryP2P                Category = "Person-to-Person"
	CategoryMerchantPayment    Category = "Merchant Payment"
	CategoryUtilityBillPayment Category = "Utility Bill Payment"
	CategoryGovernmentPayment  Category = "Government Payment"
	CategorySalaryDisbursement Category = "Salary Disbursement"
	CategoryOthers             Category = "Others"
)

// Categories lists every known category in stable display order.
func Categories() []Category {
	return []Category{
		CategoryCashIn,
		CategoryCashOut,
		CategoryP2P,
		CategoryMerchantPayment,
		CategoryUtilityBillPayment,
		CategoryGovernmentPayment,
		CategorySalaryDisbursement,
		CategoryOthers,
	}
}

// IsValid reports whether c is one of the fixed categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryCashIn, CategoryCashOut, CategoryP2P, CategoryMerchantPayment,
		CategoryUtilityBillPayment, CategoryGovernmentPayment,
		CategorySalaryDisbursement, CategoryOthers:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}
