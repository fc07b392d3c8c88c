package models

// PaymentType is the tender used at checkout. CASH settles immediately;
// everything else starts unpaid and is settled later via MarkSaleAsPaid.
type PaymentType string

const (
	PaymentTypeCash         PaymentType = "CASH"
	PaymentTypeQris         PaymentType = "QRIS"
	PaymentTypeBankTransfer PaymentType = "BANK_TRANSFER"
	PaymentTypeEWallet      PaymentType = "E_WALLET"
	PaymentTypeDebt         PaymentType = "DEBT"
)

func (p PaymentType) IsValid() bool {
	switch p {
	case PaymentTypeCash, PaymentTypeQris, PaymentTypeBankTransfer, PaymentTypeEWallet, PaymentTypeDebt:
		return true
	}
	return false
}

// settled at checkout time only for cash tenders
func (p PaymentType) SettlesImmediately() bool {
	return p == PaymentTypeCash
}

// ActivityType is the closed set of audit event kinds.
type ActivityType string

const (
	ActivitySaleCreated    ActivityType = "SALE_CREATED"
	ActivitySaleUpdated    ActivityType = "SALE_UPDATED"
	ActivityProductAdded   ActivityType = "PRODUCT_ADDED"
	ActivityProductUpdated ActivityType = "PRODUCT_UPDATED"
	ActivityCustomerAdded  ActivityType = "CUSTOMER_ADDED"
	ActivityWarungUpdated  ActivityType = "WARUNG_UPDATED"
)

func (a ActivityType) IsValid() bool {
	switch a {
	case ActivitySaleCreated, ActivitySaleUpdated, ActivityProductAdded,
		ActivityProductUpdated, ActivityCustomerAdded, ActivityWarungUpdated:
		return true
	}
	return false
}
