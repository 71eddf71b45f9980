package model

// Privilege codes carried in the access token's "privileges" claim.
const (
	PrivProductView   = "product:view"
	PrivProductCreate = "product:create"
	PrivProductUpdate = "product:update"
	PrivProductDelete = "product:delete"

	PrivPartyView   = "party:view"
	PrivPartyManage = "party:manage"

	PrivInvoiceView   = "invoice:view"
	PrivInvoiceCreate = "invoice:create"
	PrivInvoiceUpdate = "invoice:update"
	PrivInvoiceDelete = "invoice:delete"

	PrivPurchaseView   = "purchase:view"
	PrivPurchaseCreate = "purchase:create"
	PrivPurchaseUpdate = "purchase:update"
	PrivPurchaseDelete = "purchase:delete"

	PrivInventoryView   = "inventory:view"
	PrivInventoryManage = "inventory:manage"

	PrivReportView = "report:view"
)

// AllPrivileges lists every code; useful for issuing admin tokens in other systems and tests.
var AllPrivileges = []string{
	PrivProductView, PrivProductCreate, PrivProductUpdate, PrivProductDelete,
	PrivPartyView, PrivPartyManage,
	PrivInvoiceView, PrivInvoiceCreate, PrivInvoiceUpdate, PrivInvoiceDelete,
	PrivPurchaseView, PrivPurchaseCreate, PrivPurchaseUpdate, PrivPurchaseDelete,
	PrivInventoryView, PrivInventoryManage,
	PrivReportView,
}
