// pkg/constants/constants.go
package constants

//============== CACHE KEYS ==============

// Префиксы для ключей в Redis/кеше.
const (
	// Ключ, указывающий, что аккаунт заблокирован из-за неудачных попыток входа.
	// Формат: lockout:<userID> -> "locked"
	CacheKeyLockout = "lockout:%d"

	// Ключ для подсчета неудачных попыток входа.
	// Формат: login_attempts:<userID> -> count
	CacheKeyLoginAttempts = "login_attempts:%d"

	// Ключ, по которому планировщик не шлёт повторное напоминание по заявке.
	// Формат: reminder:request:<requestID> -> "sent"
	CacheKeyRequestReminder = "reminder:request:%d"
)

//============== NOTIFICATION MESSAGES ==============

// Тексты уведомлений. Хранятся в БД как есть и показываются пользователям.
const (
	MsgRequestCreated         = "طلب صيانة جديد #%d تم إنشاؤه"
	MsgTechnicianAssigned     = "تم تعيينك لطلب صيانة رقم #%d"
	MsgRequestClosed          = "تم إغلاق طلب الصيانة #%d"
	MsgSparePartRequested     = "طلب قطعة غيار للطلب #%d: %s"
	MsgSparePartsUnavailable  = "الأصناف غير المتوفرة للطلب #%d: %s"
	MsgPurchaseOrderCreated   = "طلب شراء جديد #%d للأصناف: %s"
	MsgPurchaseOrderApproved  = "تم الموافقة على طلب الشراء #%d"
	MsgPurchaseOrderPurchased = "تم شراء الأصناف لطلب الشراء #%d"
	MsgPurchaseOrderRejected  = "تم رفض طلب الشراء #%d"
	MsgRequestReminder        = "تذكير: طلب الصيانة #%d بانتظار الإجراء"
	PartsSeparator            = ", "
)

//============== REPORTS ==============

const (
	ReportFileName    = "maintenance_report.xlsx"
	ReportSheetName   = "Report"
	ReportsFilePrefix = "reports"
	XLSXContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ReportHeaders - заголовки столбцов выгрузки, порядок фиксирован.
var ReportHeaders = []string{
	"رقم الطلب",
	"التاريخ",
	"الطالب",
	"الهاتف",
	"الفرع",
	"نوع الصيانة",
	"المعدة",
	"العطل",
	"الحالة",
}
