package entities

// ReportFilter - фильтр отчёта и выгрузки. Пустое поле не фильтрует.
type ReportFilter struct {
	Status RequestStatus
	Branch string
}
