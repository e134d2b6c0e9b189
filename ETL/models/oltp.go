package models

import (
	"time"
)

// RawCustomer представляет клиента в сыром выгрузочном файле
type RawCustomer struct {
	ID             string     `csv:"ID_Cliente" validate:"required"`
	CompanyName    string     `csv:"Nombre_Empresa"`
	ContactName    string     `csv:"Contacto_Principal"`
	Email          string     `csv:"Email"`
	City           string     `csv:"Ciudad"`
	Industry       Industry   `csv:"Industria" validate:"required"`
	LeadSource     LeadSource `csv:"Fuente_Lead" validate:"required"`
	RegisteredDate string     `csv:"Fecha_Registro"`
}

// RawOpportunity представляет сделку (оппортюнити) в сыром выгрузочном файле.
// Даты остаются текстом: их разбор относится к фазе Transform.
type RawOpportunity struct {
	ID          string  `csv:"ID_Oportunidad" validate:"required"`
	CustomerID  string  `csv:"ID_Cliente" validate:"required"`
	Salesperson string  `csv:"Vendedor" validate:"required"`
	Product     string  `csv:"Producto" validate:"required"`
	Amount      float64 `csv:"Monto" validate:"gte=0"`
	Stage       Stage   `csv:"Etapa" validate:"required"`
	Probability int     `csv:"Probabilidad" validate:"gte=0,lte=100"`
	CreatedDate string  `csv:"Fecha_Creacion_Oportunidad"`
	ClosedDate  string  `csv:"Fecha_Cierre_Real"`
}

// CustomerHeaders заголовки файла клиентов в порядке выгрузки
var CustomerHeaders = []string{
	"ID_Cliente", "Nombre_Empresa", "Contacto_Principal", "Email",
	"Ciudad", "Industria", "Fuente_Lead", "Fecha_Registro",
}

// OpportunityHeaders заголовки файла сделок в порядке выгрузки
var OpportunityHeaders = []string{
	"ID_Oportunidad", "ID_Cliente", "Vendedor", "Producto", "Monto",
	"Etapa", "Probabilidad", "Fecha_Creacion_Oportunidad", "Fecha_Cierre_Real",
}

// ExtractedData содержит данные, извлечённые из исходных файлов.
// Набор, который не удалось извлечь, равен nil, а причина сохраняется в *Err.
type ExtractedData struct {
	Customers     []RawCustomer
	Opportunities []RawOpportunity

	CustomersErr     error
	OpportunitiesErr error

	RejectedCustomers     int
	RejectedOpportunities int

	ExtractedAt time.Time
}

// HasCustomers сообщает, был ли набор клиентов успешно извлечён
func (d *ExtractedData) HasCustomers() bool {
	return d.CustomersErr == nil && d.Customers != nil
}

// HasOpportunities сообщает, был ли набор сделок успешно извлечён
func (d *ExtractedData) HasOpportunities() bool {
	return d.OpportunitiesErr == nil && d.Opportunities != nil
}
