package models

import (
	"time"
)

// Таблицы хранилища
const (
	CustomerDimensionTable = "dim_clientes"
	OpportunityFactTable   = "fact_ventas"
)

// Customer представляет клиента после нормализации типов
type Customer struct {
	ID               string     `gorm:"column:ID_Cliente;primaryKey;size:64"`
	CompanyName      string     `gorm:"column:Nombre_Empresa"`
	ContactName      string     `gorm:"column:Contacto_Principal"`
	Email            string     `gorm:"column:Email"`
	City             string     `gorm:"column:Ciudad"`
	Industry         Industry   `gorm:"column:Industria"`
	LeadSource       LeadSource `gorm:"column:Fuente_Lead"`
	RegistrationDate *time.Time `gorm:"column:Fecha_Registro"`
}

// Opportunity представляет сделку после нормализации дат.
// Отсутствующая дата закрытия хранится как nil, а не как нулевое время.
type Opportunity struct {
	ID           string     `gorm:"column:ID_Oportunidad;primaryKey;size:64"`
	CustomerID   string     `gorm:"column:ID_Cliente;size:64"`
	Salesperson  string     `gorm:"column:Vendedor"`
	Product      string     `gorm:"column:Producto"`
	Amount       float64    `gorm:"column:Monto"`
	Stage        Stage      `gorm:"column:Etapa"`
	Probability  int        `gorm:"column:Probabilidad"`
	CreationDate *time.Time `gorm:"column:Fecha_Creacion_Oportunidad"`
	ClosureDate  *time.Time `gorm:"column:Fecha_Cierre_Real"`
}

// HasClosureDate сообщает, есть ли у сделки дата закрытия. Стадию не
// учитывает, для неё есть Stage.IsClosed.
func (o Opportunity) HasClosureDate() bool {
	return o.ClosureDate != nil
}

// CustomerDimension строка измерения клиентов (dim_clientes)
type CustomerDimension struct {
	Customer
	AccountAgeDays *int   `gorm:"column:Antiguedad_Dias"`
	NormalizedCity string `gorm:"column:Ciudad_Normalizada"`
}

func (CustomerDimension) TableName() string {
	return CustomerDimensionTable
}

// OpportunityFact строка таблицы фактов продаж (fact_ventas)
type OpportunityFact struct {
	Opportunity
	SalesCycleDays *int     `gorm:"column:Dias_Ciclo_Venta"`
	DealSize       DealSize `gorm:"column:Categoria_Deal"`
	CreationMonth  *int     `gorm:"column:Mes_Creacion"`
	CreationYear   *int     `gorm:"column:Anio_Creacion"`
	IsClosedFlag   int      `gorm:"column:Es_Venta_Cerrada"`
}

func (OpportunityFact) TableName() string {
	return OpportunityFactTable
}

// ClosureRepair запись о синтетической дате закрытия, назначенной сделке
type ClosureRepair struct {
	OpportunityID string
	Stage         Stage
	CreationDate  time.Time
	SyntheticDays int
	ClosureDate   time.Time
}

// ETLMetadata содержит метаданные о запуске ETL
type ETLMetadata struct {
	RunTimestamp           time.Time
	CustomersProcessed     int
	OpportunitiesProcessed int
	RejectedCustomers      int
	RejectedOpportunities  int
	UnparsableDates        int
	ClosuresRepaired       int
	UnrepairableClosures   int
	OrphanOpportunities    int
}
