package generator

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/LilVoxy/crm_warehouse/ETL/models"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Доля сделок, которые уже закрыты (выиграны или проиграны)
const closedShare = 0.7

const (
	minAmount = 1000.0
	maxAmount = 50000.0

	minCycleDays = 5
	maxCycleDays = 120

	historyYears = 2
)

var (
	salespeople = []string{"Ana P.", "Carlos M.", "Salvador T.", "Matias A.", "Sofial L."}
	products    = []string{"Maquinado", "Terminado", "Re-Trabajo", "Placas"}
	cities      = []string{
		"Monterrey", "Guadalajara", "Ciudad de México", "Puebla", "Querétaro",
		"León", "Tijuana", "Mérida", "Saltillo", "Aguascalientes",
	}
	companyRoots = []string{
		"Grupo Alfa", "Industrias Norte", "Soluciones Delta", "Metalúrgica Bajío",
		"Comercializadora Sol", "Aceros del Golfo", "Tecnología Azteca", "Servicios Omega",
		"Manufacturas Orión", "Distribuidora Pacífico",
	}
	companySuffixes = []string{"S.A. de C.V.", "S. de R.L.", "y Asociados", "Hermanos"}
	firstNames      = []string{"María", "José", "Luis", "Fernanda", "Jorge", "Gabriela", "Miguel", "Lucía"}
	lastNames       = []string{"García", "Hernández", "López", "Martínez", "Rodríguez", "Pérez", "Sánchez", "Ramírez"}
)

// Generator создает синтетические выгрузки CRM той же формы, что и реальные
type Generator struct {
	rng   *rand.Rand
	ids   *rand.ChaCha8
	now   time.Time
	taken map[string]bool
}

// New создает генератор. Одинаковое зерно и now дают одинаковые выгрузки.
func New(seed uint64, now time.Time) *Generator {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	src := rand.NewChaCha8(key)
	return &Generator{
		rng:   rand.New(src),
		ids:   src,
		now:   now,
		taken: make(map[string]bool),
	}
}

// Generate создает numCustomers клиентов и numOpportunities сделок.
// Дата создания сделки лежит между регистрацией её клиента и now;
// дата закрытия есть только у закрытых сделок.
func (g *Generator) Generate(numCustomers, numOpportunities int) ([]models.RawCustomer, []models.RawOpportunity, error) {
	if numCustomers < 1 {
		return nil, nil, fmt.Errorf("количество клиентов должно быть положительным: %d", numCustomers)
	}

	today := dayStart(g.now)
	customers := make([]models.RawCustomer, 0, numCustomers)
	registered := make([]time.Time, 0, numCustomers)

	for range numCustomers {
		id, err := g.shortID()
		if err != nil {
			return nil, nil, err
		}
		company := pick(g.rng, companyRoots) + " " + pick(g.rng, companySuffixes)
		regDate := g.dateBetween(today.AddDate(-historyYears, 0, 0), today)

		customers = append(customers, models.RawCustomer{
			ID:             id,
			CompanyName:    company,
			ContactName:    pick(g.rng, firstNames) + " " + pick(g.rng, lastNames),
			Email:          "contacto@" + strings.ReplaceAll(slug.Make(company), "-", "") + ".com",
			City:           pick(g.rng, cities),
			Industry:       pick(g.rng, models.Industries),
			LeadSource:     pick(g.rng, models.LeadSources),
			RegisteredDate: regDate.Format("2006-01-02"),
		})
		registered = append(registered, regDate)
	}

	opportunities := make([]models.RawOpportunity, 0, numOpportunities)
	for range numOpportunities {
		idx := g.rng.IntN(len(customers))
		id, err := g.shortID()
		if err != nil {
			return nil, nil, err
		}

		created := g.dateBetween(registered[idx], today)
		opp := models.RawOpportunity{
			ID:          id,
			CustomerID:  customers[idx].ID,
			Salesperson: pick(g.rng, salespeople),
			Product:     pick(g.rng, products),
			Amount:      math.Round((minAmount+g.rng.Float64()*(maxAmount-minAmount))*100) / 100,
			CreatedDate: created.Format("2006-01-02"),
		}

		if g.rng.Float64() < closedShare {
			opp.Stage = pick(g.rng, models.ClosedStages)
			if opp.Stage == models.StageClosedWon {
				opp.Probability = 100
			}
			days := minCycleDays + g.rng.IntN(maxCycleDays-minCycleDays+1)
			opp.ClosedDate = created.AddDate(0, 0, days).Format("2006-01-02")
		} else {
			stageIdx := g.rng.IntN(len(models.OpenStages))
			opp.Stage = models.OpenStages[stageIdx]
			opp.Probability = (stageIdx + 1) * 20
		}

		opportunities = append(opportunities, opp)
	}

	return customers, opportunities, nil
}

// shortID первые 8 символов UUIDv4, уникальные в пределах генератора
func (g *Generator) shortID() (string, error) {
	for {
		u, err := uuid.NewRandomFromReader(g.ids)
		if err != nil {
			return "", fmt.Errorf("ошибка генерации идентификатора: %w", err)
		}
		id := u.String()[:8]
		if !g.taken[id] {
			g.taken[id] = true
			return id, nil
		}
	}
}

// dateBetween случайная дата в [from, to] с точностью до дня
func (g *Generator) dateBetween(from, to time.Time) time.Time {
	span := int(to.Sub(from).Hours() / 24)
	if span <= 0 {
		return from
	}
	return from.AddDate(0, 0, g.rng.IntN(span+1))
}

func pick[T any](rng *rand.Rand, values []T) T {
	return values[rng.IntN(len(values))]
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
