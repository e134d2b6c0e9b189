package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownStage      = errors.New("неизвестная стадия воронки")
	ErrUnknownIndustry   = errors.New("неизвестная отрасль")
	ErrUnknownLeadSource = errors.New("неизвестный источник лида")
)

// Stage стадия сделки в воронке продаж
type Stage string

const (
	StageProspect    Stage = "Prospecto"
	StageAnalysis    Stage = "Análisis"
	StageProposal    Stage = "Propuesta"
	StageNegotiation Stage = "Negociación"
	StageClosedWon   Stage = "Cerrado Ganado"
	StageClosedLost  Stage = "Cerrado Perdido"
)

// OpenStages открытые стадии в порядке продвижения по воронке
var OpenStages = []Stage{StageProspect, StageAnalysis, StageProposal, StageNegotiation}

// ClosedStages терминальные стадии
var ClosedStages = []Stage{StageClosedWon, StageClosedLost}

var allStages = []Stage{
	StageProspect, StageAnalysis, StageProposal, StageNegotiation,
	StageClosedWon, StageClosedLost,
}

// Канонические английские названия стадий
var stageAliases = map[string]Stage{
	"Prospect":    StageProspect,
	"Analysis":    StageAnalysis,
	"Proposal":    StageProposal,
	"Negotiation": StageNegotiation,
	"Closed-Won":  StageClosedWon,
	"Closed-Lost": StageClosedLost,
}

// ParseStage разбирает название стадии. Сравнение буквальное:
// допускаются только исходные названия и их канонические эквиваленты.
func ParseStage(s string) (Stage, error) {
	s = strings.TrimSpace(s)
	for _, st := range allStages {
		if string(st) == s {
			return st, nil
		}
	}
	if st, ok := stageAliases[s]; ok {
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStage, s)
}

// IsClosed сообщает, является ли стадия завершающей (выиграна или проиграна)
func (s Stage) IsClosed() bool {
	return s == StageClosedWon || s == StageClosedLost
}

// Industry отрасль клиента
type Industry string

const (
	IndustryTechnology    Industry = "Tecnologias"
	IndustryManufacturing Industry = "Manofactura"
	IndustryRetail        Industry = "Retail"
	IndustryHealth        Industry = "Salud"
	IndustryFinance       Industry = "Finanzas"
	IndustryConsulting    Industry = "Consultoria"
)

var Industries = []Industry{
	IndustryTechnology, IndustryManufacturing, IndustryRetail,
	IndustryHealth, IndustryFinance, IndustryConsulting,
}

// ParseIndustry разбирает отрасль клиента
func ParseIndustry(s string) (Industry, error) {
	s = strings.TrimSpace(s)
	for _, i := range Industries {
		if string(i) == s {
			return i, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownIndustry, s)
}

// LeadSource источник, из которого пришел клиент
type LeadSource string

const (
	LeadSourceWebsite   LeadSource = "Website"
	LeadSourceLinkedin  LeadSource = "Linkedin"
	LeadSourceReferral  LeadSource = "Referido"
	LeadSourceColdEmail LeadSource = "Email Cold"
	LeadSourceEvent     LeadSource = "Evento"
)

var LeadSources = []LeadSource{
	LeadSourceWebsite, LeadSourceLinkedin, LeadSourceReferral,
	LeadSourceColdEmail, LeadSourceEvent,
}

// ParseLeadSource разбирает источник лида
func ParseLeadSource(s string) (LeadSource, error) {
	s = strings.TrimSpace(s)
	for _, l := range LeadSources {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLeadSource, s)
}

// DealSize категория размера сделки
type DealSize string

const (
	DealSizeSmallBusiness DealSize = "Small Business"
	DealSizeMidMarket     DealSize = "Mid-Market"
	DealSizeEnterprise    DealSize = "Enterprise"
)

// Пороги категорий: нижняя граница включается в следующую категорию
const (
	MidMarketThreshold  = 5000.0
	EnterpriseThreshold = 20000.0
)
