package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/aluquote/internal/pricing"
)

// fixed renders a decimal as a JSON string with a fixed number of places.
type fixed struct {
	d      decimal.Decimal
	places int32
}

func money(d decimal.Decimal) fixed   { return fixed{d: pricing.RoundCurrency(d), places: 2} }
func measure(d decimal.Decimal) fixed { return fixed{d: pricing.RoundMeasure(d), places: 3} }

func (f fixed) MarshalJSON() ([]byte, error) {
	return []byte(`"` + f.d.StringFixed(f.places) + `"`), nil
}

// QuoteResponse is the presentation form of a priced quote: money with 2
// fixed places, measures with 3.
type QuoteResponse struct {
	ID           uuid.UUID  `json:"id"`
	Items        []lineView `json:"items"`
	Totals       totalsView `json:"totals"`
	Rates        ratesView  `json:"rates"`
	CalculatedAt time.Time  `json:"calculated_at"`
	ValidUntil   time.Time  `json:"valid_until"`
}

type lineView struct {
	Index       int       `json:"index"`
	ProductID   int64     `json:"product_id"`
	ProductCode string    `json:"product_code"`
	ProductName string    `json:"product_name"`
	Subtype     string    `json:"subtype,omitempty"`
	WidthCM     string    `json:"width_cm"`
	HeightCM    string    `json:"height_cm"`
	Quantity    int       `json:"quantity"`
	AreaM2      fixed     `json:"area_m2"`
	PerimeterM  fixed     `json:"perimeter_m"`
	Profiles    fixed     `json:"profiles_cost"`
	Glass       fixed     `json:"glass_cost"`
	Hardware    fixed     `json:"hardware_cost"`
	Consumables fixed     `json:"consumables_cost"`
	Materials   fixed     `json:"materials_cost"`
	Labor       fixed     `json:"labor_cost"`
	Subtotal    fixed     `json:"subtotal"`
	BOM         []bomView `json:"bom"`
}

type bomView struct {
	MaterialID  int64  `json:"material_id"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	Quantity    fixed  `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	PriceSource string `json:"price_source"`
	Cost        fixed  `json:"cost"`
}

type totalsView struct {
	MaterialsSubtotal fixed `json:"materials_subtotal"`
	LaborSubtotal     fixed `json:"labor_subtotal"`
	PreOverhead       fixed `json:"subtotal_before_overhead"`
	Profit            fixed `json:"profit_amount"`
	IndirectCosts     fixed `json:"indirect_costs_amount"`
	PostOverhead      fixed `json:"subtotal_with_overhead"`
	Tax               fixed `json:"tax_amount"`
	GrandTotal        fixed `json:"grand_total"`
}

type ratesView struct {
	ProfitMargin  string `json:"profit_margin"`
	IndirectCosts string `json:"indirect_costs_rate"`
	Tax           string `json:"tax_rate"`
}

// NewQuoteResponse renders res for output.
func NewQuoteResponse(res *pricing.Result) QuoteResponse {
	out := QuoteResponse{
		ID:    res.ID,
		Items: make([]lineView, len(res.Items)),
		Totals: totalsView{
			MaterialsSubtotal: money(res.Totals.MaterialsSubtotal),
			LaborSubtotal:     money(res.Totals.LaborSubtotal),
			PreOverhead:       money(res.Totals.PreOverhead),
			Profit:            money(res.Totals.Profit),
			IndirectCosts:     money(res.Totals.IndirectCosts),
			PostOverhead:      money(res.Totals.PostOverhead),
			Tax:               money(res.Totals.Tax),
			GrandTotal:        money(res.Totals.GrandTotal),
		},
		Rates: ratesView{
			ProfitMargin:  res.Rates.ProfitMargin.String(),
			IndirectCosts: res.Rates.IndirectCosts.String(),
			Tax:           res.Rates.Tax.String(),
		},
		CalculatedAt: res.CalculatedAt,
		ValidUntil:   res.ValidUntil,
	}
	for i, l := range res.Items {
		lv := lineView{
			Index:       l.Index,
			ProductID:   l.ProductID,
			ProductCode: l.ProductCode,
			ProductName: l.ProductName,
			Subtype:     l.Subtype,
			WidthCM:     l.WidthCM.String(),
			HeightCM:    l.HeightCM.String(),
			Quantity:    l.Quantity,
			AreaM2:      measure(l.AreaM2),
			PerimeterM:  measure(l.PerimeterM),
			Profiles:    money(l.Costs.Profiles),
			Glass:       money(l.Costs.Glass),
			Hardware:    money(l.Costs.Hardware),
			Consumables: money(l.Costs.Consumables),
			Materials:   money(l.MaterialsCost()),
			Labor:       money(l.LaborCost),
			Subtotal:    money(l.Subtotal),
			BOM:         make([]bomView, len(l.BOM)),
		}
		for j, b := range l.BOM {
			lv.BOM[j] = bomView{
				MaterialID:  b.MaterialID,
				Category:    b.Category.String(),
				Description: b.Description,
				Quantity:    measure(b.Quantity),
				UnitPrice:   b.Price.Unit.String(),
				PriceSource: b.Price.Source.String(),
				Cost:        money(b.Cost),
			}
		}
		out.Items[i] = lv
	}
	return out
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req pricing.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	res, err := s.calc.Quote(r.Context(), s.source, req)
	if err != nil {
		writeCalcError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewQuoteResponse(res))
}

type validateFormulaRequest struct {
	Formula   string   `json:"formula"`
	Variables []string `json:"variables"`
}

type validateFormulaResponse struct {
	Valid bool   `json:"valid"`
	Kind  string `json:"kind,omitempty"`
	Error string `json:"error,omitempty"`
}

func (s *Server) handleValidateFormula(w http.ResponseWriter, r *http.Request) {
	var req validateFormulaRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Formula) == "" {
		writeError(w, http.StatusBadRequest, "formula is required")
		return
	}

	names := req.Variables
	if len(names) == 0 {
		names = formulaVariables
	}
	if err := s.eval.Check(req.Formula, names); err != nil {
		writeJSON(w, http.StatusOK, validateFormulaResponse{Kind: errorKind(err), Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, validateFormulaResponse{Valid: true})
}
