package domain

import "github.com/shopspring/decimal"

// State — тег текущего состояния диалога пользователя.
type State string

const (
	StateIdle                  State = "idle"
	StateAwaitingSearchQuery   State = "awaiting_search_query"
	StateAwaitingOrderFullName State = "awaiting_order_full_name"
	StateAwaitingOrderAddress  State = "awaiting_order_address"
	StateAwaitingOrderPhone    State = "awaiting_order_phone"
	StateAwaitingOrderComment  State = "awaiting_order_comment"
	StateAwaitingOrderPromo    State = "awaiting_order_promo"
	StateAwaitingCalcGrams     State = "awaiting_calculator_grams"
)

// Поля анкеты заказа, накапливаемые в Scratch по ходу диалога.
const (
	FieldFullName = "full_name"
	FieldAddress  = "address"
	FieldPhone    = "phone"
	FieldComment  = "comment"
	FieldPromo    = "promo"
)

// Session — состояние диалога одного пользователя: тег FSM,
// накопленные поля анкеты и активный запуск калькулятора.
type Session struct {
	UserID  int64
	State   State
	Scratch map[string]string
	Calc    *CalculatorRun
}

func NewSession(userID int64) *Session {
	return &Session{
		UserID:  userID,
		State:   StateIdle,
		Scratch: make(map[string]string),
	}
}

// Reset возвращает сессию в исходное состояние, отбрасывая все накопленные данные.
func (s *Session) Reset() {
	s.State = StateIdle
	s.Scratch = make(map[string]string)
	s.Calc = nil
}

// CalcTarget — товар, участвующий в расчёте стоимости по граммам.
type CalcTarget struct {
	ProductID int64
	Name      string
	Price     decimal.Decimal // цена за упаковку, в рублях
	Weight    decimal.Decimal // вес упаковки, в граммах
}

// PricePerGram возвращает цену за грамм для подсказки пользователю.
func (t CalcTarget) PricePerGram() decimal.Decimal {
	return t.Price.Div(t.Weight)
}

// CalcResult — посчитанная позиция калькулятора.
type CalcResult struct {
	Name     string
	Grams    decimal.Decimal
	Subtotal int64 // в рублях, всегда округлено вверх
}

// CalculatorRun — прогон калькулятора по товарам корзины с известным весом.
// Существует только пока активен подсценарий; результаты нигде не сохраняются.
type CalculatorRun struct {
	Targets []CalcTarget
	Cursor  int
	Total   int64
	Results []CalcResult
}

// Current возвращает товар, для которого ожидается ввод граммов.
func (c *CalculatorRun) Current() CalcTarget {
	return c.Targets[c.Cursor]
}

// Done сообщает, пройдены ли все товары.
func (c *CalculatorRun) Done() bool {
	return c.Cursor >= len(c.Targets)
}
