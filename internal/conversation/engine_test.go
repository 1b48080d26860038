package conversation_test

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/tea-corner/go-backend/internal/conversation"
	"github.com/tea-corner/go-backend/internal/repository/memory"
	"github.com/tea-corner/go-backend/internal/usecase"
	"github.com/tea-corner/go-backend/pkg/e"
	"github.com/tea-corner/go-backend/pkg/logger"
)

// fakeCatalog — каталог в памяти для тестов диалогового ядра.
type fakeCatalog struct {
	products map[int64]usecase.ProductRes
	failAll  bool
}

func (f *fakeCatalog) GetByID(_ context.Context, id int64) (*usecase.ProductRes, error) {
	if f.failAll {
		return nil, errors.New("catalog down")
	}
	p, ok := f.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	return &p, nil
}

func (f *fakeCatalog) ListByCategory(_ context.Context, category string) ([]usecase.ProductRes, error) {
	if f.failAll {
		return nil, errors.New("catalog down")
	}
	var result []usecase.ProductRes
	for _, p := range f.products {
		if p.Category == category {
			result = append(result, p)
		}
	}
	return result, nil
}

func (f *fakeCatalog) ListCategories(_ context.Context) ([]string, error) {
	if f.failAll {
		return nil, errors.New("catalog down")
	}
	seen := map[string]bool{}
	var result []string
	for _, p := range f.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			result = append(result, p.Category)
		}
	}
	return result, nil
}

func (f *fakeCatalog) Search(_ context.Context, query string) ([]usecase.ProductRes, error) {
	if f.failAll {
		return nil, errors.New("catalog down")
	}
	q := strings.ToLower(query)
	var result []usecase.ProductRes
	for _, p := range f.products {
		desc := ""
		if p.Description != nil {
			desc = *p.Description
		}
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(desc), q) {
			result = append(result, p)
		}
	}
	return result, nil
}

// fakeNotifier записывает доставленные сообщения по получателям.
type fakeNotifier struct {
	delivered map[int64][]string
	forwarded map[int64][]string
	fail      bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		delivered: make(map[int64][]string),
		forwarded: make(map[int64][]string),
	}
}

func (f *fakeNotifier) Deliver(_ context.Context, recipients []int64, text string) error {
	if f.fail {
		return errors.New("delivery down")
	}
	for _, r := range recipients {
		f.delivered[r] = append(f.delivered[r], text)
	}
	return nil
}

func (f *fakeNotifier) Forward(_ context.Context, recipients []int64, header, text string) error {
	for _, r := range recipients {
		f.forwarded[r] = append(f.forwarded[r], header+text)
	}
	return nil
}

type fakeProducer struct {
	orders []*usecase.WriteOrderReq
}

func (f *fakeProducer) WriteOrder(_ context.Context, req *usecase.WriteOrderReq) error {
	f.orders = append(f.orders, req)
	return nil
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newWeightedProduct(id int64, name string, priceKopecks int64, weight string) usecase.ProductRes {
	return usecase.ProductRes{ID: id, Name: name, Category: "Шу пуэры", Price: priceKopecks, Weight: dec(weight)}
}

// testHarness собирает ядро с фейковым каталогом и реальным сборщиком заказов.
type testHarness struct {
	engine   *conversation.Engine
	carts    *memory.CartRepo
	catalog  *fakeCatalog
	notifier *fakeNotifier
	producer *fakeProducer
}

var testOperators = []int64{100, 200}

func newHarness() *testHarness {
	catalog := &fakeCatalog{products: map[int64]usecase.ProductRes{
		1: {ID: 1, Name: "Да Хун Пао", Category: "Улуны", Price: 25000, Weight: dec("50")},
		2: {ID: 2, Name: "Гайвань", Category: "Посуда", Price: 120000},
	}}
	carts := memory.NewCartRepo()
	sessions := memory.NewSessionRepo()
	notifier := newFakeNotifier()
	producer := &fakeProducer{}
	log := logger.NewSlogLogger()

	orders := usecase.NewOrderUC(carts, catalog, notifier, producer, testOperators, log)
	engine := conversation.NewEngine(catalog, carts, sessions, orders, notifier, testOperators, "support", log)

	return &testHarness{
		engine:   engine,
		carts:    carts,
		catalog:  catalog,
		notifier: notifier,
		producer: producer,
	}
}

func cmd(userID int64, text string) conversation.Event {
	return conversation.Event{UserID: userID, Kind: conversation.EventCommand, Text: text}
}

func text(userID int64, s string) conversation.Event {
	return conversation.Event{UserID: userID, Kind: conversation.EventText, Text: s}
}

func btn(userID int64, action, arg string) conversation.Event {
	return conversation.Event{
		UserID: userID,
		Kind:   conversation.EventButton,
		Button: &conversation.ButtonPress{Action: action, Arg: arg},
	}
}

func firstText(t *testing.T, replies []conversation.Reply) string {
	t.Helper()
	if len(replies) == 0 {
		t.Fatalf("expected at least one reply")
	}
	return replies[0].Text
}

func TestStartShowsMainMenu(t *testing.T) {
	h := newHarness()

	replies := h.engine.Handle(context.Background(), cmd(1, "/start"))
	if got := firstText(t, replies); !strings.Contains(got, "Добро пожаловать") {
		t.Fatalf("unexpected greeting: %q", got)
	}
	if replies[0].Keyboard == nil || len(replies[0].Keyboard.Menu) == 0 {
		t.Fatalf("expected main menu keyboard")
	}
}

func TestCheckoutOnEmptyCartStaysIdle(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	replies := h.engine.Handle(ctx, btn(1, "checkout", ""))
	if got := firstText(t, replies); got != "Ваша корзина пуста." {
		t.Fatalf("unexpected reply: %q", got)
	}

	// Следующий произвольный текст обрабатывается как в основном состоянии,
	// а не как поле анкеты.
	replies = h.engine.Handle(ctx, text(1, "Иванов Иван"))
	if got := firstText(t, replies); !strings.Contains(got, "Не понял") {
		t.Fatalf("state must stay idle, got: %q", got)
	}
}

func TestCalculatorWithoutWeightedLinesStaysIdle(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	// Товар 2 без веса.
	h.engine.Handle(ctx, btn(1, "add", "2"))

	replies := h.engine.Handle(ctx, btn(1, "calc_cart", ""))
	if got := firstText(t, replies); got != "Нет товаров с указанием веса для расчёта." {
		t.Fatalf("unexpected reply: %q", got)
	}

	replies = h.engine.Handle(ctx, text(1, "33"))
	if got := firstText(t, replies); !strings.Contains(got, "Не понял") {
		t.Fatalf("state must stay idle, got: %q", got)
	}
}

func TestCancelSemantics(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	// Из основного состояния отменять нечего.
	replies := h.engine.Handle(ctx, cmd(1, "/cancel"))
	if got := firstText(t, replies); got != "Нет активных операций." {
		t.Fatalf("unexpected idle cancel reply: %q", got)
	}

	// Из поиска /cancel возвращает в основное состояние.
	h.engine.Handle(ctx, text(1, "Поиск"))
	replies = h.engine.Handle(ctx, cmd(1, "/cancel"))
	if got := firstText(t, replies); got != "Операция отменена." {
		t.Fatalf("unexpected cancel reply: %q", got)
	}

	// Из середины анкеты заказа /cancel отбрасывает накопленные поля.
	h.engine.Handle(ctx, btn(1, "add", "1"))
	h.engine.Handle(ctx, btn(1, "checkout", ""))
	h.engine.Handle(ctx, text(1, "Иванов Иван"))
	replies = h.engine.Handle(ctx, cmd(1, "/cancel"))
	if got := firstText(t, replies); got != "Операция отменена." {
		t.Fatalf("unexpected cancel reply: %q", got)
	}
	replies = h.engine.Handle(ctx, cmd(1, "/cancel"))
	if got := firstText(t, replies); got != "Нет активных операций." {
		t.Fatalf("second cancel must report nothing active: %q", got)
	}
}

func TestOrderFormRepromptsOnEmptyInput(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	h.engine.Handle(ctx, btn(1, "add", "1"))
	h.engine.Handle(ctx, btn(1, "checkout", ""))

	replies := h.engine.Handle(ctx, text(1, "   "))
	if got := firstText(t, replies); got != "Пожалуйста, введите корректное ФИО:" {
		t.Fatalf("expected full name reprompt, got: %q", got)
	}

	h.engine.Handle(ctx, text(1, "Иванов Иван"))
	replies = h.engine.Handle(ctx, text(1, ""))
	if got := firstText(t, replies); got != "Пожалуйста, введите корректный адрес:" {
		t.Fatalf("expected address reprompt, got: %q", got)
	}
}

func TestOrderEndToEnd(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	h.engine.Handle(ctx, btn(1, "add", "1"))
	h.engine.Handle(ctx, btn(1, "add", "1"))
	h.engine.Handle(ctx, btn(1, "checkout", ""))
	h.engine.Handle(ctx, text(1, "Иванов Иван"))
	h.engine.Handle(ctx, text(1, "Москва, Тверская 1"))
	h.engine.Handle(ctx, text(1, "+79990001122"))
	h.engine.Handle(ctx, text(1, "Позвонить заранее"))
	replies := h.engine.Handle(ctx, text(1, ""))

	if got := firstText(t, replies); !strings.Contains(got, "Ваш заказ принят") {
		t.Fatalf("unexpected confirmation: %q", got)
	}

	for _, operator := range testOperators {
		messages := h.notifier.delivered[operator]
		if len(messages) != 1 {
			t.Fatalf("operator %d: expected exactly one message, got %d", operator, len(messages))
		}

		msg := messages[0]
		if !strings.Contains(msg, "x2 — 500₽") {
			t.Fatalf("order message missing line subtotal: %q", msg)
		}
		number := regexp.MustCompile(`Номер заказа:</b> ([0-9A-F]{8})\n`).FindStringSubmatch(msg)
		if number == nil {
			t.Fatalf("order message missing 8-char uppercase number: %q", msg)
		}
		for _, field := range []string{"Иванов Иван", "Москва, Тверская 1", "+79990001122", "Позвонить заранее", "Промокод: —"} {
			if !strings.Contains(msg, field) {
				t.Fatalf("order message missing %q: %q", field, msg)
			}
		}
	}

	if lines := h.carts.Lines(1); len(lines) != 0 {
		t.Fatalf("cart must be empty after submit, got %+v", lines)
	}
	if len(h.producer.orders) != 1 {
		t.Fatalf("expected one published order event, got %d", len(h.producer.orders))
	}
}

func TestOrderDeliveryFailureKeepsCart(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.notifier.fail = true

	h.engine.Handle(ctx, btn(1, "add", "1"))
	h.engine.Handle(ctx, btn(1, "checkout", ""))
	h.engine.Handle(ctx, text(1, "Иванов Иван"))
	h.engine.Handle(ctx, text(1, "Москва"))
	h.engine.Handle(ctx, text(1, "+79990001122"))
	h.engine.Handle(ctx, text(1, "без комментариев"))
	replies := h.engine.Handle(ctx, text(1, "ЧАЙ10"))

	if got := firstText(t, replies); !strings.Contains(got, "Ошибка при отправке заказа") {
		t.Fatalf("expected delivery failure notice, got: %q", got)
	}
	if lines := h.carts.Lines(1); len(lines) != 1 {
		t.Fatalf("cart must survive delivery failure, got %+v", lines)
	}
}

func TestSearchIsCaseInsensitiveOneShot(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	h.engine.Handle(ctx, text(1, "Поиск"))
	replies := h.engine.Handle(ctx, text(1, "да хун"))
	if got := firstText(t, replies); !strings.Contains(got, "Да Хун Пао") {
		t.Fatalf("expected search hit, got: %q", got)
	}

	// Поиск одноразовый: следующий текст снова обрабатывается основным состоянием.
	replies = h.engine.Handle(ctx, text(1, "да хун"))
	if got := firstText(t, replies); !strings.Contains(got, "Не понял") {
		t.Fatalf("search must be one-shot, got: %q", got)
	}
}

func TestSearchMissReportsNotFound(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	h.engine.Handle(ctx, text(1, "Поиск"))
	replies := h.engine.Handle(ctx, text(1, "кофе"))
	if got := firstText(t, replies); got != "Товар не найден." {
		t.Fatalf("expected not-found notice, got: %q", got)
	}
}

func TestSearchByNumericID(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	h.engine.Handle(ctx, text(1, "Поиск"))
	replies := h.engine.Handle(ctx, text(1, "2"))
	if got := firstText(t, replies); !strings.Contains(got, "Гайвань") {
		t.Fatalf("expected id fast path hit, got: %q", got)
	}
}

func TestCatalogFailureRendersEmptyNotStuck(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.catalog.failAll = true

	h.engine.Handle(ctx, cmd(1, "/start"))
	replies := h.engine.Handle(ctx, text(1, "Поиск"))
	if got := firstText(t, replies); !strings.Contains(got, "Введите ключевое слово") {
		t.Fatalf("unexpected search prompt: %q", got)
	}

	replies = h.engine.Handle(ctx, text(1, "пуэр"))
	if got := firstText(t, replies); got != "Товар не найден." {
		t.Fatalf("catalog failure must render as empty result, got: %q", got)
	}

	// Диалог жив: меню продолжает отвечать.
	replies = h.engine.Handle(ctx, text(1, "Каталог"))
	if got := firstText(t, replies); got != "Выберите категорию:" {
		t.Fatalf("conversation stuck after catalog failure: %q", got)
	}
}

func TestUnknownIdleTextIsForwardedToOperators(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	ev := text(1, "Здравствуйте, есть ли свежий шен?")
	ev.Username = "ivan"
	replies := h.engine.Handle(ctx, ev)

	if got := firstText(t, replies); !strings.Contains(got, "Не понял") {
		t.Fatalf("expected catch-all hint, got: %q", got)
	}
	for _, operator := range testOperators {
		if len(h.notifier.forwarded[operator]) != 1 {
			t.Fatalf("operator %d: expected forwarded message", operator)
		}
		if !strings.Contains(h.notifier.forwarded[operator][0], "свежий шен") {
			t.Fatalf("forwarded text lost: %q", h.notifier.forwarded[operator][0])
		}
	}
}

func TestMalformedButtonPayloadKeepsState(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	replies := h.engine.Handle(ctx, btn(1, "cart", "nonsense"))
	if got := firstText(t, replies); got != "Ошибка данных." {
		t.Fatalf("expected generic invalid-data ack, got: %q", got)
	}

	replies = h.engine.Handle(ctx, btn(1, "item", "abc"))
	if got := firstText(t, replies); got != "Неверный товар." {
		t.Fatalf("expected invalid product ack, got: %q", got)
	}
}

func TestCartEditButtons(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	h.engine.Handle(ctx, btn(1, "add", "1"))
	h.engine.Handle(ctx, btn(1, "cart", "plus:1"))
	if lines := h.carts.Lines(1); lines[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %+v", lines)
	}

	h.engine.Handle(ctx, btn(1, "cart", "minus:1"))
	h.engine.Handle(ctx, btn(1, "cart", "minus:1"))
	if lines := h.carts.Lines(1); len(lines) != 0 {
		t.Fatalf("expected line removed at zero, got %+v", lines)
	}
}
