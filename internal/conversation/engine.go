package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/tea-corner/go-backend/internal/domain"
	"github.com/tea-corner/go-backend/internal/usecase"
	pkge "github.com/tea-corner/go-backend/pkg/e"
	"github.com/tea-corner/go-backend/pkg/logger"
)

const catchAllText = "Не понял вашу команду. Нажмите /start, чтобы вернуться в главное меню."

// handlerFunc обрабатывает событие в контексте сессии и возвращает ответы.
type handlerFunc func(ctx context.Context, session *domain.Session, ev Event) []Reply

// transitionKey — ключ таблицы переходов: состояние × вид события.
type transitionKey struct {
	state domain.State
	kind  EventKind
}

// Engine — диалоговое ядро. Единственная точка входа — Handle:
// каждое событие интерпретируется по явной таблице переходов
// в контексте текущего состояния сессии пользователя.
type Engine struct {
	catalog  usecase.CatalogUC
	carts    usecase.CartRepository
	sessions usecase.SessionRepository
	orders   usecase.OrderUC
	notifier usecase.NotifierInfra

	operators     []int64
	supportHandle string
	logger        logger.Logger

	handlers map[transitionKey]handlerFunc
	userMu   sync.Map // user id -> *sync.Mutex
}

func NewEngine(
	catalog usecase.CatalogUC,
	carts usecase.CartRepository,
	sessions usecase.SessionRepository,
	orders usecase.OrderUC,
	notifier usecase.NotifierInfra,
	operators []int64,
	supportHandle string,
	logger logger.Logger,
) *Engine {
	e := &Engine{
		catalog:       catalog,
		carts:         carts,
		sessions:      sessions,
		orders:        orders,
		notifier:      notifier,
		operators:     operators,
		supportHandle: supportHandle,
		logger:        logger,
	}

	e.handlers = map[transitionKey]handlerFunc{
		{domain.StateIdle, EventText}:                e.handleIdleText,
		{domain.StateAwaitingSearchQuery, EventText}: e.handleSearchQuery,

		{domain.StateAwaitingOrderFullName, EventText}: e.orderFieldHandler(domain.FieldFullName),
		{domain.StateAwaitingOrderAddress, EventText}:  e.orderFieldHandler(domain.FieldAddress),
		{domain.StateAwaitingOrderPhone, EventText}:    e.orderFieldHandler(domain.FieldPhone),
		{domain.StateAwaitingOrderComment, EventText}:  e.orderFieldHandler(domain.FieldComment),
		{domain.StateAwaitingOrderPromo, EventText}:    e.handleOrderPromo,

		{domain.StateAwaitingCalcGrams, EventText}: e.handleCalcGrams,
	}
	// Кнопки навигации обрабатываются одинаково во всех состояниях.
	for _, state := range []domain.State{
		domain.StateIdle,
		domain.StateAwaitingSearchQuery,
		domain.StateAwaitingOrderFullName,
		domain.StateAwaitingOrderAddress,
		domain.StateAwaitingOrderPhone,
		domain.StateAwaitingOrderComment,
		domain.StateAwaitingOrderPromo,
		domain.StateAwaitingCalcGrams,
	} {
		e.handlers[transitionKey{state, EventButton}] = e.handleButton
	}

	return e
}

// Handle обрабатывает одно входящее событие. События одного пользователя
// сериализуются мьютексом и применяются в порядке поступления;
// события разных пользователей независимы.
func (e *Engine) Handle(ctx context.Context, ev Event) []Reply {
	mu := e.userMutex(ev.UserID)
	mu.Lock()
	defer mu.Unlock()

	session := e.sessions.GetOrCreate(ev.UserID)

	if ev.Kind == EventCommand {
		return e.handleCommand(session, ev)
	}

	handler, ok := e.handlers[transitionKey{session.State, ev.Kind}]
	if !ok {
		return []Reply{textReply("Ошибка данных.")}
	}

	return handler(ctx, session, ev)
}

func (e *Engine) userMutex(userID int64) *sync.Mutex {
	mu, _ := e.userMu.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// handleCommand обрабатывает /start и /cancel из любого состояния.
func (e *Engine) handleCommand(session *domain.Session, ev Event) []Reply {
	switch strings.ToLower(strings.TrimSpace(ev.Text)) {
	case "/start":
		session.Reset()
		return []Reply{menuReply("Добро пожаловать! Выберите нужное действие:", mainMenu())}
	case "/cancel":
		if session.State == domain.StateIdle {
			return []Reply{menuReply("Нет активных операций.", mainMenu())}
		}
		session.Reset()
		return []Reply{menuReply("Операция отменена.", mainMenu())}
	default:
		return []Reply{textReply(catchAllText)}
	}
}

// handleIdleText разбирает текст в основном состоянии: пункты меню,
// название живой категории, иначе подсказка с пересылкой операторам.
func (e *Engine) handleIdleText(ctx context.Context, session *domain.Session, ev Event) []Reply {
	text := strings.TrimSpace(ev.Text)

	switch text {
	case menuCatalog:
		return []Reply{e.catalogMenuReply(ctx)}
	case menuSearch:
		session.State = domain.StateAwaitingSearchQuery
		return []Reply{textReply("Введите ключевое слово или ID товара (для отмены /cancel):")}
	case menuCart:
		return []Reply{e.cartReply(ctx, ev.UserID)}
	case menuSupport:
		return []Reply{e.supportReply()}
	case menuBack:
		return []Reply{mainMenuReply()}
	}

	if e.isCategory(ctx, text) {
		return []Reply{
			{Text: fmt.Sprintf("<b>Категория:</b> %s\nВыберите товар:", text), RemoveMenu: true},
			e.productListReply(ctx, text),
		}
	}

	e.forwardToOperators(ctx, ev)

	return []Reply{textReply(catchAllText)}
}

// isCategory сообщает, совпадает ли текст с живой категорией каталога.
// Ошибка каталога трактуется как «не категория».
func (e *Engine) isCategory(ctx context.Context, text string) bool {
	categories, err := e.catalog.ListCategories(ctx)
	if err != nil {
		e.logger.Warnf("Failed to list categories: %v", err)
		return false
	}

	for _, category := range categories {
		if category == text {
			return true
		}
	}

	return false
}

// forwardToOperators пересылает нераспознанный текст операторам,
// чтобы переписка с магазином не терялась. Сбой только логируется.
func (e *Engine) forwardToOperators(ctx context.Context, ev Event) {
	// Сообщения самих операторов не пересылаются, иначе получится эхо.
	for _, operator := range e.operators {
		if operator == ev.UserID {
			return
		}
	}

	username := ev.Username
	if username == "" {
		username = "без username"
	}
	header := fmt.Sprintf("📩 Ответ от @%s (ID: %d):\n", username, ev.UserID)

	if err := e.notifier.Forward(ctx, e.operators, header, ev.Text); err != nil {
		e.logger.Warnf("Failed to forward user message, user_id: %d, err: %v", ev.UserID, err)
	}
}

// handleSearchQuery выполняет одноразовый поиск: числовой запрос трактуется
// как ID товара, остальное — как подстрока названия или описания.
// Состояние безусловно возвращается в исходное.
func (e *Engine) handleSearchQuery(ctx context.Context, session *domain.Session, ev Event) []Reply {
	session.State = domain.StateIdle
	query := strings.TrimSpace(ev.Text)

	var results []usecase.ProductRes
	if id, err := strconv.ParseInt(query, 10, 64); err == nil {
		product, err := e.catalog.GetByID(ctx, id)
		if err != nil {
			if !isNotFound(err) {
				e.logger.Warnf("Search by id failed, id: %d, err: %v", id, err)
			}
		} else {
			results = append(results, *product)
		}
	} else {
		found, err := e.catalog.Search(ctx, query)
		if err != nil {
			e.logger.Warnf("Search failed, query: %s, err: %v", query, err)
		}
		results = found
	}

	if len(results) == 0 {
		return []Reply{menuReply("Товар не найден.", mainMenu())}
	}

	var b strings.Builder
	b.WriteString("<b>Результаты поиска:</b>\n\n")
	rows := make([][]InlineButton, 0, len(results)+1)
	for _, p := range results {
		fmt.Fprintf(&b, "• <b>%s</b>\n", p.Name)
		rows = append(rows, []InlineButton{
			{Label: p.Name, Action: "item", Arg: fmt.Sprintf("%d", p.ID)},
		})
	}
	rows = append(rows, []InlineButton{{Label: "В меню", Action: "back_to_main"}})

	return []Reply{inlineReply(b.String(), rows)}
}

// handleButton разбирает нажатия inline-кнопок. Навигационные кнопки
// работают из любого состояния; неразобранная полезная нагрузка
// отвечается общим уведомлением без смены состояния.
func (e *Engine) handleButton(ctx context.Context, session *domain.Session, ev Event) []Reply {
	if ev.Button == nil {
		return []Reply{textReply("Ошибка данных.")}
	}

	switch ev.Button.Action {
	case "item":
		id, err := strconv.ParseInt(ev.Button.Arg, 10, 64)
		if err != nil {
			return []Reply{textReply("Неверный товар.")}
		}
		return e.productCardReplies(ctx, id)

	case "add":
		id, err := strconv.ParseInt(ev.Button.Arg, 10, 64)
		if err != nil {
			return []Reply{textReply("Неверный товар.")}
		}
		e.carts.AddOne(ev.UserID, id)
		return []Reply{textReply("Товар добавлен в корзину.")}

	case "cart":
		return e.handleCartEdit(ctx, ev)

	case "checkout":
		return e.startCheckout(ctx, session, ev)

	case "clear_cart":
		e.carts.Clear(ev.UserID)
		return []Reply{{Text: "Корзина очищена.", RemoveMenu: true}}

	case "edit_cart":
		return []Reply{e.cartEditReply(ctx, ev.UserID)}

	case "calc_cart":
		return e.startCalculator(ctx, session, ev)

	case "back_to_main":
		return []Reply{mainMenuReply()}

	case "back_to_catalog", "back_to_details":
		return []Reply{e.catalogMenuReply(ctx)}

	case "back_to_cart":
		return []Reply{e.cartReply(ctx, ev.UserID)}
	}

	return []Reply{textReply("Ошибка данных.")}
}

// handleCartEdit применяет действие кнопки редактора корзины:
// Arg имеет вид "<minus|plus|delete>:<id>".
func (e *Engine) handleCartEdit(ctx context.Context, ev Event) []Reply {
	op, idStr, ok := strings.Cut(ev.Button.Arg, ":")
	if !ok {
		return []Reply{textReply("Ошибка данных.")}
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return []Reply{textReply("Ошибка данных.")}
	}

	switch op {
	case "minus":
		e.carts.ApplyDelta(ev.UserID, id, -1)
	case "plus":
		e.carts.ApplyDelta(ev.UserID, id, +1)
	case "delete":
		e.carts.RemoveLine(ev.UserID, id)
	default:
		return []Reply{textReply("Ошибка данных.")}
	}

	return []Reply{e.cartEditReply(ctx, ev.UserID)}
}

// startCheckout начинает анкету заказа. Пустая корзина оставляет
// состояние неизменным.
func (e *Engine) startCheckout(ctx context.Context, session *domain.Session, ev Event) []Reply {
	if len(e.resolveCart(ctx, ev.UserID)) == 0 {
		return []Reply{textReply("Ваша корзина пуста.")}
	}

	session.State = domain.StateAwaitingOrderFullName
	return []Reply{textReply("Введите ваше ФИО (для отмены введите /cancel):")}
}

func isNotFound(err error) bool {
	return errors.Is(err, pkge.ErrProductNotFound)
}
