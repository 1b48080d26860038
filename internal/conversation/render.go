package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/tea-corner/go-backend/internal/domain"
	"github.com/tea-corner/go-backend/internal/usecase"
)

// Пункты главного меню.
const (
	menuCatalog = "Каталог"
	menuSearch  = "Поиск"
	menuCart    = "Корзина"
	menuSupport = "Поддержка"
	menuBack    = "Назад"
)

// Категории, которые показываются первыми и именно в этом порядке.
// Категории из каталога, не попавшие в список, добавляются в конец.
var curatedCategoryOrder = []string{
	"Шу пуэры",
	"Шен пуэры",
	"Улуны",
	"Габа улуны",
	"Зелёные",
	"Красные",
	"Белые",
	"Жёлтые",
	"Посуда",
	"Чайные духи",
}

func mainMenu() [][]string {
	return [][]string{
		{menuCatalog, menuSearch},
		{menuCart, menuSupport},
	}
}

func mainMenuReply() Reply {
	return menuReply("Главное меню:", mainMenu())
}

// catalogMenuReply строит reply-клавиатуру категорий. Ошибка каталога
// логируется, пользователь получает клавиатуру только с кнопкой «Назад».
func (e *Engine) catalogMenuReply(ctx context.Context) Reply {
	categories, err := e.catalog.ListCategories(ctx)
	if err != nil {
		e.logger.Warnf("Failed to list categories: %v", err)
		categories = nil
	}

	menu := make([][]string, 0, len(categories)+1)
	for _, category := range orderCategories(categories) {
		menu = append(menu, []string{category})
	}
	menu = append(menu, []string{menuBack})

	return menuReply("Выберите категорию:", menu)
}

// orderCategories сортирует категории: сначала кураторский порядок,
// затем остальные в порядке каталога.
func orderCategories(categories []string) []string {
	present := make(map[string]bool, len(categories))
	for _, c := range categories {
		present[c] = true
	}

	ordered := make([]string, 0, len(categories))
	for _, c := range curatedCategoryOrder {
		if present[c] {
			ordered = append(ordered, c)
			present[c] = false
		}
	}
	for _, c := range categories {
		if present[c] {
			ordered = append(ordered, c)
			present[c] = false
		}
	}

	return ordered
}

// productListReply строит inline-список товаров категории.
func (e *Engine) productListReply(ctx context.Context, category string) Reply {
	products, err := e.catalog.ListByCategory(ctx, category)
	if err != nil {
		e.logger.Warnf("Failed to list products, category: %s, err: %v", category, err)
		products = nil
	}

	rows := make([][]InlineButton, 0, len(products)+1)
	for _, p := range products {
		rows = append(rows, []InlineButton{
			{Label: p.Name, Action: "item", Arg: fmt.Sprintf("%d", p.ID)},
		})
	}
	rows = append(rows, []InlineButton{
		{Label: "В меню", Action: "back_to_main"},
		{Label: menuBack, Action: "back_to_catalog"},
	})

	return inlineReply("Список товаров:", rows)
}

// productCardReplies строит карточку товара: название, цена, цена за грамм
// при известном весе, описание и кнопки добавления в корзину.
func (e *Engine) productCardReplies(ctx context.Context, id int64) []Reply {
	product, err := e.catalog.GetByID(ctx, id)
	if err != nil {
		if !isNotFound(err) {
			e.logger.Warnf("Failed to get product, id: %d, err: %v", id, err)
		}
		return []Reply{textReply("Товар не найден или недоступен.")}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>🍵 %s</b>\n", product.Name)
	fmt.Fprintf(&b, "<b>💰 Цена:</b> %s₽", usecase.FormatKopecks(product.Price))
	if perGram, ok := product.PricePerGram(); ok {
		fmt.Fprintf(&b, "\n<b>💶 Цена за грамм:</b> %s₽/г", perGram.StringFixed(2))
	}
	if product.Description != nil && *product.Description != "" {
		fmt.Fprintf(&b, "\n\n<i>%s</i>", *product.Description)
	}

	rows := [][]InlineButton{
		{{Label: "Добавить в корзину", Action: "add", Arg: fmt.Sprintf("%d", product.ID)}},
		{{Label: menuBack, Action: "back_to_details"}},
	}

	reply := inlineReply(b.String(), rows)
	if product.PhotoURL != nil && *product.PhotoURL != "" {
		reply.PhotoURL = *product.PhotoURL
	}

	return []Reply{reply}
}

// resolvedLine — строка корзины с разрешённой карточкой товара.
type resolvedLine struct {
	product  usecase.ProductRes
	quantity int
	subtotal int64 // копейки
}

// resolveCart разрешает строки корзины против каталога.
// Строки снятых с продажи товаров молча пропускаются.
func (e *Engine) resolveCart(ctx context.Context, userID int64) []resolvedLine {
	lines := e.carts.Lines(userID)
	resolved := make([]resolvedLine, 0, len(lines))
	for _, line := range lines {
		product, err := e.catalog.GetByID(ctx, line.ProductID)
		if err != nil {
			if !isNotFound(err) {
				e.logger.Warnf("Failed to resolve cart line, product_id: %d, err: %v", line.ProductID, err)
			}
			continue
		}
		resolved = append(resolved, resolvedLine{
			product:  *product,
			quantity: line.Quantity,
			subtotal: product.Price * int64(line.Quantity),
		})
	}

	return resolved
}

// cartReply строит просмотр корзины с кнопками оформления.
func (e *Engine) cartReply(ctx context.Context, userID int64) Reply {
	resolved := e.resolveCart(ctx, userID)
	if len(resolved) == 0 {
		return Reply{Text: "Ваша корзина пуста.", RemoveMenu: true}
	}

	var b strings.Builder
	b.WriteString("<b>Ваш заказ:</b>\n")
	var total int64
	for _, line := range resolved {
		total += line.subtotal
		fmt.Fprintf(&b, "<b>%s</b> x%d — %s₽\n", line.product.Name, line.quantity, usecase.FormatKopecks(line.subtotal))
	}
	fmt.Fprintf(&b, "\n<b>Итого:</b> %s₽", usecase.FormatKopecks(total))

	rows := [][]InlineButton{
		{{Label: "Оформить заказ", Action: "checkout"}},
		{{Label: "Очистить корзину", Action: "clear_cart"}},
		{{Label: "Редактировать корзину", Action: "edit_cart"}},
		{{Label: "Калькулятор", Action: "calc_cart"}},
	}

	return inlineReply(b.String(), rows)
}

// cartEditReply строит редактор корзины: по строке кнопок «-», «+», «❌» на товар.
func (e *Engine) cartEditReply(ctx context.Context, userID int64) Reply {
	resolved := e.resolveCart(ctx, userID)
	if len(resolved) == 0 {
		return Reply{Text: "Ваша корзина пуста.", RemoveMenu: true}
	}

	var b strings.Builder
	b.WriteString("<b>Редактирование корзины:</b>\n")
	rows := make([][]InlineButton, 0, len(resolved))
	for _, line := range resolved {
		fmt.Fprintf(&b, "<b>%s</b> x%d — %s₽\n", line.product.Name, line.quantity, usecase.FormatKopecks(line.subtotal))
		id := fmt.Sprintf("%d", line.product.ID)
		rows = append(rows, []InlineButton{
			{Label: "➖", Action: "cart", Arg: "minus:" + id},
			{Label: "➕", Action: "cart", Arg: "plus:" + id},
			{Label: "❌", Action: "cart", Arg: "delete:" + id},
		})
	}

	return inlineReply(b.String(), rows)
}

// supportReply строит кнопку-ссылку на оператора поддержки.
func (e *Engine) supportReply() Reply {
	handle := strings.TrimPrefix(e.supportHandle, "@")
	rows := [][]InlineButton{
		{{Label: "Связаться с поддержкой", URL: "https://t.me/" + handle}},
	}

	return inlineReply("Если у вас возникли вопросы, нажмите кнопку ниже:", rows)
}

// calcPromptReply строит запрос граммов для очередного товара калькулятора.
func calcPromptReply(target domain.CalcTarget) Reply {
	return textReply(fmt.Sprintf(
		"Введите количество грамм для <b>%s</b>\n(Цена за грамм: %s₽):",
		target.Name, target.PricePerGram().StringFixed(2),
	))
}

// calcResultReply строит итог калькулятора по всем посчитанным позициям.
func calcResultReply(run *domain.CalculatorRun) Reply {
	var b strings.Builder
	b.WriteString("<b>Расчёт стоимости по граммам:</b>\n\n")
	for _, result := range run.Results {
		fmt.Fprintf(&b, "<b>%s</b>: %s г — %d₽\n", result.Name, result.Grams.String(), result.Subtotal)
	}
	fmt.Fprintf(&b, "\n<b>Итог:</b> %d₽", run.Total)

	rows := [][]InlineButton{
		{{Label: menuBack, Action: "back_to_cart"}},
		{{Label: "В меню", Action: "back_to_main"}},
	}

	return inlineReply(b.String(), rows)
}
