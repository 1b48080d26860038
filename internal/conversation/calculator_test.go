package conversation_test

import (
	"context"
	"strings"
	"testing"
)

func TestCalculatorCeilsLineCost(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	// Товар 1: цена 250₽ за 50 г, то есть 5₽/г.
	h.engine.Handle(ctx, btn(1, "add", "1"))

	replies := h.engine.Handle(ctx, btn(1, "calc_cart", ""))
	if got := firstText(t, replies); !strings.Contains(got, "Да Хун Пао") {
		t.Fatalf("expected grams prompt, got: %q", got)
	}

	// 33 г × 5₽/г = 165₽, без округления.
	replies = h.engine.Handle(ctx, text(1, "33"))
	got := firstText(t, replies)
	if !strings.Contains(got, "<b>Да Хун Пао</b>: 33 г — 165₽") {
		t.Fatalf("unexpected calc line: %q", got)
	}
	if !strings.Contains(got, "<b>Итог:</b> 165₽") {
		t.Fatalf("unexpected calc total: %q", got)
	}
}

func TestCalculatorAlwaysRoundsUp(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	// 33.3 г × 5₽/г = 166.5₽ → 167₽: округление только вверх.
	h.engine.Handle(ctx, btn(1, "add", "1"))
	h.engine.Handle(ctx, btn(1, "calc_cart", ""))

	replies := h.engine.Handle(ctx, text(1, "33.3"))
	if got := firstText(t, replies); !strings.Contains(got, "167₽") {
		t.Fatalf("expected ceiling to 167, got: %q", got)
	}
}

func TestCalculatorRejectsBadGrams(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	h.engine.Handle(ctx, btn(1, "add", "1"))
	h.engine.Handle(ctx, btn(1, "calc_cart", ""))

	for _, input := range []string{"abc", "-5", "0", ""} {
		replies := h.engine.Handle(ctx, text(1, input))
		if got := firstText(t, replies); got != "Пожалуйста, введите положительное число грамм." {
			t.Fatalf("input %q: expected reprompt, got %q", input, got)
		}
	}

	// Корректный ввод после переспросов всё ещё относится к первому товару.
	replies := h.engine.Handle(ctx, text(1, "10"))
	if got := firstText(t, replies); !strings.Contains(got, "10 г — 50₽") {
		t.Fatalf("cursor advanced on invalid input: %q", got)
	}
}

func TestCalculatorWalksAllWeightedLines(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	// Второй весовой товар, 100₽ за 50 г (пример из постановки: 33 г → 66₽).
	h.catalog.products[3] = newWeightedProduct(3, "Шу Мэнхай", 10000, "50")

	h.engine.Handle(ctx, btn(1, "add", "1"))
	h.engine.Handle(ctx, btn(1, "add", "3"))
	h.engine.Handle(ctx, btn(1, "add", "2")) // без веса, в расчёт не попадает

	replies := h.engine.Handle(ctx, btn(1, "calc_cart", ""))
	if got := firstText(t, replies); !strings.Contains(got, "Да Хун Пао") {
		t.Fatalf("expected prompt for first weighted line, got: %q", got)
	}

	replies = h.engine.Handle(ctx, text(1, "10"))
	if got := firstText(t, replies); !strings.Contains(got, "Шу Мэнхай") {
		t.Fatalf("expected prompt for second weighted line, got: %q", got)
	}

	replies = h.engine.Handle(ctx, text(1, "33"))
	got := firstText(t, replies)
	if !strings.Contains(got, "<b>Шу Мэнхай</b>: 33 г — 66₽") {
		t.Fatalf("unexpected second line cost: %q", got)
	}
	if !strings.Contains(got, "<b>Итог:</b> 116₽") {
		t.Fatalf("unexpected total: %q", got)
	}

	// Результаты только для показа: корзина не меняется.
	if lines := h.carts.Lines(1); len(lines) != 3 {
		t.Fatalf("calculator must not touch the cart, got %+v", lines)
	}

	// Прогон завершён, следующий текст обрабатывается основным состоянием.
	replies = h.engine.Handle(ctx, text(1, "15"))
	if got := firstText(t, replies); !strings.Contains(got, "Не понял") {
		t.Fatalf("calculator run must be discarded after completion: %q", got)
	}
}
