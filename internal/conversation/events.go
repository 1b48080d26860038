package conversation

// EventKind различает виды входящих событий диалога.
type EventKind int

const (
	EventCommand EventKind = iota // команда вида /start
	EventText                     // свободный текст или пункт меню
	EventButton                   // нажатие inline-кнопки
)

// ButtonPress — типизированная полезная нагрузка inline-кнопки.
// Action — первый сегмент callback-данных, Arg — всё после первого «:».
type ButtonPress struct {
	Action string
	Arg    string
}

// Event — входящее событие от пользователя. Ровно одно из полей
// Text/Button заполнено в зависимости от Kind.
type Event struct {
	UserID   int64
	Username string
	FullName string
	Kind     EventKind
	Text     string
	Button   *ButtonPress
}

// InlineButton — кнопка inline-клавиатуры. Либо Action(+Arg), либо URL.
type InlineButton struct {
	Label  string
	Action string
	Arg    string
	URL    string
}

// Keyboard — раскладка кнопок исходящего сообщения.
// Заполняется либо Menu (reply-клавиатура), либо Inline.
type Keyboard struct {
	Menu   [][]string
	Inline [][]InlineButton
}

// Reply — исходящее сообщение пользователю.
type Reply struct {
	Text       string
	Keyboard   *Keyboard
	PhotoURL   string // при непустом значении текст уходит подписью к фото
	RemoveMenu bool   // убрать reply-клавиатуру
}

func textReply(text string) Reply {
	return Reply{Text: text}
}

func menuReply(text string, menu [][]string) Reply {
	return Reply{Text: text, Keyboard: &Keyboard{Menu: menu}}
}

func inlineReply(text string, rows [][]InlineButton) Reply {
	return Reply{Text: text, Keyboard: &Keyboard{Inline: rows}}
}
